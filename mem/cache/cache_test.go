package cache

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem/mem"
	"github.com/sarchlab/memsim/sim/hooking"
)

func buildLevel(config LevelConfig) *Cache {
	c, err := MakeBuilder().WithConfig(config).Build()
	Expect(err).NotTo(HaveOccurred())

	return c
}

var _ = Describe("LevelConfig", func() {
	It("should derive the geometry from the associativity", func() {
		c := LevelConfig{Lines: 16, BlockSize: 32, Associativity: FourWay}

		Expect(c.Ways()).To(Equal(4))
		Expect(c.Sets()).To(Equal(4))

		c.Associativity = FullyAssociative
		Expect(c.Ways()).To(Equal(16))
		Expect(c.Sets()).To(Equal(1))
	})

	It("should reject lines that cannot be divided into sets", func() {
		c := LevelConfig{Lines: 6, BlockSize: 16, Associativity: FourWay}

		Expect(errors.Is(c.Validate(), mem.ErrInvalidConfig)).To(BeTrue())
	})

	It("should reject empty geometry", func() {
		Expect(LevelConfig{Lines: 0, BlockSize: 16}.Validate()).
			To(MatchError(mem.ErrInvalidConfig))
		Expect(LevelConfig{Lines: 4, BlockSize: 0}.Validate()).
			To(MatchError(mem.ErrInvalidConfig))
	})

	It("should parse the command line spellings", func() {
		Expect(ParseAssociativity("2way")).To(Equal(TwoWay))
		Expect(ParseReplacementPolicy("lru")).To(Equal(LRU))
		Expect(ParseWritePolicy("writeback")).To(Equal(WriteBack))
		Expect(ParseWritePolicy("wt")).To(Equal(WriteThrough))

		_, err := ParseAssociativity("8way")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Cache", func() {
	Context("fully associative with two lines", func() {
		var config LevelConfig

		BeforeEach(func() {
			config = LevelConfig{
				Lines:         2,
				BlockSize:     16,
				Associativity: FullyAssociative,
				Write:         WriteThrough,
			}
		})

		It("should not allocate on read misses", func() {
			c := buildLevel(config)

			Expect(c.Read(0x20)).To(BeFalse())
			Expect(c.Read(0x20)).To(BeFalse())
			Expect(c.Stats().Misses).To(Equal(uint64(2)))
		})

		It("should hit on any byte of a block", func() {
			c := buildLevel(config)
			c.Insert(0x20, false)

			Expect(c.Read(0x2f)).To(BeTrue())
			Expect(c.Read(0x30)).To(BeFalse())
		})

		It("should evict the first inserted line with FIFO", func() {
			config.Replacement = FIFO
			c := buildLevel(config)

			c.Insert(0x00, false)
			c.Insert(0x10, false)
			Expect(c.Read(0x00)).To(BeTrue())
			c.Insert(0x20, false)

			Expect(c.Read(0x00)).To(BeFalse())
			Expect(c.Read(0x10)).To(BeTrue())
		})

		It("should evict the least recently used line with LRU", func() {
			config.Replacement = LRU
			c := buildLevel(config)

			c.Insert(0x00, false)
			c.Insert(0x10, false)
			Expect(c.Read(0x00)).To(BeTrue())
			c.Insert(0x20, false)

			Expect(c.Read(0x00)).To(BeTrue())
			Expect(c.Read(0x10)).To(BeFalse())
		})
	})

	Context("write-back direct mapped with one line", func() {
		var c *Cache

		BeforeEach(func() {
			c = buildLevel(LevelConfig{
				Lines:         1,
				BlockSize:     16,
				Associativity: DirectMapped,
				Replacement:   FIFO,
				Write:         WriteBack,
			})
		})

		It("should allocate dirty lines on write misses", func() {
			Expect(c.Write(0x0)).To(BeFalse())

			lines := c.Lines()
			Expect(lines[0][0].Valid).To(BeTrue())
			Expect(lines[0][0].Dirty).To(BeTrue())

			s := c.Stats()
			Expect(s.WriteMisses).To(Equal(uint64(1)))
			Expect(s.Misses).To(Equal(uint64(1)))
		})

		It("should write back when a dirty line is replaced", func() {
			c.Write(0x0)
			c.Write(0x0)
			Expect(c.Stats().Writebacks).To(BeZero())

			c.Write(0x10)

			s := c.Stats()
			Expect(s.Writebacks).To(Equal(uint64(1)))
			Expect(s.WriteHits).To(Equal(uint64(1)))
			Expect(s.Writes).To(Equal(uint64(3)))
		})

		It("should not write back clean lines", func() {
			c.Insert(0x0, false)
			c.Insert(0x10, false)

			Expect(c.Stats().Writebacks).To(BeZero())
		})

		It("should evict explicitly", func() {
			c.Write(0x0)

			dirty, found := c.Evict(0x0)

			Expect(found).To(BeTrue())
			Expect(dirty).To(BeTrue())
			Expect(c.Stats().Writebacks).To(Equal(uint64(1)))
			Expect(c.Read(0x0)).To(BeFalse())

			_, found = c.Evict(0x0)
			Expect(found).To(BeFalse())
		})

		It("should invoke the eviction hooks", func() {
			counter := hooking.NewEventCounter()
			c.AcceptHook(counter)

			c.Write(0x0)
			c.Write(0x10)
			c.Write(0x20)

			Expect(counter.Count(hooking.HookPosCacheEviction.Name)).
				To(Equal(uint64(2)))
		})

		It("should reset", func() {
			c.Write(0x0)

			c.Reset()

			Expect(c.Stats()).To(Equal(LevelStats{Name: "L1"}))
			Expect(c.Lines()[0][0].Valid).To(BeFalse())
		})
	})

	It("should ignore the dirty flag in write-through levels", func() {
		c := buildLevel(LevelConfig{
			Lines:         4,
			BlockSize:     16,
			Associativity: TwoWay,
			Write:         WriteThrough,
		})

		c.Insert(0x40, true)

		line := c.Lines()[c.tags.SetID(0x40)][0]
		Expect(line.Valid).To(BeTrue())
		Expect(line.Dirty).To(BeFalse())
		Expect(c.BlockAddress(line)).To(Equal(uint64(0x40)))
	})
})
