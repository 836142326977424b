package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem/mem"
)

func buildHierarchy(config HierarchyConfig) *Hierarchy {
	h, err := MakeHierarchyBuilder().WithConfig(config).Build()
	Expect(err).NotTo(HaveOccurred())

	return h
}

func fully(lines int, write WritePolicy) *LevelConfig {
	return &LevelConfig{
		Lines:         lines,
		BlockSize:     16,
		Associativity: FullyAssociative,
		Replacement:   LRU,
		Write:         write,
	}
}

var _ = Describe("Hierarchy", func() {
	It("should require L2 when L3 is configured", func() {
		_, err := MakeHierarchyBuilder().
			WithConfig(HierarchyConfig{
				L1: *fully(2, WriteThrough),
				L3: fully(8, WriteThrough),
			}).
			Build()

		Expect(err).To(MatchError(mem.ErrInvalidConfig))
	})

	It("should name the levels", func() {
		h := buildHierarchy(HierarchyConfig{
			L1: *fully(2, WriteThrough),
			L2: fully(4, WriteThrough),
		})

		Expect(h.Levels()).To(HaveLen(2))
		Expect(h.Levels()[0].Name()).To(Equal("L1"))
		Expect(h.Levels()[1].Name()).To(Equal("L2"))
	})

	Context("with one line per set", func() {
		config := func(write WritePolicy) HierarchyConfig {
			return HierarchyConfig{L1: LevelConfig{
				Lines:         4,
				BlockSize:     16,
				Associativity: DirectMapped,
				Replacement:   FIFO,
				Write:         write,
			}}
		}

		It("should write every write through to memory", func() {
			h := buildHierarchy(config(WriteThrough))

			for i := 0; i < 3; i++ {
				res := h.Write(0x100)
				Expect(res.MemoryWrite).To(BeTrue())
			}

			s := h.Stats()
			Expect(s.MemoryWrites).To(Equal(uint64(3)))
			Expect(s.MemoryAccesses).To(Equal(uint64(1)))
			Expect(s.L1Hits).To(Equal(uint64(2)))
		})

		It("should keep repeated writes in a write-back cache", func() {
			h := buildHierarchy(config(WriteBack))

			for i := 0; i < 3; i++ {
				res := h.Write(0x100)
				Expect(res.MemoryWrite).To(BeFalse())
			}

			s := h.Stats()
			Expect(s.MemoryWrites).To(BeZero())
			Expect(s.Writebacks).To(BeZero())
		})

		It("should write back once per dirty eviction", func() {
			h := buildHierarchy(config(WriteBack))

			h.Write(0x00)
			res := h.Write(0x40)
			Expect(res.Writebacks).To(Equal(uint64(1)))

			res = h.Read(0x80)
			Expect(res.Writebacks).To(Equal(uint64(1)))

			res = h.Read(0x00)
			Expect(res.Writebacks).To(BeZero())

			Expect(h.Stats().Writebacks).To(Equal(uint64(2)))
		})
	})

	It("should count a memory write for every write when L1 writes through", func() {
		h := buildHierarchy(HierarchyConfig{
			L1: *fully(2, WriteThrough),
			L2: fully(4, WriteBack),
		})

		addrs := []uint64{0x00, 0x10, 0x20, 0x00, 0x30, 0x40, 0x10, 0x50}
		for i, a := range addrs {
			if i%3 == 0 {
				h.Read(a)
			} else {
				h.Write(a)
			}
		}

		s := h.Stats()
		Expect(s.MemoryWrites).To(Equal(s.Writes))
		Expect(s.Reads + s.Writes).To(Equal(s.TotalAccesses))
	})

	Context("with three levels", func() {
		var h *Hierarchy

		BeforeEach(func() {
			h = buildHierarchy(HierarchyConfig{
				L1: *fully(1, WriteThrough),
				L2: fully(2, WriteThrough),
				L3: fully(8, WriteThrough),
			})
		})

		It("should charge the whole path on a memory access", func() {
			res := h.Read(0x00)

			Expect(res.HitLevel).To(Equal(0))
			Expect(res.TouchedBackingStore).To(BeTrue())
			Expect(res.PenaltyCycles).To(Equal(uint64(161)))
			Expect(res.Levels).To(Equal([]LevelOutcome{
				{Name: "L1"}, {Name: "L2"}, {Name: "L3"},
			}))
		})

		It("should charge one cycle on an L1 hit", func() {
			h.Read(0x00)

			res := h.Read(0x00)

			Expect(res.HitLevel).To(Equal(1))
			Expect(res.Levels).To(HaveLen(1))
			Expect(res.PenaltyCycles).To(Equal(uint64(1)))
		})

		It("should fill closer levels on an L2 hit", func() {
			h.Read(0x00)
			h.Read(0x10)

			res := h.Read(0x00)
			Expect(res.HitLevel).To(Equal(2))
			Expect(res.TouchedBackingStore).To(BeFalse())
			Expect(res.PenaltyCycles).To(Equal(uint64(11)))

			res = h.Read(0x00)
			Expect(res.HitLevel).To(Equal(1))
		})

		It("should fill closer levels on an L3 hit", func() {
			h.Read(0x00)
			h.Read(0x10)
			h.Read(0x20)

			res := h.Read(0x00)
			Expect(res.HitLevel).To(Equal(3))
			Expect(res.PenaltyCycles).To(Equal(uint64(61)))

			res = h.Read(0x00)
			Expect(res.HitLevel).To(Equal(1))
		})

		It("should report the hierarchy statistics", func() {
			h.Read(0x00)
			h.Read(0x00)
			h.Write(0x10)

			s := h.Stats()
			Expect(s.TotalAccesses).To(Equal(uint64(3)))
			Expect(s.Reads).To(Equal(uint64(2)))
			Expect(s.Writes).To(Equal(uint64(1)))
			Expect(s.L1Hits).To(Equal(uint64(1)))
			Expect(s.MemoryAccesses).To(Equal(uint64(2)))
			Expect(s.PenaltyCycles).To(Equal(uint64(161 + 1 + 161)))
			Expect(s.AvgCyclesPerAccess).To(BeNumerically("~", 323.0/3))
			Expect(s.Levels).To(HaveLen(3))
		})

		It("should reset", func() {
			h.Read(0x00)

			h.Reset()

			s := h.Stats()
			Expect(s.TotalAccesses).To(BeZero())
			Expect(s.PenaltyCycles).To(BeZero())
			Expect(h.Read(0x00).HitLevel).To(Equal(0))
		})
	})
})
