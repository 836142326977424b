package exactfit

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/mem"
)

func mustBuild(total uint64, policy FitPolicy) *Allocator {
	a, err := MakeBuilder().
		WithTotalMemory(total).
		WithFitPolicy(policy).
		Build()
	Expect(err).NotTo(HaveOccurred())

	return a
}

func blockAt(a *Allocator, start uint64) Block {
	for _, b := range a.Blocks() {
		if b.Start == start {
			return b
		}
	}

	Fail("no block starts at the given address")

	return Block{}
}

var _ = Describe("Allocator", func() {
	var a *Allocator

	BeforeEach(func() {
		a = mustBuild(1000, FirstFit)
	})

	It("should reject zero total memory", func() {
		_, err := MakeBuilder().WithTotalMemory(0).Build()
		Expect(errors.Is(err, mem.ErrInvalidConfig)).To(BeTrue())
	})

	It("should start with one free block", func() {
		Expect(a.Blocks()).To(Equal([]Block{{Start: 0, Size: 1000}}))
	})

	It("should allocate with first fit and split", func() {
		id1, err := a.Allocate(200)
		Expect(err).NotTo(HaveOccurred())
		id2, _ := a.Allocate(300)

		Expect(id1).To(Equal(alloc.BlockID(1)))
		Expect(id2).To(Equal(alloc.BlockID(2)))
		Expect(a.Blocks()).To(Equal([]Block{
			{Start: 0, Size: 200, Allocated: true, ID: 1},
			{Start: 200, Size: 300, Allocated: true, ID: 2},
			{Start: 500, Size: 500},
		}))
	})

	It("should not create a zero-size block on exact match", func() {
		_, err := a.Allocate(1000)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Blocks()).To(HaveLen(1))
		Expect(a.Stats().Free).To(BeZero())
	})

	It("should fail zero-size requests", func() {
		_, err := a.Allocate(0)

		Expect(errors.Is(err, mem.ErrZeroSizeRequest)).To(BeTrue())
		Expect(a.Stats().Attempts).To(Equal(uint64(1)))
		Expect(a.Stats().Failures).To(Equal(uint64(1)))
	})

	It("should fail when no block is large enough", func() {
		_, _ = a.Allocate(600)
		before := a.Blocks()

		_, err := a.Allocate(500)

		Expect(errors.Is(err, mem.ErrInsufficientMemory)).To(BeTrue())
		Expect(a.Blocks()).To(Equal(before))
	})

	It("should fail unknown ids without changing state", func() {
		_, _ = a.Allocate(100)
		before := a.Blocks()

		err := a.Deallocate(42)

		Expect(errors.Is(err, mem.ErrUnknownBlockID)).To(BeTrue())
		Expect(a.Blocks()).To(Equal(before))
		Expect(a.Stats().FailedDeallocations).To(Equal(uint64(1)))
	})

	It("should not free the same block twice", func() {
		id, _ := a.Allocate(100)
		Expect(a.Deallocate(id)).To(Succeed())

		err := a.Deallocate(id)
		Expect(errors.Is(err, mem.ErrUnknownBlockID)).To(BeTrue())
	})

	It("should restore one spanning block after freeing everything", func() {
		ids := []alloc.BlockID{}
		for _, size := range []uint64{100, 250, 50, 300, 10} {
			id, err := a.Allocate(size)
			Expect(err).NotTo(HaveOccurred())
			ids = append(ids, id)
		}

		for _, i := range []int{1, 3, 0, 4, 2} {
			Expect(a.Deallocate(ids[i])).To(Succeed())
		}

		Expect(a.Blocks()).To(Equal([]Block{{Start: 0, Size: 1000}}))
	})

	It("should restore free memory on round trip", func() {
		_, _ = a.Allocate(123)
		freeBefore := a.Stats().Free

		id, _ := a.Allocate(77)
		Expect(a.Deallocate(id)).To(Succeed())

		Expect(a.Stats().Free).To(Equal(freeBefore))
	})

	It("should never leave adjacent free blocks", func() {
		ids := []alloc.BlockID{}
		for i := 0; i < 10; i++ {
			id, _ := a.Allocate(100)
			ids = append(ids, id)
		}

		for _, i := range []int{2, 4, 3, 7, 8} {
			Expect(a.Deallocate(ids[i])).To(Succeed())
		}

		blocks := a.Blocks()
		for i := 1; i < len(blocks); i++ {
			Expect(blocks[i-1].Allocated || blocks[i].Allocated).To(BeTrue())
		}
	})

	It("should follow the mixed first fit and best fit scenario", func() {
		id1, _ := a.Allocate(200)
		id2, _ := a.Allocate(300)
		id3, _ := a.Allocate(150)

		Expect(blockAt(a, 0).ID).To(Equal(id1))
		Expect(blockAt(a, 200).ID).To(Equal(id2))
		Expect(blockAt(a, 500).ID).To(Equal(id3))

		Expect(a.Deallocate(id2)).To(Succeed())
		Expect(blockAt(a, 200)).To(Equal(Block{Start: 200, Size: 300}))

		a.SetFitPolicy(BestFit)
		id4, err := a.Allocate(250)
		Expect(err).NotTo(HaveOccurred())

		Expect(blockAt(a, 200).ID).To(Equal(id4))
		Expect(blockAt(a, 450)).To(Equal(Block{Start: 450, Size: 50}))
		Expect(blockAt(a, 500).ID).To(Equal(id3))
		Expect(blockAt(a, 650)).To(Equal(Block{Start: 650, Size: 350}))
	})

	Context("with holes of different sizes", func() {
		// Layout after setup: free 100 @0, used, free 300 @200, used,
		// free 200 @600, used, free 100 @900.
		BeforeEach(func() {
			ids := []alloc.BlockID{}
			for _, size := range []uint64{100, 100, 300, 100, 200, 100, 100} {
				id, err := a.Allocate(size)
				Expect(err).NotTo(HaveOccurred())
				ids = append(ids, id)
			}

			for _, i := range []int{0, 2, 4, 6} {
				Expect(a.Deallocate(ids[i])).To(Succeed())
			}
		})

		It("should pick the lowest address with first fit", func() {
			a.SetFitPolicy(FirstFit)
			id, _ := a.Allocate(150)
			Expect(blockAt(a, 200).ID).To(Equal(id))
		})

		It("should pick the tightest block with best fit", func() {
			a.SetFitPolicy(BestFit)
			id, _ := a.Allocate(150)
			Expect(blockAt(a, 600).ID).To(Equal(id))
		})

		It("should break best fit ties by address", func() {
			a.SetFitPolicy(BestFit)
			id, _ := a.Allocate(100)
			Expect(blockAt(a, 0).ID).To(Equal(id))
		})

		It("should pick the largest block with worst fit", func() {
			a.SetFitPolicy(WorstFit)
			id, _ := a.Allocate(50)
			Expect(blockAt(a, 200).ID).To(Equal(id))
		})

		It("should report external fragmentation", func() {
			s := a.Stats()

			Expect(s.Free).To(Equal(uint64(700)))
			Expect(s.FreeBlocks).To(Equal(uint64(4)))
			Expect(s.Fragmentation).To(BeNumerically("~", 400.0/700.0*100, 1e-9))
		})
	})

	It("should count attempts, successes and failures", func() {
		_, _ = a.Allocate(500)
		_, _ = a.Allocate(0)
		_, _ = a.Allocate(600)
		_, _ = a.Allocate(500)

		s := a.Stats()
		Expect(s.Attempts).To(Equal(uint64(4)))
		Expect(s.Successes).To(Equal(uint64(2)))
		Expect(s.Failures).To(Equal(uint64(2)))
		Expect(s.SuccessRate()).To(BeNumerically("~", 50.0))
	})

	It("should reset to the initial configuration", func() {
		a.SetFitPolicy(WorstFit)
		_, _ = a.Allocate(10)

		a.Reset()

		Expect(a.Blocks()).To(Equal([]Block{{Start: 0, Size: 1000}}))
		Expect(a.Stats().Attempts).To(BeZero())
		Expect(a.FitPolicy()).To(Equal(WorstFit))

		id, _ := a.Allocate(10)
		Expect(id).To(Equal(alloc.BlockID(1)))
	})
})

var _ = Describe("ParseFitPolicy", func() {
	It("should parse the names used by the command line", func() {
		Expect(ParseFitPolicy("first_fit")).To(Equal(FirstFit))
		Expect(ParseFitPolicy("best_fit")).To(Equal(BestFit))
		Expect(ParseFitPolicy("worst_fit")).To(Equal(WorstFit))
	})

	It("should reject unknown names", func() {
		_, err := ParseFitPolicy("next_fit")
		Expect(err).To(HaveOccurred())
	})
})
