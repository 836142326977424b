package buddy

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/mem/alloc"
	"github.com/sarchlab/memsim/mem/mem"
)

func checkBuddyInvariants(a *Allocator) {
	covered := uint64(0)

	for order, list := range a.FreeLists() {
		size := a.BlockSize(order)
		for i, addr := range list {
			Expect(addr % size).To(BeZero())

			if order < a.MaxOrder() {
				Expect(addr ^ size).To(BeNumerically("<", a.TotalMemory()))
			}

			if i > 0 {
				Expect(addr).To(BeNumerically(">", list[i-1]))
			}

			covered += size
		}
	}

	for _, r := range a.Records() {
		Expect(r.Address % r.ActualSize).To(BeZero())
		Expect(r.ActualSize).To(Equal(a.BlockSize(r.Order)))
		covered += r.ActualSize
	}

	Expect(covered).To(Equal(a.TotalMemory()))
}

var _ = Describe("Builder", func() {
	It("should build with the defaults", func() {
		a, warnings, err := MakeBuilder().Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(BeEmpty())
		Expect(a.TotalMemory()).To(Equal(uint64(1024)))
		Expect(a.MinBlockSize()).To(Equal(uint64(16)))
		Expect(a.MaxOrder()).To(Equal(6))
		Expect(a.FreeLists()[6]).To(Equal([]uint64{0}))
	})

	It("should replace non power of two sizes with a warning", func() {
		a, warnings, err := MakeBuilder().
			WithTotalMemory(1000).
			WithMinBlockSize(24).
			Build()

		Expect(err).NotTo(HaveOccurred())
		Expect(warnings).To(HaveLen(2))
		Expect(warnings[0].Kind).To(Equal(mem.NonPowerOfTwoConfig))
		Expect(warnings[1].Kind).To(Equal(mem.NonPowerOfTwoConfig))
		Expect(a.TotalMemory()).To(Equal(uint64(1024)))
		Expect(a.MinBlockSize()).To(Equal(uint64(16)))
	})

	It("should reject non power of two sizes in strict mode", func() {
		_, _, err := MakeBuilder().
			WithTotalMemory(1000).
			WithStrictConfig(true).
			Build()

		Expect(errors.Is(err, mem.ErrNonPowerOfTwoConfig)).To(BeTrue())
	})

	It("should reject a min block larger than the memory", func() {
		_, _, err := MakeBuilder().
			WithTotalMemory(64).
			WithMinBlockSize(128).
			Build()

		Expect(errors.Is(err, mem.ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("Allocator", func() {
	var a *Allocator

	BeforeEach(func() {
		var err error
		a, _, err = MakeBuilder().
			WithTotalMemory(1024).
			WithMinBlockSize(16).
			Build()
		Expect(err).NotTo(HaveOccurred())
	})

	It("should split down to the requested order", func() {
		id, err := a.Allocate(100)

		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(alloc.BlockID(1)))
		Expect(a.Records()[id]).To(Equal(AllocationRecord{
			Address:       0,
			RequestedSize: 100,
			ActualSize:    128,
			Order:         3,
		}))

		lists := a.FreeLists()
		Expect(lists[3]).To(Equal([]uint64{128}))
		Expect(lists[4]).To(Equal([]uint64{256}))
		Expect(lists[5]).To(Equal([]uint64{512}))
		Expect(lists[6]).To(BeEmpty())
		Expect(a.Stats().Splits).To(Equal(uint64(3)))
		checkBuddyInvariants(a)
	})

	It("should round small requests up to the min block", func() {
		id, _ := a.Allocate(1)

		Expect(a.Records()[id].ActualSize).To(Equal(uint64(16)))
		Expect(a.Records()[id].Order).To(Equal(0))
	})

	It("should follow the allocate and merge scenario", func() {
		id1, _ := a.Allocate(100)
		id2, _ := a.Allocate(200)

		Expect(a.Records()[id1].Address).To(Equal(uint64(0)))
		Expect(a.Records()[id2].Address).To(Equal(uint64(256)))
		Expect(a.Records()[id2].ActualSize).To(Equal(uint64(256)))
		Expect(a.Stats().Fragmentation).To(BeNumerically("==", 28+56))

		Expect(a.Deallocate(id1)).To(Succeed())
		Expect(a.FreeLists()[4]).To(Equal([]uint64{0}))
		Expect(a.Stats().Fragmentation).To(BeNumerically("==", 56))
		checkBuddyInvariants(a)

		Expect(a.Deallocate(id2)).To(Succeed())
		lists := a.FreeLists()
		Expect(lists[6]).To(Equal([]uint64{0}))
		for order := 0; order < 6; order++ {
			Expect(lists[order]).To(BeEmpty())
		}

		s := a.Stats()
		Expect(s.Merges).To(Equal(uint64(3)))
		Expect(s.Fragmentation).To(BeZero())
		Expect(s.Free).To(Equal(uint64(1024)))
		Expect(s.FreeBlocks).To(BeZero())
	})

	It("should fail requests larger than the memory", func() {
		_, err := a.Allocate(2048)

		Expect(errors.Is(err, mem.ErrInsufficientMemory)).To(BeTrue())
		Expect(a.Stats().Failures).To(Equal(uint64(1)))
	})

	It("should fail zero-size requests", func() {
		_, err := a.Allocate(0)

		Expect(errors.Is(err, mem.ErrZeroSizeRequest)).To(BeTrue())
	})

	It("should not split anything when the request cannot be served", func() {
		_, _ = a.Allocate(16)
		_, _ = a.Allocate(512)
		before := a.FreeLists()
		splitsBefore := a.Stats().Splits

		_, err := a.Allocate(512)

		Expect(errors.Is(err, mem.ErrInsufficientMemory)).To(BeTrue())
		Expect(a.FreeLists()).To(Equal(before))
		Expect(a.Stats().Splits).To(Equal(splitsBefore))
		checkBuddyInvariants(a)
	})

	It("should reject unknown ids", func() {
		id, _ := a.Allocate(64)
		Expect(a.Deallocate(id)).To(Succeed())

		err := a.Deallocate(id)

		Expect(errors.Is(err, mem.ErrUnknownBlockID)).To(BeTrue())
		Expect(a.Stats().FailedDeallocations).To(Equal(uint64(1)))
	})

	It("should keep the invariants over a mixed workload", func() {
		sizes := []uint64{17, 33, 64, 5, 120, 16, 90, 200, 3, 48}
		ids := []alloc.BlockID{}

		for _, s := range sizes {
			id, err := a.Allocate(s)
			if err == nil {
				ids = append(ids, id)
			}
			checkBuddyInvariants(a)
		}

		for i := len(ids) - 1; i >= 0; i -= 2 {
			Expect(a.Deallocate(ids[i])).To(Succeed())
			checkBuddyInvariants(a)
		}

		for i := len(ids) - 2; i >= 0; i -= 2 {
			Expect(a.Deallocate(ids[i])).To(Succeed())
			checkBuddyInvariants(a)
		}

		Expect(a.FreeLists()[6]).To(Equal([]uint64{0}))
	})

	It("should reset to the initial state", func() {
		_, _ = a.Allocate(100)
		_, _ = a.Allocate(0)

		a.Reset()

		s := a.Stats()
		Expect(s.Attempts).To(BeZero())
		Expect(s.Splits).To(BeZero())
		Expect(s.Free).To(Equal(uint64(1024)))
		Expect(a.Records()).To(BeEmpty())

		id, _ := a.Allocate(10)
		Expect(id).To(Equal(alloc.BlockID(1)))
	})
})
