package dataset_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/dataset"
)

var _ = Describe("Balance", func() {
	var rng *rand.Rand

	BeforeEach(func() {
		rng = rand.New(rand.NewSource(42))
	})

	assertUnique := func(out []dataset.TrainingExample) {
		seen := map[string]bool{}
		for _, ex := range out {
			key := ex.Input + "\x00" + ex.Output
			Expect(seen).NotTo(HaveKey(key), "example selected twice")
			seen[key] = true
		}
	}

	It("gives every category an equal share when supply is ample", func() {
		in := pool(10, "a", "b", "c")

		out := dataset.Balance(in, 9, rng)

		Expect(out).To(HaveLen(9))
		Expect(countByCategory(out)).To(Equal(map[string]int{"a": 3, "b": 3, "c": 3}))
		assertUnique(out)
	})

	It("keeps every share within one unit of target/categories", func() {
		for _, target := range []int{1, 2, 4, 10, 11, 17, 20} {
			in := pool(10, "a", "b", "c", "d")

			out := dataset.Balance(in, target, rng)

			Expect(out).To(HaveLen(target))
			ideal := float64(target) / 4
			for _, category := range []string{"a", "b", "c", "d"} {
				n := float64(countByCategory(out)[category])
				Expect(n).To(BeNumerically("~", ideal, 1), "target %d category %s", target, category)
			}
			assertUnique(out)
		}
	})

	It("tops up from categories with surplus when one category is short", func() {
		in := append(pool(2, "scarce"), pool(10, "plenty", "abundant")...)

		out := dataset.Balance(in, 12, rng)

		Expect(out).To(HaveLen(12))
		counts := countByCategory(out)
		Expect(counts["scarce"]).To(Equal(2))
		Expect(counts["plenty"] + counts["abundant"]).To(Equal(10))
		Expect(counts["plenty"]).To(BeNumerically("~", counts["abundant"], 1))
		assertUnique(out)
	})

	It("returns everything when the target exceeds supply", func() {
		in := pool(3, "a", "b")

		out := dataset.Balance(in, 100, rng)

		Expect(out).To(HaveLen(6))
		Expect(out).To(ConsistOf(in))
	})

	It("treats a non-positive target as the current size", func() {
		in := pool(3, "a", "b")

		Expect(dataset.Balance(in, 0, rng)).To(ConsistOf(in))
	})

	It("handles an empty dataset", func() {
		Expect(dataset.Balance(nil, 10, rng)).To(BeEmpty())
	})

	It("is reproducible for the same seed", func() {
		in := pool(20, "a", "b", "c")

		first := dataset.Balance(in, 10, rand.New(rand.NewSource(9)))
		second := dataset.Balance(in, 10, rand.New(rand.NewSource(9)))

		Expect(first).To(Equal(second))
	})

	It("falls back to a fixed seed without a source of randomness", func() {
		in := pool(6, "a", "b", "c")

		var first []dataset.TrainingExample
		Expect(func() { first = dataset.Balance(in, 6, nil) }).NotTo(Panic())

		Expect(first).To(HaveLen(6))
		Expect(countByCategory(first)).To(Equal(map[string]int{"a": 2, "b": 2, "c": 2}))
		Expect(dataset.Balance(in, 6, nil)).To(Equal(first))
	})

	It("does not modify its input", func() {
		in := pool(5, "a", "b")
		snapshot := append([]dataset.TrainingExample(nil), in...)

		_ = dataset.Balance(in, 4, rng)

		Expect(in).To(Equal(snapshot))
	})
})
