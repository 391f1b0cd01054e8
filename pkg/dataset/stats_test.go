package dataset_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/dataset"
)

var _ = Describe("ComputeStats", func() {
	It("counts categories and sources and averages lengths", func() {
		in := []dataset.TrainingExample{
			{Input: "abcd", Output: "ab", Category: "a", Source: "bootstrap"},
			{Input: "ab", Output: "abcdef", Category: "a", Source: "self_growth"},
			{Input: "abc", Output: "abcd", Category: "b", Source: "bootstrap"},
			{Input: "abc", Output: "abc"},
		}

		stats := dataset.ComputeStats(in)

		Expect(stats.Total).To(Equal(4))
		Expect(stats.Categories).To(Equal(map[string]int{"a": 2, "b": 1, "unknown": 1}))
		Expect(stats.Sources).To(Equal(map[string]int{"bootstrap": 2, "self_growth": 1, "unknown": 1}))
		Expect(stats.AvgInputLength).To(Equal(3.0))
		Expect(stats.AvgOutputLength).To(Equal(3.75))
	})

	It("reports zeros for an empty dataset", func() {
		stats := dataset.ComputeStats(nil)

		Expect(stats.Total).To(BeZero())
		Expect(stats.AvgInputLength).To(BeZero())
		Expect(stats.Categories).To(BeEmpty())
	})
})

var _ = Describe("ToChatText", func() {
	It("renders a Human/Assistant transcript", func() {
		out := dataset.ToChatText([]dataset.TrainingExample{{Input: "Hi", Output: "Hello!", Category: "casual_chat"}})

		Expect(out).To(Equal([]dataset.ChatRecord{{
			Text:     "### Human:\nHi\n\n### Assistant:\nHello!",
			Category: "casual_chat",
			Source:   "unknown",
		}}))
	})
})
