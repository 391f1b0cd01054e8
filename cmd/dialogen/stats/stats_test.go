package statscmder

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/store"
)

var _ = Describe("Stats Command", func() {
	var (
		inputPath string
		out       *bytes.Buffer
	)

	BeforeEach(func() {
		inputPath = filepath.Join(GinkgoT().TempDir(), "train.jsonl")
		out = &bytes.Buffer{}
		Expect(store.WriteJSONL(inputPath, []dataset.TrainingExample{
			{Input: "abcd", Output: "ab", Category: "quest_help", Source: "bootstrap"},
			{Input: "ab", Output: "abcd", Category: "quest_help", Source: "self_growth"},
			{Input: "abc", Output: "abc", Category: "lore_explanation", Source: "bootstrap"},
		})).To(Succeed())
	})

	execute := func(args ...string) error {
		cmd := NewStatsCmd()
		cmd.SetOut(out)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(context.Background())
	}

	It("prints a summary", func() {
		Expect(execute(inputPath)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Total examples: 3"))
		Expect(out.String()).To(ContainSubstring("Average input length: 3.0"))
		Expect(out.String()).To(MatchRegexp(`quest_help\s+2`))
		Expect(out.String()).To(MatchRegexp(`self_growth\s+1`))
	})

	It("prints JSON on request", func() {
		Expect(execute(inputPath, "--json")).To(Succeed())

		var stats dataset.Stats
		Expect(json.Unmarshal(out.Bytes(), &stats)).To(Succeed())
		Expect(stats.Total).To(Equal(3))
		Expect(stats.Categories).To(HaveKeyWithValue("lore_explanation", 1))
	})

	It("requires exactly one input", func() {
		Expect(execute()).To(HaveOccurred())
	})
})
