package store_test

import (
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/store"
)

var _ = Describe("JSONL store", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("writes one object per line and reads them back", func() {
		path := filepath.Join(dir, "nested", "out", "train.jsonl")
		records := []dataset.TrainingExample{
			{Instruction: "i", Input: "Where is <the> forge?", Output: "By the river & mill.", Category: "quest_help", Source: "bootstrap"},
			{Instruction: "i", Input: "Hello", Output: "Hi there", Category: "casual_chat", Source: "bootstrap"},
		}

		Expect(store.WriteJSONL(path, records)).To(Succeed())

		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(ContainSubstring(`"scenario_type":"quest_help"`))
		Expect(lines[0]).To(ContainSubstring("<the>"))

		got, skipped, err := store.ReadJSONL[dataset.TrainingExample](path)
		Expect(err).NotTo(HaveOccurred())
		Expect(skipped).To(BeZero())
		Expect(got).To(Equal(records))
	})

	It("skips malformed and blank lines", func() {
		path := filepath.Join(dir, "mixed.jsonl")
		content := `{"input":"a","output":"b","scenario_type":"x"}
not json at all

{"input":"c","output":"d","scenario_type":"y"}
{"input":
`
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		got, skipped, err := store.ReadJSONL[dataset.TrainingExample](path)
		Expect(err).NotTo(HaveOccurred())
		Expect(skipped).To(Equal(2))
		Expect(got).To(HaveLen(2))
		Expect(got[1].Category).To(Equal("y"))
	})

	It("skips an oversized line and keeps reading", func() {
		path := filepath.Join(dir, "oversized.jsonl")
		content := `{"input":"a","output":"b","scenario_type":"first"}` + "\n" +
			`{"input":"` + strings.Repeat("x", 5*1024*1024) + `"}` + "\n" +
			`{"input":"c","output":"d","scenario_type":"last"}`
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		got, skipped, err := store.ReadJSONL[dataset.TrainingExample](path)
		Expect(err).NotTo(HaveOccurred())
		Expect(skipped).To(Equal(1))
		Expect(got).To(HaveLen(2))
		Expect(got[0].Category).To(Equal("first"))
		Expect(got[1].Category).To(Equal("last"))
	})

	It("fails on a missing file", func() {
		_, _, err := store.ReadJSONL[dataset.TrainingExample](filepath.Join(dir, "missing.jsonl"))
		Expect(err).To(HaveOccurred())
	})

	It("writes an empty file for no records", func() {
		path := filepath.Join(dir, "empty.jsonl")

		Expect(store.WriteJSONL[dataset.TrainingExample](path, nil)).To(Succeed())

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeZero())
	})

	It("writes indented JSON documents", func() {
		path := filepath.Join(dir, "stats.json")

		Expect(store.WriteJSON(path, dataset.Stats{Total: 2})).To(Succeed())

		content, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring(`  "total_examples": 2`))
	})
})
