package growcmder

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/store"
	"github.com/papercomputeco/dialogen/stub"
)

var _ = Describe("Grow Command", func() {
	var (
		tmpDir    string
		inputPath string
		server    *httptest.Server
		out       *bytes.Buffer
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		inputPath = filepath.Join(tmpDir, "bootstrap.jsonl")
		server = httptest.NewServer(stub.New(stub.Config{Seed: 1}, zap.NewNop()).Handler())
		DeferCleanup(server.Close)
		out = &bytes.Buffer{}

		var seed []dataset.TrainingExample
		for i := 0; i < 5; i++ {
			seed = append(seed, dataset.TrainingExample{
				Input:    fmt.Sprintf("where is the forge, number %d?", i),
				Output:   fmt.Sprintf("down by the river, past mill %d", i),
				Category: "quest_help",
				Source:   "bootstrap",
			})
		}
		Expect(store.WriteJSONL(inputPath, seed)).To(Succeed())
	})

	execute := func(args ...string) error {
		cmd := NewGrowCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		return cmd.ExecuteContext(context.Background())
	}

	It("appends self-grown examples to the input", func() {
		outPath := filepath.Join(tmpDir, "grown.jsonl")

		err := execute(inputPath, "--base-url", server.URL, "--rounds", "2", "--per-round", "3", "--seed", "1", "-o", outPath)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("Round 1: 3/3 succeeded"))
		Expect(out.String()).To(ContainSubstring("Round 2: 3/3 succeeded"))
		Expect(out.String()).To(ContainSubstring("Grew 5 examples to 11 (+6)"))

		all, _, err := store.ReadJSONL[dataset.TrainingExample](outPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(11))
		for _, ex := range all[5:] {
			Expect(ex.Source).To(Equal("self_growth"))
			Expect(ex.Category).To(Equal("generated"))
			Expect(ex.Input).NotTo(BeEmpty())
			Expect(ex.Output).NotTo(BeEmpty())
		}
	})

	It("refuses an empty input", func() {
		empty := filepath.Join(tmpDir, "empty.jsonl")
		Expect(store.WriteJSONL[dataset.TrainingExample](empty, nil)).To(Succeed())

		err := execute(empty, "--base-url", server.URL)

		Expect(err).To(HaveOccurred())
	})
})
