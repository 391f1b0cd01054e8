package stubcmder

import (
	"bytes"
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stub Command", func() {
	execute := func(ctx context.Context, args ...string) (string, error) {
		out := &bytes.Buffer{}
		cmd := NewStubCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("rejects failure rates outside [0, 1]", func() {
		_, err := execute(context.Background(), "--failure-rate", "1.5")

		Expect(err).To(MatchError(ContainSubstring("failure rate")))
	})

	It("shuts down cleanly when the context ends", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		out, err := execute(ctx, "--listen", "127.0.0.1:0")

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Served 0 chat requests"))
	})
})
