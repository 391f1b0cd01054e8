package generate_test

import (
	"context"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/generate"
	"github.com/papercomputeco/dialogen/pkg/scenario"
)

var _ = Describe("Grower", func() {
	var (
		ctx       context.Context
		completer *fakeCompleter
		existing  []dataset.TrainingExample
	)

	BeforeEach(func() {
		ctx = context.Background()
		completer = &fakeCompleter{respond: always("Got any rumours?\nNPC: Only that the well is cursed.")}
		existing = nil
		for i := 0; i < 60; i++ {
			existing = append(existing, dataset.TrainingExample{
				Input:    "player line " + strings.Repeat("x", i%7),
				Output:   "npc line " + strings.Repeat("y", i%5),
				Category: "casual_chat",
			})
		}
	})

	newGrower := func(opts generate.GrowOptions) *generate.Grower {
		opts.Completer = completer
		opts.Retry = fastRetry(1)
		opts.Rand = rand.New(rand.NewSource(3))
		g, err := generate.NewGrower(opts)
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	It("adds one tagged example per successful task per round", func() {
		g := newGrower(generate.GrowOptions{Concurrency: 2, Rounds: 2, PerRound: 4})

		grown, reports, err := g.Grow(ctx, existing)

		Expect(err).NotTo(HaveOccurred())
		Expect(reports).To(HaveLen(2))
		Expect(grown).To(HaveLen(8))
		for _, ex := range grown {
			Expect(ex.Source).To(Equal(generate.GrowthSource))
			Expect(ex.Category).To(Equal(generate.GrowthCategory))
			Expect(ex.Input).To(Equal("Got any rumours?"))
			Expect(ex.Output).To(Equal("Only that the well is cursed."))
		}
		Expect(completer.calls.Load()).To(BeEquivalentTo(8))
	})

	It("shows at most five examples per prompt", func() {
		g := newGrower(generate.GrowOptions{Rounds: 1, PerRound: 3})

		_, _, err := g.Grow(ctx, existing)

		Expect(err).NotTo(HaveOccurred())
		for _, req := range completer.requests {
			Expect(strings.Count(req.Prompt, "Example ")).To(Equal(5))
			Expect(req.Prompt).To(HaveSuffix("Player: "))
			Expect(req.JSON).To(BeFalse())
		}
	})

	It("counts responses without an exchange as parse failures", func() {
		completer.respond = func(completion.Request) (string, error) { return "   ", nil }
		g := newGrower(generate.GrowOptions{Rounds: 1, PerRound: 3})

		grown, reports, err := g.Grow(ctx, existing)

		Expect(err).NotTo(HaveOccurred())
		Expect(grown).To(BeEmpty())
		Expect(reports[0].ByReason[generate.ReasonParse]).To(Equal(3))
	})

	It("needs a seed dataset", func() {
		g := newGrower(generate.GrowOptions{PerRound: 1})

		_, _, err := g.Grow(ctx, nil)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FewShotPrompt", func() {
	It("numbers the examples and leaves a player turn open", func() {
		prompt := generate.FewShotPrompt([]dataset.TrainingExample{
			{Input: "Hi", Output: "Hello"},
			{Input: "Bye", Output: "Farewell"},
		})

		Expect(prompt).To(ContainSubstring("Example 1:\nPlayer: Hi\nNPC: Hello\n"))
		Expect(prompt).To(ContainSubstring("Example 2:\nPlayer: Bye\nNPC: Farewell\n"))
		Expect(prompt).To(HaveSuffix("Now generate a new, different conversation:\nPlayer: "))
	})
})

var _ = Describe("ExtractExchange", func() {
	DescribeTable("finds one exchange",
		func(raw string, expected scenario.Exchange) {
			ex, err := generate.ExtractExchange(raw)

			Expect(err).NotTo(HaveOccurred())
			Expect(ex).To(Equal(expected))
		},
		Entry("labelled lines", "Player: Need a room\nNPC: Two silver a night",
			scenario.Exchange{Player: "Need a room", NPC: "Two silver a night"}),
		Entry("unlabelled player line", "Need a room\nNPC: Two silver a night",
			scenario.Exchange{Player: "Need a room", NPC: "Two silver a night"}),
		Entry("two bare lines", "\nNeed a room\n\nTwo silver a night\nextra",
			scenario.Exchange{Player: "Need a room", NPC: "Two silver a night"}),
		Entry("first of several", "Player: a1\nNPC: b1\nPlayer: a2\nNPC: b2",
			scenario.Exchange{Player: "a1", NPC: "b1"}),
	)

	It("fails when there is no reply", func() {
		_, err := generate.ExtractExchange("Player: hello?")

		Expect(err).To(MatchError(scenario.ErrNoExchanges))
	})
})
