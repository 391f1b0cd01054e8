package scenario_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/dialogen/pkg/combo"
	"github.com/papercomputeco/dialogen/pkg/scenario"
)

var _ = Describe("Parse", func() {
	It("parses a well-formed exchanges payload", func() {
		exchanges, err := scenario.Parse(`{"exchanges":[{"player":"a","npc":"b"}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(Equal([]scenario.Exchange{{Player: "a", NPC: "b"}}))
	})

	It("keeps conversational order", func() {
		exchanges, err := scenario.Parse(`{"exchanges":[
			{"player":"first","npc":"one"},
			{"player":"second","npc":"two"},
			{"player":"third","npc":"three"}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(HaveLen(3))
		Expect(exchanges[0].Player).To(Equal("first"))
		Expect(exchanges[2].NPC).To(Equal("three"))
	})

	It("strips code fences before parsing", func() {
		raw := "```json\n{\"exchanges\":[{\"player\":\"Hey there!\",\"npc\":\"Welcome, traveler.\"}]}\n```"

		exchanges, err := scenario.Parse(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(ConsistOf(scenario.Exchange{Player: "Hey there!", NPC: "Welcome, traveler."}))
	})

	It("falls back to line markers when the JSON is broken", func() {
		raw := "{\n  \"exchanges\": [\n    {\"player\": \"Where is the forge?\",\n     \"npc\": \"Down by the river.\"},\n    {\"player\": \"Thanks\""

		exchanges, err := scenario.Parse(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(Equal([]scenario.Exchange{{Player: "Where is the forge?", NPC: "Down by the river."}}))
	})

	It("fails when there is no array and no markers", func() {
		_, err := scenario.Parse("I'm sorry, I can't help with that.")

		Expect(err).To(MatchError(scenario.ErrNoExchanges))
	})

	It("fails instead of returning an empty scenario", func() {
		_, err := scenario.Parse(`{"exchanges":[]}`)

		Expect(err).To(MatchError(scenario.ErrNoExchanges))
	})
})

var _ = Describe("ParseJSON", func() {
	It("accepts alternative field names", func() {
		exchanges, err := scenario.ParseJSON(`{"conversation":[{"user":"hi","assistant":"hello"}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(Equal([]scenario.Exchange{{Player: "hi", NPC: "hello"}}))
	})

	It("matches keys case-insensitively", func() {
		exchanges, err := scenario.ParseJSON(`{"Exchanges":[{"Player":"hi","NPC":"hello"}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(HaveLen(1))
	})

	It("skips malformed and blank entries", func() {
		exchanges, err := scenario.ParseJSON(`{"exchanges":[
			"not an object",
			{"player":"   ","npc":"blank player"},
			{"player":"only player"},
			{"player":42,"npc":"numeric"},
			{"player":" ok ","npc":" fine "}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(Equal([]scenario.Exchange{{Player: "ok", NPC: "fine"}}))
	})

	It("rejects objects without an exchange array", func() {
		_, err := scenario.ParseJSON(`{"exchanges":"nope"}`)
		Expect(err).To(MatchError(scenario.ErrNoExchanges))

		_, err = scenario.ParseJSON(`{"other":[]}`)
		Expect(err).To(MatchError(scenario.ErrNoExchanges))
	})

	It("returns a decode error for non-JSON input", func() {
		_, err := scenario.ParseJSON("Player: hi")

		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(MatchError(scenario.ErrNoExchanges))
	})
})

var _ = Describe("ParseLines", func() {
	It("pairs each player line with the following npc line", func() {
		exchanges, err := scenario.ParseLines("Player: Hello!\nNPC: Hi there.\nPlayer: Any news?\nNPC: The mines reopened.")

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(Equal([]scenario.Exchange{
			{Player: "Hello!", NPC: "Hi there."},
			{Player: "Any news?", NPC: "The mines reopened."},
		}))
	})

	It("discards a trailing player line without reply", func() {
		exchanges, err := scenario.ParseLines("Player: one\nNPC: two\nPlayer: dangling")

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(HaveLen(1))
	})

	It("ignores npc lines with no pending player line", func() {
		exchanges, err := scenario.ParseLines("NPC: orphan\nPlayer: hi\nNPC: hello")

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges).To(Equal([]scenario.Exchange{{Player: "hi", NPC: "hello"}}))
	})

	It("keeps colons inside the text", func() {
		exchanges, err := scenario.ParseLines("player: ratio is 3:1?\nnpc: yes: three to one")

		Expect(err).NotTo(HaveOccurred())
		Expect(exchanges[0]).To(Equal(scenario.Exchange{Player: "ratio is 3:1?", NPC: "yes: three to one"}))
	})

	It("fails when no marker is present", func() {
		_, err := scenario.ParseLines("just some prose\nwithout any speaker")

		Expect(err).To(MatchError(scenario.ErrNoExchanges))
	})
})

var _ = Describe("StripFences", func() {
	It("leaves unfenced content alone", func() {
		Expect(scenario.StripFences(`  {"a":1}  `)).To(Equal(`{"a":1}`))
	})

	It("removes bare fences", func() {
		Expect(scenario.StripFences("```\n{\"a\":1}\n```")).To(Equal(`{"a":1}`))
	})
})

var _ = Describe("Scenario", func() {
	It("remembers its combination", func() {
		c := combo.Combination{Category: "quest_help", Persona: "guard", Topic: "bandits"}
		s := scenario.New(c, []scenario.Exchange{{Player: "a", NPC: "b"}})

		Expect(s.Combination()).To(Equal(c))
		Expect(s.Exchanges).To(HaveLen(1))
	})
})
