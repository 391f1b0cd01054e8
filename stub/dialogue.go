package stub

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
)

var playerLines = []string{
	"Hey there! What's the word around town?",
	"I'm new here, where should I start?",
	"Have you heard anything about %s?",
	"Can you help me with something about %s?",
	"What do you make of %s?",
	"Is it safe to travel these days?",
	"Got any advice for a fresh adventurer?",
	"Why is everyone talking about %s?",
}

var npcLines = []string{
	"Well met, traveller! Pull up a stool and I'll tell you what I know.",
	"Ah, %s. Folk whisper about it after dark, and not without reason.",
	"Start small. Help the farmers, earn some coin, then worry about %s.",
	"If I were you I'd ask the old ranger by the gate, she knows %s better than anyone.",
	"Keep your blade sharp and your purse closer. The roads aren't what they were.",
	"Between you and me, %s is more trouble than it's worth.",
	"Come back at dusk. There's someone you should meet about %s.",
	"Bring a torch and a friend. Never go alone, that's my rule.",
}

type exchange struct {
	Player string `json:"player"`
	NPC    string `json:"npc"`
}

// dialogue derives a short, deterministic conversation from the prompt so
// that different prompts yield different exchanges.
func dialogue(prompt string, turns int) []exchange {
	sum := sha256.Sum256([]byte(prompt))
	subject := subjectOf(prompt)

	out := make([]exchange, 0, turns)
	for i := 0; i < turns; i++ {
		p := playerLines[int(sum[2*i])%len(playerLines)]
		n := npcLines[int(sum[2*i+1])%len(npcLines)]
		out = append(out, exchange{Player: fill(p, subject), NPC: fill(n, subject)})
	}
	return out
}

// jsonDialogue renders the conversation in the {"exchanges": [...]} shape,
// fenced for some prompts the way chat models often answer.
func jsonDialogue(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	turns := 3 + int(sum[31])%3

	body, _ := json.Marshal(map[string][]exchange{"exchanges": dialogue(prompt, turns)})
	if sum[30]%2 == 1 {
		return "```json\n" + string(body) + "\n```"
	}
	return string(body)
}

// textDialogue answers an open "Player: " turn with a player line and a
// labelled reply.
func textDialogue(prompt string) string {
	ex := dialogue(prompt, 1)[0]
	return ex.Player + "\nNPC: " + ex.NPC
}

// subjectOf picks the topic out of "... is about <topic>." when present.
func subjectOf(prompt string) string {
	_, rest, ok := strings.Cut(prompt, " is about ")
	if !ok {
		return "the old road"
	}
	subject, _, _ := strings.Cut(rest, ".")
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "the old road"
	}
	return subject
}

func fill(line, subject string) string {
	if strings.Contains(line, "%s") {
		return fmt.Sprintf(line, subject)
	}
	return line
}
