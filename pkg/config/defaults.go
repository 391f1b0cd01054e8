package config

// DefaultSystemPrompt frames the model as a writer for one persona.
const DefaultSystemPrompt = `You write dialogue for non-player characters in a fantasy role-playing game.
You are voicing {{.Persona}}. Stay in character, keep replies warm and conversational, never robotic.`

// DefaultUserPrompt asks for one scenario and pins the output shape.
const DefaultUserPrompt = `{{.Description}}
The conversation is about {{.Topic}}. Create 3-5 exchanges that feel like real chat.
{{- if .Examples}}

Example player lines:
{{- range .Examples}}
- "{{.}}"
{{- end}}
{{- end}}

Respond with only a JSON object of this exact shape and nothing else:
{"exchanges": [{"player": "...", "npc": "..."}]}`

func defaultCategories() []Category {
	return []Category{
		{
			Name:        "casual_chat",
			Description: "Generate a natural, friendly conversation between a player and an NPC. The NPC should be warm, engaging and conversational.",
			Examples:    []string{"Hey there! How's it going?", "What's new around here?", "I'm new to this area, any tips?"},
		},
		{
			Name:        "quest_help",
			Description: "Generate a conversation where a player asks an NPC for help with a quest or task. The NPC should be knowledgeable and helpful.",
			Examples:    []string{"I'm stuck on this quest, can you help?", "Where do I find the ancient artifact?", "What should I do next?"},
		},
		{
			Name:        "game_advice",
			Description: "Generate a conversation where a player asks for game advice or tips. The NPC should give helpful advice in a friendly way.",
			Examples:    []string{"What's the best way to level up?", "Should I buy this item?", "How do I beat this boss?"},
		},
		{
			Name:        "lore_explanation",
			Description: "Generate a conversation where a player asks about lore, history or world details. The NPC should explain things in an engaging way.",
			Examples:    []string{"What's the history of this place?", "Tell me about the ancient war", "Who built this castle?"},
		},
		{
			Name:        "item_recommendation",
			Description: "Generate a conversation where a player asks for item or equipment recommendations. The NPC should give personalised advice.",
			Examples:    []string{"What weapon should I use?", "Is this armor good for my class?", "Should I upgrade this item?"},
		},
		{
			Name:        "strategy_tips",
			Description: "Generate a conversation where a player asks for strategy or combat tips. The NPC should give practical advice.",
			Examples:    []string{"How do I fight this enemy?", "What's the best strategy for this dungeon?", "Any tips for PvP?"},
		},
		{
			Name:        "social_interaction",
			Description: "Generate a conversation that is purely social, the NPC and player just chatting. The NPC should have personality.",
			Examples:    []string{"Nice weather today, isn't it?", "I love the music in this town", "What's your favorite season?"},
		},
		{
			Name:        "problem_solving",
			Description: "Generate a conversation where a player has a problem and the NPC helps solve it. The NPC should be patient and helpful.",
			Examples:    []string{"I can't figure out this puzzle", "I lost my map", "I'm lost and can't find the exit"},
		},
	}
}

func defaultPersonas() []string {
	return []string{
		"a gruff dwarven blacksmith",
		"a cheerful tavern keeper",
		"a retired royal guard",
		"an absent-minded court wizard",
		"a wandering bard",
		"a suspicious fence in the thieves' quarter",
		"an elderly village herbalist",
		"a young stable hand",
	}
}

func defaultTopics() []string {
	return []string{
		"the haunted mine north of town",
		"a missing caravan",
		"the upcoming harvest festival",
		"dragon sightings in the mountains",
		"forging a better sword",
		"the old king's lost crown",
		"rumours about the new mayor",
		"surviving the swamp at night",
	}
}
