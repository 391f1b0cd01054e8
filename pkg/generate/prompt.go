package generate

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/papercomputeco/dialogen/pkg/combo"
	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/config"
)

// PromptBuilder renders the request for a combination from the configured
// templates and category descriptions.
type PromptBuilder struct {
	system     *template.Template
	user       *template.Template
	categories map[string]config.Category
}

type promptData struct {
	Persona     string
	Topic       string
	Category    string
	Description string
	Examples    []string
}

// NewPromptBuilder parses the templates and checks they render.
func NewPromptBuilder(prompt config.Prompt, catalog config.Catalog) (*PromptBuilder, error) {
	system, err := template.New("system").Option("missingkey=error").Parse(prompt.System)
	if err != nil {
		return nil, fmt.Errorf("parse system prompt: %w", err)
	}
	user, err := template.New("user").Option("missingkey=error").Parse(prompt.User)
	if err != nil {
		return nil, fmt.Errorf("parse user prompt: %w", err)
	}

	b := &PromptBuilder{
		system:     system,
		user:       user,
		categories: make(map[string]config.Category, len(catalog.Categories)),
	}
	for _, category := range catalog.Categories {
		b.categories[category.Name] = category
	}

	probe := combo.Combination{Category: "probe", Persona: "probe", Topic: "probe"}
	if _, err := b.Build(probe); err != nil {
		return nil, err
	}
	return b, nil
}

// Build renders the system and user text for c and asks for a JSON response.
func (b *PromptBuilder) Build(c combo.Combination) (completion.Request, error) {
	data := promptData{
		Persona:  c.Persona,
		Topic:    c.Topic,
		Category: c.Category,
	}
	if category, ok := b.categories[c.Category]; ok && category.Description != "" {
		data.Description = category.Description
		data.Examples = category.Examples
	} else {
		data.Description = fmt.Sprintf("Generate a conversation between a player and an NPC. Scenario type: %s.",
			strings.ReplaceAll(c.Category, "_", " "))
	}

	system, err := render(b.system, data)
	if err != nil {
		return completion.Request{}, fmt.Errorf("render system prompt: %w", err)
	}
	user, err := render(b.user, data)
	if err != nil {
		return completion.Request{}, fmt.Errorf("render user prompt: %w", err)
	}

	return completion.Request{System: system, Prompt: user, JSON: true}, nil
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
