// Package config loads dialogen's TOML configuration: the combination
// catalogs, prompt templates, provider settings and generation and pipeline
// parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/dialogen/pkg/combo"
	"github.com/papercomputeco/dialogen/pkg/completion"
	"github.com/papercomputeco/dialogen/pkg/dataset"
	"github.com/papercomputeco/dialogen/pkg/retry"
)

// Config is the full configuration file.
type Config struct {
	Provider   completion.Config `toml:"provider"`
	Catalog    Catalog           `toml:"catalog"`
	Prompt     Prompt            `toml:"prompt"`
	Generation Generation        `toml:"generation"`
	Growth     Growth            `toml:"growth"`
	Pipeline   Pipeline          `toml:"pipeline"`
	Output     Output            `toml:"output"`
}

// Category is one scenario type and the text that describes it to the model.
type Category struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Examples    []string `toml:"examples"`
}

// Catalog holds the closed sets every combination is drawn from.
type Catalog struct {
	Categories []Category `toml:"categories"`
	Personas   []string   `toml:"personas"`
	Topics     []string   `toml:"topics"`
}

// Combinations returns the combination space described by the catalog.
func (c Catalog) Combinations() combo.Catalog {
	names := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		names = append(names, category.Name)
	}
	return combo.Catalog{Categories: names, Personas: c.Personas, Topics: c.Topics}
}

// Category looks up a category by name.
func (c Catalog) Category(name string) (Category, bool) {
	for _, category := range c.Categories {
		if category.Name == name {
			return category, true
		}
	}
	return Category{}, false
}

// Prompt holds the text/template sources used to build requests. Templates
// see .Persona, .Topic, .Category, .Description and .Examples.
type Prompt struct {
	System string `toml:"system"`
	User   string `toml:"user"`
}

// Generation controls the orchestrator.
type Generation struct {
	Count               int      `toml:"count"`
	Concurrency         int      `toml:"concurrency"`
	MaxAttempts         int      `toml:"max_attempts"`
	BackoffUnit         Duration `toml:"backoff_unit"`
	Timeout             Duration `toml:"timeout"`
	CombinationAttempts int      `toml:"combination_attempts"`
	// Seed drives combination draws. Zero seeds from the clock.
	Seed             int64  `toml:"seed"`
	Source           string `toml:"source"`
	InstructionStyle string `toml:"instruction_style"`
}

// Retry returns the retry controller settings.
func (g Generation) Retry() retry.Config {
	return retry.Config{
		MaxAttempts:    g.MaxAttempts,
		Unit:           g.BackoffUnit.Duration,
		AttemptTimeout: g.Timeout.Duration,
	}
}

// Growth controls self-growth rounds.
type Growth struct {
	Rounds   int `toml:"rounds"`
	PerRound int `toml:"per_round"`
	PoolSize int `toml:"pool_size"`
	FewShot  int `toml:"few_shot"`
}

// Pipeline controls post-processing.
type Pipeline struct {
	Filter        bool  `toml:"filter"`
	Dedup         bool  `toml:"dedup"`
	MinLength     int   `toml:"min_length"`
	MaxLength     int   `toml:"max_length"`
	BalanceTarget int   `toml:"balance_target"`
	Seed          int64 `toml:"seed"`
}

// Quality returns the filter band.
func (p Pipeline) Quality() dataset.QualityOptions {
	return dataset.QualityOptions{MinLength: p.MinLength, MaxLength: p.MaxLength}
}

// Output names where commands write by default.
type Output struct {
	Dir string `toml:"dir"`
}

// Load reads path over the defaults. An empty path returns the defaults.
// Environment references in the provider API key are expanded.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		defaultCategories := cfg.Catalog.Categories
		cfg.Catalog.Categories = nil

		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
		// an array of tables is merged element-wise, so only keep the
		// defaults when the file leaves categories out entirely
		if !md.IsDefined("catalog", "categories") {
			cfg.Catalog.Categories = defaultCategories
		}
	}

	cfg.Provider.APIKey = os.ExpandEnv(cfg.Provider.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem found in the configuration.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Catalog.Categories) == 0 {
		errs = append(errs, errors.New("catalog.categories must not be empty"))
	}
	seen := make(map[string]struct{}, len(c.Catalog.Categories))
	for i, category := range c.Catalog.Categories {
		if strings.TrimSpace(category.Name) == "" {
			errs = append(errs, fmt.Errorf("catalog.categories[%d] has no name", i))
			continue
		}
		if _, dup := seen[category.Name]; dup {
			errs = append(errs, fmt.Errorf("catalog.categories: duplicate %q", category.Name))
		}
		seen[category.Name] = struct{}{}
	}
	errs = append(errs, checkAxis("catalog.personas", c.Catalog.Personas)...)
	errs = append(errs, checkAxis("catalog.topics", c.Catalog.Topics)...)

	if c.Generation.Count < 0 {
		errs = append(errs, errors.New("generation.count must not be negative"))
	}
	if c.Generation.Concurrency <= 0 {
		errs = append(errs, errors.New("generation.concurrency must be positive"))
	}
	if c.Generation.MaxAttempts <= 0 {
		errs = append(errs, errors.New("generation.max_attempts must be positive"))
	}
	if c.Generation.BackoffUnit.Duration < 0 || c.Generation.Timeout.Duration < 0 {
		errs = append(errs, errors.New("generation durations must not be negative"))
	}
	switch dataset.InstructionStyle(c.Generation.InstructionStyle) {
	case dataset.StyleGeneric, dataset.StylePersona, "":
	default:
		errs = append(errs, fmt.Errorf("generation.instruction_style %q is not generic or persona", c.Generation.InstructionStyle))
	}

	if c.Pipeline.MinLength < 0 {
		errs = append(errs, errors.New("pipeline.min_length must not be negative"))
	}
	if c.Pipeline.MaxLength > 0 && c.Pipeline.MaxLength < c.Pipeline.MinLength {
		errs = append(errs, errors.New("pipeline.max_length must not be below min_length"))
	}
	if c.Growth.FewShot > c.Growth.PoolSize && c.Growth.PoolSize > 0 {
		errs = append(errs, errors.New("growth.few_shot must not exceed growth.pool_size"))
	}

	if strings.TrimSpace(c.Prompt.System) == "" || strings.TrimSpace(c.Prompt.User) == "" {
		errs = append(errs, errors.New("prompt.system and prompt.user must be set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// checkAxis rejects an empty list, blank entries and repeated values.
func checkAxis(key string, values []string) []error {
	if len(values) == 0 {
		return []error{fmt.Errorf("%s must not be empty", key)}
	}
	var errs []error
	seen := make(map[string]struct{}, len(values))
	for i, value := range values {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s[%d] is blank", key, i))
			continue
		}
		if _, dup := seen[value]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate %q", key, value))
		}
		seen[value] = struct{}{}
	}
	return errs
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Provider: completion.Config{
			Kind:        completion.KindOllama,
			BaseURL:     completion.DefaultOllamaURL,
			Model:       "gemma3:4b",
			Temperature: 0.8,
			MaxTokens:   1000,
		},
		Catalog: Catalog{
			Categories: defaultCategories(),
			Personas:   defaultPersonas(),
			Topics:     defaultTopics(),
		},
		Prompt: Prompt{
			System: DefaultSystemPrompt,
			User:   DefaultUserPrompt,
		},
		Generation: Generation{
			Count:               100,
			Concurrency:         3,
			MaxAttempts:         retry.DefaultMaxAttempts,
			BackoffUnit:         D(retry.DefaultUnit),
			Timeout:             D(60 * time.Second),
			CombinationAttempts: combo.DefaultMaxAttempts,
			Source:              "bootstrap",
			InstructionStyle:    string(dataset.StyleGeneric),
		},
		Growth: Growth{
			Rounds:   1,
			PerRound: 20,
			PoolSize: 50,
			FewShot:  5,
		},
		Pipeline: Pipeline{
			Filter:    true,
			Dedup:     true,
			MinLength: dataset.DefaultMinLength,
			MaxLength: dataset.DefaultMaxLength,
			Seed:      42,
		},
		Output: Output{
			Dir: "data",
		},
	}
}
