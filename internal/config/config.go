// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config carrying every default.
// - Load(ctx) layers a YAML file and environment variables on top.
// - Domain packages own their parameter structs; this package composes them.
package config

import (
	"runtime"

	"github.com/okian/draftrange/internal/domain/archetype"
	"github.com/okian/draftrange/internal/domain/model"
	"github.com/okian/draftrange/internal/domain/projection"
	"github.com/okian/draftrange/internal/domain/scoring"
	"github.com/okian/draftrange/internal/domain/similarity"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// LogFile enables the rotating file sink when set.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Workers sets the batch projection concurrency. Zero uses the CPU count.
	Workers int `koanf:"workers" validate:"gte=0"`

	// MaxBatch caps the number of prospects accepted per batch request.
	MaxBatch int `koanf:"max_batch" validate:"gte=1"`

	// CorpusPath points at the historical corpus (.json, .yaml, optionally .gz).
	CorpusPath string `koanf:"corpus_path"`

	// VerifyDeterminism recomputes every projection and fails on any
	// difference. Meant for verification runs, not production traffic.
	VerifyDeterminism bool `koanf:"verify_determinism"`

	// StatRanges are the population spreads used to normalise rule margins
	// and as the last-resort similarity scale.
	StatRanges model.Ranges `koanf:"stat_ranges"`

	Archetypes archetype.Config  `koanf:"archetypes"`
	Similarity similarity.Config `koanf:"similarity"`
	Scoring    scoring.Config    `koanf:"scoring"`
	Projection projection.Config `koanf:"projection"`
}

// New creates a Config with defaults. Similarity weight vectors have no
// default and must come from a config file.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		Addr:       ":9080",
		Workers:    runtime.NumCPU(),
		MaxBatch:   500,
		CorpusPath: "data/corpus.yaml",
		StatRanges: model.DefaultRanges(),
		Archetypes: archetype.DefaultConfig(),
		Similarity: similarity.DefaultConfig(),
		Scoring:    scoring.DefaultConfig(),
		Projection: projection.DefaultConfig(),
	}
}
