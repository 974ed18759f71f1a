// Package config loads edaflow settings from the environment, after merging
// an optional .env file through godotenv. Variables already set in the
// process environment win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StoreKind selects the report store backend.
type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
)

// DefaultSQLitePath is used when EDAFLOW_STORE=sqlite has no DSN.
const DefaultSQLitePath = "edaflow.db"

var (
	// ErrInvalidValue wraps every malformed or out-of-range variable.
	ErrInvalidValue = errors.New("config: invalid value")

	// ErrMissingDSN is returned for the postgres store without a DSN.
	ErrMissingDSN = errors.New("config: EDAFLOW_STORE_DSN is required for the postgres store")
)

// Config holds every setting of a pipeline run.
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string

	MaxMissingFraction   float64
	MaxDuplicateFraction float64
	MaxRetries           int
	// NarrativeTimeout bounds one language-model attempt. The stage timeout
	// derives from it, see NarrativeStageTimeout.
	NarrativeTimeout time.Duration

	Store    StoreKind
	StoreDSN string

	ArtifactBaseURL string

	LogFormat string
	LogLevel  string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Model:                "gpt-4o-mini",
		MaxMissingFraction:   0.5,
		MaxDuplicateFraction: 0.5,
		MaxRetries:           3,
		NarrativeTimeout:     30 * time.Second,
		Store:                StoreMemory,
		ArtifactBaseURL:      "static",
		LogFormat:            "compact",
		LogLevel:             "info",
	}
}

// narrativeAttempts is the first model call plus the client's three retries.
const narrativeAttempts = 4

// narrativeBackoffBudget covers the waits between narrative attempts.
const narrativeBackoffBudget = 15 * time.Second

// minNarrativeStageTimeout is the narrative stage timeout used by default.
const minNarrativeStageTimeout = 180 * time.Second

// NarrativeStageTimeout bounds the whole narrative stage so that every
// attempt of NarrativeTimeout and the backoff between them fit inside it.
func (c Config) NarrativeStageTimeout() time.Duration {
	return max(minNarrativeStageTimeout, narrativeAttempts*c.NarrativeTimeout+narrativeBackoffBudget)
}

// HasLanguageModel reports whether an API key is configured.
func (c Config) HasLanguageModel() bool {
	return c.OpenAIAPIKey != ""
}

// Load merges the given .env files (".env" when none) into the process
// environment and reads the configuration. Missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup, e.g. os.LookupEnv.
// All problems are reported at once.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, target *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}
	fraction := func(key string, target *float64) {
		value, ok := lookupTrimmed(lookup, key)
		if !ok {
			return
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			errs = append(errs, fmt.Errorf("%w: %s=%q must be a number in [0, 1]", ErrInvalidValue, key, value))
			return
		}
		*target = parsed
	}

	str("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &cfg.OpenAIBaseURL)
	str("EDAFLOW_MODEL", &cfg.Model)
	fraction("EDAFLOW_MAX_MISSING_FRACTION", &cfg.MaxMissingFraction)
	fraction("EDAFLOW_MAX_DUPLICATE_FRACTION", &cfg.MaxDuplicateFraction)

	if value, ok := lookupTrimmed(lookup, "EDAFLOW_MAX_RETRIES"); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			errs = append(errs, fmt.Errorf("%w: EDAFLOW_MAX_RETRIES=%q must be a non-negative integer", ErrInvalidValue, value))
		} else {
			cfg.MaxRetries = parsed
		}
	}

	if value, ok := lookupTrimmed(lookup, "EDAFLOW_NARRATIVE_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			errs = append(errs, fmt.Errorf("%w: EDAFLOW_NARRATIVE_TIMEOUT=%q must be a positive duration", ErrInvalidValue, value))
		} else {
			cfg.NarrativeTimeout = parsed
		}
	}

	if value, ok := lookupTrimmed(lookup, "EDAFLOW_STORE"); ok {
		switch kind := StoreKind(strings.ToLower(value)); kind {
		case StoreMemory, StoreSQLite, StorePostgres:
			cfg.Store = kind
		default:
			errs = append(errs, fmt.Errorf("%w: EDAFLOW_STORE=%q must be memory, sqlite or postgres", ErrInvalidValue, value))
		}
	}
	str("EDAFLOW_STORE_DSN", &cfg.StoreDSN)

	switch {
	case cfg.Store == StoreSQLite && cfg.StoreDSN == "":
		cfg.StoreDSN = DefaultSQLitePath
	case cfg.Store == StorePostgres && cfg.StoreDSN == "":
		errs = append(errs, ErrMissingDSN)
	}

	str("EDAFLOW_ARTIFACT_BASE_URL", &cfg.ArtifactBaseURL)
	str("EDAFLOW_LOG_FORMAT", &cfg.LogFormat)
	str("EDAFLOW_LOG_LEVEL", &cfg.LogLevel)

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	value, ok := lookup(key)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}
