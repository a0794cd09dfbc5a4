package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven configuration. Every field has a
// workable default so the game runs offline with no environment at all.
type Config struct {
	// ServiceURL enables the remote profile service when set; empty
	// selects the local file store.
	ServiceURL string        `env:"NEXUS_PROFILE_URL"`
	Timeout    time.Duration `env:"NEXUS_PROFILE_TIMEOUT" envDefault:"10s"`

	// DataDir holds the keypair and offline saves. Defaults to
	// ~/.nexuscore.
	DataDir string `env:"NEXUS_DATA_DIR"`

	// Seed fixes the simulation RNG; 0 seeds from the clock.
	Seed int64 `env:"NEXUS_SEED" envDefault:"0"`
}

// LoadConfig parses configuration from the environment and fills in
// the data dir default.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving home dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".nexuscore")
	}
	return cfg, nil
}

// KeyPath is the keypair location under the data dir.
func (c Config) KeyPath() string {
	return filepath.Join(c.DataDir, "identity.json")
}

// SavePath is the offline save directory under the data dir.
func (c Config) SavePath() string {
	return filepath.Join(c.DataDir, "saves")
}
