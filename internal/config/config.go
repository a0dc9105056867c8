package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	apperrors "github.com/tatianab/falliant/internal/errors"
	"github.com/tatianab/falliant/internal/models"
	"github.com/tatianab/falliant/internal/queue"
)

// PathEnv names the variable that points at an explicit config file.
const PathEnv = "FALLIANT_CONFIG"

// Config holds the application configuration.
type Config struct {
	StartLevel int    `yaml:"start_level" env:"FALLIANT_START_LEVEL"`
	Randomizer string `yaml:"randomizer"  env:"FALLIANT_RANDOMIZER"`
	Seed       uint64 `yaml:"seed"        env:"FALLIANT_SEED"`
	Preview    int    `yaml:"preview"     env:"FALLIANT_PREVIEW"`
	Ghost      bool   `yaml:"ghost"       env:"FALLIANT_GHOST"`
	Sound      bool   `yaml:"sound"       env:"FALLIANT_SOUND"`
	DropBonus  bool   `yaml:"drop_bonus"  env:"FALLIANT_DROP_BONUS"`
	ScoreStore string `yaml:"score_store" env:"FALLIANT_SCORE_STORE"`
	DataDir    string `yaml:"data_dir"    env:"FALLIANT_DATA_DIR"`
	LogFile    string `yaml:"log_file"    env:"FALLIANT_LOG"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		StartLevel: 1,
		Randomizer: queue.GeneratorBag,
		Preview:    3,
		Ghost:      true,
		Sound:      true,
		ScoreStore: models.StoreYAML,
		DataDir:    DefaultDataDir(),
	}
}

// DefaultDataDir is where high scores live when data_dir is unset.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".falliant"
	}
	return filepath.Join(home, ".falliant")
}

// DefaultPath returns the config file location: $FALLIANT_CONFIG, else
// falliant/config.yaml under the user config directory.
func DefaultPath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "falliant", "config.yaml")
}

// LoadConfig loads the configuration from the default file location and
// environment variables.
func LoadConfig() (*Config, error) {
	return Load(DefaultPath(), os.Getenv(PathEnv) != "")
}

// Load layers defaults, the YAML file at path and FALLIANT_* environment
// variables, then validates the result. A missing file is only an error
// when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := cfg.decode(data); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.StartLevel < 1 || c.StartLevel > 10 {
		return apperrors.InvalidArgument("start_level %d out of range 1..10", c.StartLevel)
	}
	switch c.Randomizer {
	case queue.GeneratorBag, queue.GeneratorRandom:
	default:
		return apperrors.InvalidArgument("unknown randomizer %q", c.Randomizer)
	}
	if c.Preview < 1 || c.Preview > 5 {
		return apperrors.InvalidArgument("preview %d out of range 1..5", c.Preview)
	}
	switch c.ScoreStore {
	case models.StoreYAML, models.StoreSQLite:
	default:
		return apperrors.InvalidArgument("unknown score_store %q", c.ScoreStore)
	}
	if c.DataDir == "" {
		return apperrors.InvalidArgument("data_dir is empty")
	}
	return nil
}
