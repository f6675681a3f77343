package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Defaults for the sampling loop. A config file in the data
	// directory can override any of them; the command line cannot,
	// it only selects the data directory and verbosity.
	DefaultSamplePeriod  = 10 * time.Second
	DefaultStorePeriod   = 60 * time.Second
	DefaultMaxWodSizeKB  = 10
	DefaultMaxFileErrors = 5
	DefaultDataDir       = "/tmp"
	DefaultTNCAddr       = "127.0.0.1:8000"

	ConfigFileName = "pacsat-telem.yaml"

	wodFileName     = "wod"
	queueDirName    = "queue"
	catalogFileName = "catalog.db"
)

// TimeDuration wraps time.Duration for yaml config values like "10s" or
// "1m". Zero and negative values are valid and disable the
// corresponding action.
type TimeDuration time.Duration

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalYAML() (interface{}, error) {
	return time.Duration(*d).String(), nil
}

func (d TimeDuration) Duration() time.Duration {
	return time.Duration(d)
}

// Config holds the daemon settings.
type Config struct {
	// DataDir and Verbose come from the command line only; the config
	// file is discovered inside the data directory and cannot move it.
	DataDir string `yaml:"-"`
	Verbose bool   `yaml:"-"`

	SamplePeriod TimeDuration `yaml:"samplePeriod"`
	StorePeriod  TimeDuration `yaml:"storePeriod"`
	BeaconPeriod TimeDuration `yaml:"beaconPeriod"`

	MaxWodSizeKB  int64 `yaml:"maxWodSizeKB"`
	MaxFileErrors int   `yaml:"maxFileErrors"`

	TNCAddr     string `yaml:"tncAddr"`
	MetricsAddr string `yaml:"metricsAddr"`
}

// NewConfig returns a config with the stock pacsat defaults.
func NewConfig() *Config {
	return &Config{
		DataDir:       DefaultDataDir,
		SamplePeriod:  TimeDuration(DefaultSamplePeriod),
		StorePeriod:   TimeDuration(DefaultStorePeriod),
		MaxWodSizeKB:  DefaultMaxWodSizeKB,
		MaxFileErrors: DefaultMaxFileErrors,
		TNCAddr:       DefaultTNCAddr,
	}
}

// Load applies overrides from the config file inside the data directory,
// if one exists, and validates the result. A missing file is not an
// error; the defaults stand.
func (c *Config) Load() error {
	path := filepath.Join(c.DataDir, ConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c.Validate()
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return c.Validate()
}

// Validate checks the settings the loop cannot tolerate being wrong.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data directory is required")
	}
	if c.MaxWodSizeKB <= 0 {
		return fmt.Errorf("max WOD size must be positive, got %dKB", c.MaxWodSizeKB)
	}
	if c.MaxFileErrors < 0 {
		return fmt.Errorf("max file errors must not be negative, got %d", c.MaxFileErrors)
	}
	if c.TNCAddr == "" {
		return errors.New("TNC address is required")
	}
	return nil
}

// WodPath is the working WOD file location.
func (c *Config) WodPath() string {
	return filepath.Join(c.DataDir, wodFileName)
}

// QueueDir is where completed WOD artifacts are placed for ingestion.
func (c *Config) QueueDir() string {
	return filepath.Join(c.DataDir, queueDirName)
}

// CatalogPath is the artifact catalog database location.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, catalogFileName)
}
