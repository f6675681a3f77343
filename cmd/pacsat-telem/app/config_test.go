package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestConfigDefaults(t *testing.T) {
	c := NewConfig()

	if c.SamplePeriod.Duration() != 10*time.Second {
		t.Errorf("expected 10s sample period, got %v", c.SamplePeriod.Duration())
	}
	if c.StorePeriod.Duration() != 60*time.Second {
		t.Errorf("expected 60s store period, got %v", c.StorePeriod.Duration())
	}
	if c.BeaconPeriod.Duration() != 0 {
		t.Errorf("expected beacon disabled by default, got %v", c.BeaconPeriod.Duration())
	}
	if c.MaxWodSizeKB != 10 {
		t.Errorf("expected 10KB max WOD size, got %d", c.MaxWodSizeKB)
	}
	if c.MaxFileErrors != 5 {
		t.Errorf("expected 5 max file errors, got %d", c.MaxFileErrors)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestConfigPaths(t *testing.T) {
	c := NewConfig()
	c.DataDir = "/data/pacsat"

	if got := c.WodPath(); got != "/data/pacsat/wod" {
		t.Errorf("unexpected WOD path: %s", got)
	}
	if got := c.QueueDir(); got != "/data/pacsat/queue" {
		t.Errorf("unexpected queue dir: %s", got)
	}
	if got := c.CatalogPath(); got != "/data/pacsat/catalog.db" {
		t.Errorf("unexpected catalog path: %s", got)
	}
}

func TestConfigLoadMissingFileKeepsDefaults(t *testing.T) {
	c := NewConfig()
	c.DataDir = t.TempDir()

	if err := c.Load(); err != nil {
		t.Fatalf("load without config file: %v", err)
	}
	if c.SamplePeriod.Duration() != 10*time.Second {
		t.Errorf("defaults changed without a config file: %v", c.SamplePeriod.Duration())
	}
}

func TestConfigLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	content := []byte(
		"samplePeriod: 5s\n" +
			"storePeriod: 2m\n" +
			"beaconPeriod: 30s\n" +
			"maxWodSizeKB: 64\n" +
			"maxFileErrors: 3\n" +
			"tncAddr: 10.0.0.5:8000\n" +
			"metricsAddr: :9100\n")
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c := NewConfig()
	c.DataDir = dir
	if err := c.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.SamplePeriod.Duration() != 5*time.Second {
		t.Errorf("expected 5s sample period, got %v", c.SamplePeriod.Duration())
	}
	if c.StorePeriod.Duration() != 2*time.Minute {
		t.Errorf("expected 2m store period, got %v", c.StorePeriod.Duration())
	}
	if c.BeaconPeriod.Duration() != 30*time.Second {
		t.Errorf("expected 30s beacon period, got %v", c.BeaconPeriod.Duration())
	}
	if c.MaxWodSizeKB != 64 {
		t.Errorf("expected 64KB max size, got %d", c.MaxWodSizeKB)
	}
	if c.MaxFileErrors != 3 {
		t.Errorf("expected 3 max file errors, got %d", c.MaxFileErrors)
	}
	if c.TNCAddr != "10.0.0.5:8000" {
		t.Errorf("unexpected TNC addr: %s", c.TNCAddr)
	}
	if c.MetricsAddr != ":9100" {
		t.Errorf("unexpected metrics addr: %s", c.MetricsAddr)
	}
}

func TestConfigLoadInvalidDuration(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("samplePeriod: soon\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	c := NewConfig()
	c.DataDir = dir
	if err := c.Load(); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero max size", func(c *Config) { c.MaxWodSizeKB = 0 }},
		{"negative max errors", func(c *Config) { c.MaxFileErrors = -1 }},
		{"empty TNC addr", func(c *Config) { c.TNCAddr = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTimeDurationYAMLRoundTrip(t *testing.T) {
	d := TimeDuration(90 * time.Second)
	out, err := yaml.Marshal(&d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back TimeDuration
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip mismatch: %v != %v", back.Duration(), d.Duration())
	}
}
