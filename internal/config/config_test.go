package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_MatchesStockThresholds(t *testing.T) {
	cfg := Default()

	if cfg.Detection.HighPortThreshold != 50 {
		t.Errorf("Expected high port threshold 50, got %d", cfg.Detection.HighPortThreshold)
	}
	if cfg.Detection.DoSAttemptThreshold != 3 {
		t.Errorf("Expected DoS attempt threshold 3, got %d", cfg.Detection.DoSAttemptThreshold)
	}
	if cfg.Detection.ReconAttemptThreshold != 5 {
		t.Errorf("Expected recon attempt threshold 5, got %d", cfg.Detection.ReconAttemptThreshold)
	}
	if cfg.Detection.PacketCountDoSThreshold != 1000 {
		t.Errorf("Expected packet count threshold 1000, got %d", cfg.Detection.PacketCountDoSThreshold)
	}
	if cfg.Detection.ByteCountDoSThreshold != 100000 {
		t.Errorf("Expected byte count threshold 100000, got %d", cfg.Detection.ByteCountDoSThreshold)
	}
	if len(cfg.Detection.KnownServices) != 4 {
		t.Errorf("Expected 4 known services, got %v", cfg.Detection.KnownServices)
	}
	if cfg.Limits.MaxTrackedIPs != 1000 || cfg.Limits.MaxPortsPerIP != 1000 {
		t.Errorf("Expected limits of 1000/1000, got %d/%d", cfg.Limits.MaxTrackedIPs, cfg.Limits.MaxPortsPerIP)
	}
	if cfg.Limits.OverflowPolicy != OverflowFail {
		t.Errorf("Expected overflow policy 'fail', got '%s'", cfg.Limits.OverflowPolicy)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	yamlData := `
scan:
  input_path: /tmp/flows.csv
  num_workers: 8
detection:
  high_port_threshold: 10
  known_services: [ssh]
limits:
  overflow_policy: saturate
writers:
  - type: text
    enabled: true
    root_path: ./reports
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Scan.InputPath != "/tmp/flows.csv" || cfg.Scan.NumWorkers != 8 {
		t.Errorf("Scan section not loaded: %+v", cfg.Scan)
	}
	if cfg.Detection.HighPortThreshold != 10 {
		t.Errorf("Expected overridden high port threshold 10, got %d", cfg.Detection.HighPortThreshold)
	}
	if cfg.Detection.DoSAttemptThreshold != 3 {
		t.Errorf("Expected default DoS threshold to survive, got %d", cfg.Detection.DoSAttemptThreshold)
	}
	if len(cfg.Detection.KnownServices) != 1 || cfg.Detection.KnownServices[0] != "ssh" {
		t.Errorf("Expected known services [ssh], got %v", cfg.Detection.KnownServices)
	}
	if cfg.Limits.OverflowPolicy != OverflowSaturate {
		t.Errorf("Expected saturate policy, got '%s'", cfg.Limits.OverflowPolicy)
	}
	if len(cfg.Writers) != 1 || cfg.Writers[0].Type != "text" {
		t.Errorf("Expected one text writer, got %+v", cfg.Writers)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected an error for a missing config file")
	}
}

func TestParse_RejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"zero workers":   "scan:\n  num_workers: 0\n",
		"bad policy":     "limits:\n  overflow_policy: drop\n",
		"negative limit": "limits:\n  max_tracked_ips: -1\n",
		"untyped writer": "writers:\n  - enabled: true\n",
		"bad yaml":       "scan: [",
	}
	for name, data := range cases {
		if _, err := Parse([]byte(data)); err == nil {
			t.Errorf("%s: expected a validation error", name)
		}
	}
}
