package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// OverflowPolicy decides what happens when a per-worker capacity limit is hit.
type OverflowPolicy string

const (
	// OverflowFail aborts the run with a capacity error.
	OverflowFail OverflowPolicy = "fail"
	// OverflowSaturate stops tracking new IPs/ports and keeps counting known ones.
	OverflowSaturate OverflowPolicy = "saturate"
)

// ScanConfig holds the settings of a single scan run.
type ScanConfig struct {
	InputPath  string `yaml:"input_path"`
	NumWorkers int    `yaml:"num_workers"`
	Verbose    bool   `yaml:"verbose"`
	// TopOffenders is the number of per-IP entries each worker keeps for reporting.
	TopOffenders int `yaml:"top_offenders"`
}

// DetectionConfig holds the thresholds of the three detection rules.
type DetectionConfig struct {
	HighPortThreshold       int      `yaml:"high_port_threshold"`
	DoSAttemptThreshold     int      `yaml:"dos_attempt_threshold"`
	ReconAttemptThreshold   int      `yaml:"recon_attempt_threshold"`
	PacketCountDoSThreshold int      `yaml:"packet_count_dos_threshold"`
	ByteCountDoSThreshold   int64    `yaml:"byte_count_dos_threshold"`
	KnownServices           []string `yaml:"known_services"`
}

// LimitsConfig bounds the per-worker IP state. Zero means unbounded.
type LimitsConfig struct {
	MaxTrackedIPs  int            `yaml:"max_tracked_ips"`
	MaxPortsPerIP  int            `yaml:"max_ports_per_ip"`
	OverflowPolicy OverflowPolicy `yaml:"overflow_policy"`
}

// ClickHouseConfig holds the connection details for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// WriterDef defines a single report writer.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	RootPath   string           `yaml:"root_path"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// NATSConfig holds the settings used to broadcast finished reports.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// AlerterRule defines a single alert rule evaluated against a report.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
}

// AIAnalysisConfig toggles AI analysis of triggered alerts.
type AIAnalysisConfig struct {
	Enabled bool `yaml:"enabled"`
}

// AlerterConfig holds the settings for the alerter.
type AlerterConfig struct {
	Enabled    bool             `yaml:"enabled"`
	Rules      []AlerterRule    `yaml:"rules"`
	AIAnalysis AIAnalysisConfig `yaml:"ai_analysis"`
}

// SMTPConfig holds the settings for sending email notifications.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// AIConfig holds the settings for the AI model client.
type AIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// APIConfig holds the settings for the API server.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	GRPCAddr   string `yaml:"grpc_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Scan      ScanConfig      `yaml:"scan"`
	Detection DetectionConfig `yaml:"detection"`
	Limits    LimitsConfig    `yaml:"limits"`
	Writers   []WriterDef     `yaml:"writers"`
	NATS      NATSConfig      `yaml:"nats"`
	Alerter   AlerterConfig   `yaml:"alerter"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	AI        AIConfig        `yaml:"ai"`
	API       APIConfig       `yaml:"api"`
}

// Default returns a configuration carrying the stock detection thresholds.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			InputPath:    "network_logs.csv",
			NumWorkers:   runtime.NumCPU(),
			TopOffenders: 5,
		},
		Detection: DetectionConfig{
			HighPortThreshold:       50,
			DoSAttemptThreshold:     3,
			ReconAttemptThreshold:   5,
			PacketCountDoSThreshold: 1000,
			ByteCountDoSThreshold:   100000,
			KnownServices:           []string{"smtp", "http", "dns", "ftp"},
		},
		Limits: LimitsConfig{
			MaxTrackedIPs:  1000,
			MaxPortsPerIP:  1000,
			OverflowPolicy: OverflowFail,
		},
		NATS: NATSConfig{
			URL:     "nats://127.0.0.1:4222",
			Subject: "flowsentry.reports",
		},
		API: APIConfig{
			ListenAddr: ":8080",
			GRPCAddr:   ":50051",
		},
	}
}

// LoadConfig reads the configuration from a YAML file on top of Default and validates it.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data on top of Default and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a scan.
func (c *Config) Validate() error {
	if c.Scan.NumWorkers < 1 {
		return fmt.Errorf("scan.num_workers must be at least 1, got %d", c.Scan.NumWorkers)
	}
	if c.Scan.TopOffenders < 0 {
		return fmt.Errorf("scan.top_offenders must not be negative, got %d", c.Scan.TopOffenders)
	}

	d := c.Detection
	if d.HighPortThreshold < 0 || d.DoSAttemptThreshold < 0 || d.ReconAttemptThreshold < 0 {
		return fmt.Errorf("detection attempt thresholds must not be negative")
	}
	if d.PacketCountDoSThreshold < 0 || d.ByteCountDoSThreshold < 0 {
		return fmt.Errorf("detection volume thresholds must not be negative")
	}

	if c.Limits.MaxTrackedIPs < 0 || c.Limits.MaxPortsPerIP < 0 {
		return fmt.Errorf("limits must not be negative (0 means unbounded)")
	}
	switch c.Limits.OverflowPolicy {
	case OverflowFail, OverflowSaturate:
	case "":
		c.Limits.OverflowPolicy = OverflowFail
	default:
		return fmt.Errorf("unknown limits.overflow_policy '%s'", c.Limits.OverflowPolicy)
	}

	for _, w := range c.Writers {
		if w.Enabled && w.Type == "" {
			return fmt.Errorf("enabled writer is missing a type")
		}
	}
	return nil
}
