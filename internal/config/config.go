package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AnalysisConfig holds the fixed constants of the detection stages. Zero
// values are replaced with the documented defaults by applyDefaults.
type AnalysisConfig struct {
	// SigmaMultiplier is k in the series rule |count - mean| > k*sigma.
	SigmaMultiplier float64 `yaml:"sigma_multiplier"`
	// Contamination is the fraction of records the packet detector flags.
	Contamination float64 `yaml:"contamination"`
	// MinRecords is the smallest dataset the packet detector will score.
	MinRecords int `yaml:"min_records"`
	// OversizeLengthBytes is the categorizer's oversized-packet bound.
	OversizeLengthBytes int `yaml:"oversize_length_bytes"`
	// HighFrequencyRate is the categorizer's per-minute source-rate bound.
	HighFrequencyRate int `yaml:"high_frequency_rate"`
}

// OutputConfig controls where run artifacts are written.
type OutputConfig struct {
	RootPath string `yaml:"root_path"`
}

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// ClickHouseConfig holds the connection settings for the record writer.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the settings for publishing run summaries as events.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// AlerterRule defines a single threshold rule evaluated against the run
// summary. Metric is one of total_records, total_anomalies,
// anomaly_percentage; Operator is one of >, <, =, >=, <=.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the alerter settings.
type AlerterConfig struct {
	Enabled bool          `yaml:"enabled"`
	Rules   []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the email notifier settings. To may list several
// recipients separated by commas.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Output     OutputConfig     `yaml:"output"`
	API        APIConfig        `yaml:"api"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Events     NATSConfig       `yaml:"events"`
	Alerter    AlerterConfig    `yaml:"alerter"`
	SMTP       SMTPConfig       `yaml:"smtp"`
}

// Default returns a Config with all documented defaults and no external
// sinks enabled.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied to any omitted analysis settings.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analysis.SigmaMultiplier <= 0 {
		c.Analysis.SigmaMultiplier = 3.0
	}
	if c.Analysis.Contamination <= 0 || c.Analysis.Contamination >= 1 {
		c.Analysis.Contamination = 0.05
	}
	if c.Analysis.MinRecords <= 0 {
		c.Analysis.MinRecords = 10
	}
	if c.Analysis.OversizeLengthBytes <= 0 {
		c.Analysis.OversizeLengthBytes = 1500
	}
	if c.Analysis.HighFrequencyRate <= 0 {
		c.Analysis.HighFrequencyRate = 60
	}
	if c.Output.RootPath == "" {
		c.Output.RootPath = "output"
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = ":8080"
	}
	if c.API.MaxUploadBytes <= 0 {
		c.API.MaxUploadBytes = 64 << 20
	}
}
