package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Detect    DetectConfig    `yaml:"detect" mapstructure:"detect"`
	Normalize NormalizeConfig `yaml:"normalize" mapstructure:"normalize"`
	Pairing   PairingConfig   `yaml:"pairing" mapstructure:"pairing"`
	Aggregate AggregateConfig `yaml:"aggregate" mapstructure:"aggregate"`
	PDF       PDFConfig       `yaml:"pdf" mapstructure:"pdf"`
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DetectConfig configures format detection.
type DetectConfig struct {
	// MinStructuredColumns is the minimum number of recognized header
	// columns a tab-delimited .txt must carry to count as structured.
	MinStructuredColumns int `yaml:"min_structured_columns" mapstructure:"min_structured_columns"`
}

// NormalizeConfig configures raw-row normalization.
type NormalizeConfig struct {
	// AliasFile optionally points at a YAML alias table overriding the
	// built-in raw-field → canonical-field mapping.
	AliasFile      string `yaml:"alias_file" mapstructure:"alias_file"`
	DefaultQtyUnit string `yaml:"default_qty_unit" mapstructure:"default_qty_unit"`
}

// PairingConfig configures PDF↔TXT filename pairing.
type PairingConfig struct {
	MinSimilarity float64 `yaml:"min_similarity" mapstructure:"min_similarity"`
}

// AggregateConfig configures summary aggregation.
type AggregateConfig struct {
	TopHTS int `yaml:"top_hts" mapstructure:"top_hts"`
}

// PDFConfig configures PDF text extraction.
type PDFConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// WorkspaceConfig configures the on-disk upload/output workspace.
type WorkspaceConfig struct {
	UploadsDir     string `yaml:"uploads_dir" mapstructure:"uploads_dir"`
	OutputsDir     string `yaml:"outputs_dir" mapstructure:"outputs_dir"`
	RetentionHours int    `yaml:"retention_hours" mapstructure:"retention_hours"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB    int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// BatchConfig configures multi-file processing.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("detect.min_structured_columns", 3)
	v.SetDefault("normalize.default_qty_unit", "EA")
	v.SetDefault("pairing.min_similarity", 0.5)
	v.SetDefault("aggregate.top_hts", 10)
	v.SetDefault("pdf.provider", "internal")
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("workspace.uploads_dir", "uploads")
	v.SetDefault("workspace.outputs_dir", "outputs")
	v.SetDefault("workspace.retention_hours", 168)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 16)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("batch.concurrency", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks configuration values for internal consistency.
// All problems are reported at once, not just the first.
func (c *Config) Validate() error {
	var problems []string

	if c.Detect.MinStructuredColumns < 1 {
		problems = append(problems, "detect.min_structured_columns must be >= 1")
	}
	if c.Pairing.MinSimilarity < 0 || c.Pairing.MinSimilarity > 1 {
		problems = append(problems, "pairing.min_similarity must be between 0 and 1")
	}
	if c.Aggregate.TopHTS < 1 {
		problems = append(problems, "aggregate.top_hts must be >= 1")
	}
	if c.PDF.Provider != "internal" && c.PDF.Provider != "pdftotext" {
		problems = append(problems, "pdf.provider must be internal or pdftotext")
	}
	if c.Workspace.UploadsDir == "" {
		problems = append(problems, "workspace.uploads_dir is required")
	}
	if c.Workspace.OutputsDir == "" {
		problems = append(problems, "workspace.outputs_dir is required")
	}
	if c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}
	if c.Server.MaxUploadMB < 1 {
		problems = append(problems, "server.max_upload_mb must be >= 1")
	}
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 50 {
		problems = append(problems, "batch.concurrency must be between 1 and 50")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
