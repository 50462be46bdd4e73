// Package config holds application configuration and the tuned
// integrity engine configuration types.
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
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Tuning  TuningConfig  `yaml:"tuning" mapstructure:"tuning"`
	Dedup   DedupConfig   `yaml:"dedup" mapstructure:"dedup"`
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig configures the document source backend.
type SourceConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Path        string `yaml:"path" mapstructure:"path"`
}

// TuningConfig carries operator overrides that take precedence over
// auto-detected values when present.
type TuningConfig struct {
	ConfigPath  string `yaml:"config_path" mapstructure:"config_path"`
	ScratchDir  string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
	Parallelism int    `yaml:"parallelism" mapstructure:"parallelism"`
	BatchSize   int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// DedupConfig configures duplicate detection.
type DedupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
	MaxCandidates       int     `yaml:"max_candidates" mapstructure:"max_candidates"`
}

// QualityConfig configures quality scoring.
type QualityConfig struct {
	Threshold float64        `yaml:"threshold" mapstructure:"threshold"`
	Weights   QualityWeights `yaml:"weights" mapstructure:"weights"`
}

// QualityWeights defines the affine combination producing the overall
// quality score.
type QualityWeights struct {
	Completeness float64 `yaml:"completeness" mapstructure:"completeness"`
	Consistency  float64 `yaml:"consistency" mapstructure:"consistency"`
	Accuracy     float64 `yaml:"accuracy" mapstructure:"accuracy"`
	Uniqueness   float64 `yaml:"uniqueness" mapstructure:"uniqueness"`
}

// DefaultQualityWeights returns the standard 0.3/0.3/0.3/0.1 weighting.
func DefaultQualityWeights() QualityWeights {
	return QualityWeights{
		Completeness: 0.3,
		Consistency:  0.3,
		Accuracy:     0.3,
		Uniqueness:   0.1,
	}
}

// FetchConfig configures the paginated source fetch loop.
type FetchConfig struct {
	PageSize       int     `yaml:"page_size" mapstructure:"page_size"`
	PagesPerSecond float64 `yaml:"pages_per_second" mapstructure:"pages_per_second"`
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
	v.SetEnvPrefix("INTEGRITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every operative key is declared here, zero-valued or
	// not: AutomaticEnv only surfaces keys viper already knows about.
	v.SetDefault("source.driver", "sqlite")
	v.SetDefault("source.database_url", "")
	v.SetDefault("source.path", "documents.db")
	v.SetDefault("tuning.config_path", "integrity_config.json")
	v.SetDefault("tuning.scratch_dir", "")
	v.SetDefault("tuning.parallelism", 0)
	v.SetDefault("tuning.batch_size", 0)
	v.SetDefault("dedup.similarity_threshold", 0.95)
	v.SetDefault("dedup.max_candidates", 50)
	v.SetDefault("quality.threshold", 0.6)
	v.SetDefault("quality.weights.completeness", 0.3)
	v.SetDefault("quality.weights.consistency", 0.3)
	v.SetDefault("quality.weights.accuracy", 0.3)
	v.SetDefault("quality.weights.uniqueness", 0.1)
	v.SetDefault("fetch.page_size", 500)
	v.SetDefault("fetch.pages_per_second", 10)
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
