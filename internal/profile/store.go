package profile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/integrity-cli/internal/config"
)

// ConfigStore owns the load/persist lifecycle of the tuned
// IntegrityConfig. It is the only writer of the snapshot file;
// concurrent engine instances race last-writer-wins, which is
// acceptable for a single-host tool.
type ConfigStore struct {
	path      string
	profiler  Profiler
	overrides config.TuningConfig
}

// NewConfigStore creates a ConfigStore persisting to path. Overrides
// from the app config (environment or config file) take precedence over
// detected values but are never written into the snapshot.
func NewConfigStore(path string, overrides config.TuningConfig) *ConfigStore {
	return &ConfigStore{
		path:      path,
		profiler:  Profiler{ScratchOverride: overrides.ScratchDir},
		overrides: overrides,
	}
}

// LoadConfig returns the tuned config. On first call it detects host
// resources, derives the tuned parameters, and persists the snapshot.
// On later calls it re-detects and, when the host has changed,
// recomputes the derived blocks while preserving the persisted
// validation rules, then rewrites the file.
func (s *ConfigStore) LoadConfig(ctx context.Context) (config.IntegrityConfig, error) {
	specs := s.profiler.Detect(ctx)

	stored, err := s.read()
	if err != nil {
		if !os.IsNotExist(eris.Cause(err)) {
			zap.L().Warn("profile: unreadable config snapshot, rebuilding",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		cfg := s.build(specs, config.DefaultValidationRules())
		if werr := s.write(cfg); werr != nil {
			return cfg, werr
		}
		return s.applyOverrides(cfg), nil
	}

	if specsDrifted(stored.System, specs) {
		zap.L().Info("profile: system specs changed, re-tuning",
			zap.Int("cpu_logical", specs.CPULogical),
			zap.Float64("memory_gb", specs.MemoryGB),
		)
		cfg := s.build(specs, stored.Rules)
		if werr := s.write(cfg); werr != nil {
			return cfg, werr
		}
		return s.applyOverrides(cfg), nil
	}

	// Host unchanged; refresh the volatile disk reading without
	// rewriting the file.
	stored.System.DiskFreeGB = specs.DiskFreeGB
	return s.applyOverrides(stored), nil
}

func (s *ConfigStore) build(specs config.SystemSpecs, rules config.ValidationRules) config.IntegrityConfig {
	batch, engine := Derive(specs)
	return config.IntegrityConfig{
		Batch:  batch,
		Engine: engine,
		Rules:  rules,
		System: specs,
	}
}

func (s *ConfigStore) applyOverrides(cfg config.IntegrityConfig) config.IntegrityConfig {
	if s.overrides.Parallelism > 0 {
		cfg.Batch.Parallelism = s.overrides.Parallelism
		cfg.Engine.WorkerThreads = s.overrides.Parallelism
	}
	if s.overrides.BatchSize > 0 {
		cfg.Batch.BatchSize = s.overrides.BatchSize
	}
	if s.overrides.ScratchDir != "" {
		cfg.Engine.ScratchDir = s.overrides.ScratchDir
	}
	return cfg
}

func (s *ConfigStore) read() (config.IntegrityConfig, error) {
	var cfg config.IntegrityConfig
	data, err := os.ReadFile(s.path)
	if err != nil {
		return cfg, eris.Wrap(err, "profile: read config snapshot")
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrap(err, "profile: parse config snapshot")
	}
	return cfg, nil
}

func (s *ConfigStore) write(cfg config.IntegrityConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return eris.Wrap(err, "profile: marshal config snapshot")
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "profile: create config dir")
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return eris.Wrap(err, "profile: write config snapshot")
	}
	return nil
}

// specsDrifted reports whether the host changed in a way that affects
// the derived parameters. Free disk space is deliberately excluded:
// nothing is derived from it and it moves between every run.
func specsDrifted(stored, detected config.SystemSpecs) bool {
	return stored.CPULogical != detected.CPULogical ||
		stored.CPUPhysical != detected.CPUPhysical ||
		stored.MemoryGB != detected.MemoryGB ||
		stored.ScratchPath != detected.ScratchPath
}
