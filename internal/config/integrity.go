package config

// SystemSpecs is the detected host resource snapshot a tuned config was
// derived from. A mismatch between the persisted snapshot and a fresh
// detection triggers re-tuning.
type SystemSpecs struct {
	CPULogical  int     `json:"cpu_logical"`
	CPUPhysical int     `json:"cpu_physical"`
	MemoryGB    float64 `json:"memory_gb"`
	DiskFreeGB  float64 `json:"disk_free_gb"`
	ScratchPath string  `json:"scratch_path"`
}

// BatchTuning is the derived batch-processing block.
type BatchTuning struct {
	BatchSize   int  `json:"batch_size"`
	Parallelism int  `json:"parallelism"`
	Streaming   bool `json:"streaming"`
}

// EngineTuning is the derived analytic-engine block.
type EngineTuning struct {
	MemoryLimitGB int    `json:"memory_limit_gb"`
	WorkerThreads int    `json:"worker_threads"`
	ScratchDir    string `json:"scratch_dir"`
}

// ValidationRules is the caller-settable rules block. It survives
// re-tuning untouched: only the derived blocks follow the host.
type ValidationRules struct {
	ContentMinLength int      `json:"content_min_length" yaml:"content_min_length"`
	ContentMaxLength int      `json:"content_max_length" yaml:"content_max_length"`
	RequiredFields   []string `json:"required_fields" yaml:"required_fields"`
	OptionalFields   []string `json:"optional_fields" yaml:"optional_fields"`
	Categories       []string `json:"categories" yaml:"categories"`
	TimestampLayouts []string `json:"timestamp_layouts" yaml:"timestamp_layouts"`
}

// IntegrityConfig is the tuned engine configuration. Computed from host
// introspection on first use, persisted as a JSON snapshot, and
// recomputed whenever the detected system specs drift from the stored
// ones. Read-only once a run starts.
type IntegrityConfig struct {
	Batch  BatchTuning     `json:"batch_processing"`
	Engine EngineTuning    `json:"analytic_engine"`
	Rules  ValidationRules `json:"validation_rules"`
	System SystemSpecs     `json:"system_specs"`
}

// DefaultValidationRules returns the rules applied when no rules file
// or persisted override is present.
func DefaultValidationRules() ValidationRules {
	return ValidationRules{
		ContentMinLength: 10,
		ContentMaxLength: 1_000_000,
		RequiredFields:   []string{"content", "source"},
		OptionalFields:   []string{"timestamp", "category", "priority", "tags"},
		Categories: []string{
			"documentation", "conversation", "code", "reference", "note",
		},
		TimestampLayouts: []string{
			"2006-01-02T15:04:05Z07:00",
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"01/02/2006",
		},
	}
}
