// Package profile detects host resources and derives the tuned
// integrity engine configuration, persisting it across runs.
package profile

import (
	"context"
	"math"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"

	"github.com/sells-group/integrity-cli/internal/config"
)

const bytesPerGB = 1 << 30

// scratchCandidates are probed in order for a writable scratch
// directory. Fast local scratch mounts first, OS temp dir last.
var scratchCandidates = []string{
	"/mnt/scratch",
	"/var/tmp",
}

// Profiler detects host resources. The zero value is ready to use.
type Profiler struct {
	// ScratchOverride, when set, is probed before the built-in
	// candidate list.
	ScratchOverride string
}

// Detect introspects the host and returns its resource specs. It never
// fails hard: any detection error yields the conservative fallback
// profile so the engine can always start.
func (p Profiler) Detect(ctx context.Context) config.SystemSpecs {
	specs, err := p.detect(ctx)
	if err != nil {
		zap.L().Warn("profile: host detection failed, using fallback profile",
			zap.Error(err),
		)
		return FallbackSpecs()
	}
	return specs
}

func (p Profiler) detect(ctx context.Context) (config.SystemSpecs, error) {
	var specs config.SystemSpecs

	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return specs, err
	}
	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil || physical < 1 {
		physical = logical
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return specs, err
	}

	scratch := p.selectScratchDir()

	usage, err := disk.UsageWithContext(ctx, scratch)
	if err != nil {
		return specs, err
	}

	specs.CPULogical = logical
	specs.CPUPhysical = physical
	specs.MemoryGB = roundGB(vm.Total)
	specs.DiskFreeGB = roundGB(usage.Free)
	specs.ScratchPath = scratch
	return specs, nil
}

// selectScratchDir probes the candidate list and returns the first
// directory that accepts a throwaway file. os.TempDir is the final
// fallback and is assumed writable.
func (p Profiler) selectScratchDir() string {
	candidates := scratchCandidates
	if p.ScratchOverride != "" {
		candidates = append([]string{p.ScratchOverride}, candidates...)
	}
	for _, dir := range candidates {
		if writable(dir) {
			return dir
		}
	}
	return os.TempDir()
}

func writable(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.CreateTemp(dir, ".integrity-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_, werr := f.WriteString("probe")
	f.Close()
	os.Remove(name)
	return werr == nil
}

// FallbackSpecs is the conservative profile used when detection fails:
// 4 cores, 8GB memory, 100GB free, OS temp dir for scratch.
func FallbackSpecs() config.SystemSpecs {
	return config.SystemSpecs{
		CPULogical:  4,
		CPUPhysical: 4,
		MemoryGB:    8,
		DiskFreeGB:  100,
		ScratchPath: filepath.Clean(os.TempDir()),
	}
}

// Derive computes the tuned batch and engine blocks from detected
// specs. Parallelism targets 75% of logical cores, the memory ceiling
// 90% of total memory, and the batch size steps with available memory.
func Derive(specs config.SystemSpecs) (config.BatchTuning, config.EngineTuning) {
	parallelism := int(math.Floor(float64(specs.CPULogical) * 0.75))
	if parallelism < 1 {
		parallelism = 1
	}

	memLimit := int(math.Floor(specs.MemoryGB * 0.9))
	if memLimit < 1 {
		memLimit = 1
	}

	var batchSize int
	switch {
	case specs.MemoryGB >= 32:
		batchSize = 2000
	case specs.MemoryGB >= 16:
		batchSize = 1000
	case specs.MemoryGB >= 8:
		batchSize = 500
	default:
		batchSize = 200
	}

	batch := config.BatchTuning{
		BatchSize:   batchSize,
		Parallelism: parallelism,
		Streaming:   specs.MemoryGB < 8,
	}
	engine := config.EngineTuning{
		MemoryLimitGB: memLimit,
		WorkerThreads: parallelism,
		ScratchDir:    specs.ScratchPath,
	}
	return batch, engine
}

// roundGB converts bytes to GB rounded to one decimal, which keeps the
// persisted snapshot stable across runs on the same host.
func roundGB(b uint64) float64 {
	return math.Round(float64(b)/bytesPerGB*10) / 10
}
