package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/sells-group/integrity-cli/internal/config"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestDerive_Scenario16GB8Cores(t *testing.T) {
	// 8 logical cores and 16GB of memory tune to parallelism 6 and
	// batch size 1000.
	batch, engine := Derive(config.SystemSpecs{
		CPULogical:  8,
		CPUPhysical: 4,
		MemoryGB:    16,
		ScratchPath: "/tmp",
	})

	assert.Equal(t, 6, batch.Parallelism)
	assert.Equal(t, 1000, batch.BatchSize)
	assert.Equal(t, 14, engine.MemoryLimitGB)
	assert.Equal(t, 6, engine.WorkerThreads)
	assert.Equal(t, "/tmp", engine.ScratchDir)
	assert.False(t, batch.Streaming)
}

func TestDerive_BatchSizeLadder(t *testing.T) {
	tests := []struct {
		memoryGB float64
		want     int
	}{
		{64, 2000},
		{32, 2000},
		{31.9, 1000},
		{16, 1000},
		{8, 500},
		{7.9, 200},
		{2, 200},
	}
	for _, tt := range tests {
		batch, _ := Derive(config.SystemSpecs{CPULogical: 4, MemoryGB: tt.memoryGB})
		assert.Equal(t, tt.want, batch.BatchSize, "memory %.1fGB", tt.memoryGB)
	}
}

func TestDerive_MinimumFloors(t *testing.T) {
	batch, engine := Derive(config.SystemSpecs{CPULogical: 1, MemoryGB: 0.5})

	assert.Equal(t, 1, batch.Parallelism)
	assert.Equal(t, 1, engine.MemoryLimitGB)
	assert.True(t, batch.Streaming)
}

func TestDetect_NeverFailsHard(t *testing.T) {
	specs := Profiler{}.Detect(context.Background())

	assert.GreaterOrEqual(t, specs.CPULogical, 1)
	assert.Greater(t, specs.MemoryGB, 0.0)
	assert.NotEmpty(t, specs.ScratchPath)
}

func TestFallbackSpecs(t *testing.T) {
	specs := FallbackSpecs()

	assert.Equal(t, 4, specs.CPULogical)
	assert.Equal(t, 8.0, specs.MemoryGB)
	assert.Equal(t, 100.0, specs.DiskFreeGB)
	assert.NotEmpty(t, specs.ScratchPath)
}

func TestSelectScratchDir_OverrideWins(t *testing.T) {
	dir := t.TempDir()
	p := Profiler{ScratchOverride: dir}

	assert.Equal(t, dir, p.selectScratchDir())
}

func TestSelectScratchDir_FallsThroughMissingOverride(t *testing.T) {
	p := Profiler{ScratchOverride: "/definitely/not/a/real/path"}

	selected := p.selectScratchDir()
	assert.NotEqual(t, "/definitely/not/a/real/path", selected)
	assert.True(t, writable(selected))
}
