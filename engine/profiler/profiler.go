package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting window of frame and memory statistics.
type Stats struct {
	// FPS is the frame rate over the window.
	FPS float64
	// PrimitivesPerFrame is the average number of primitives drawn per frame.
	PrimitivesPerFrame float64
	// HeapMB is the live heap at the end of the window.
	HeapMB float64
	// AllocRateMB is the allocation rate over the window, in MB per second.
	AllocRateMB float64
	// GCCount is the total number of completed collections.
	GCCount uint32
}

// Profiler tracks frame rate, draw load and memory, and logs a Stats line at a fixed interval.
type Profiler struct {
	interval time.Duration
	now      func() time.Time
	logger   *log.Logger

	frames     int
	primitives int
	lastTime   time.Time

	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Stats
}

// ProfilerBuilderOption is a functional option for configuring a Profiler via NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often stats are computed and logged. Non-positive values are ignored.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger stats are written to. Defaults to the standard logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogger(l *log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProfiler creates a Profiler reporting every second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		interval: time.Second,
		now:      time.Now,
		logger:   log.Default(),
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame that drew primitives primitives. Once the interval has elapsed it
// computes Stats, logs them and starts a new window.
//
// Parameters:
//   - primitives: primitives drawn this frame
//
// Returns:
//   - bool: true if stats were computed this tick
func (p *Profiler) Tick(primitives int) bool {
	p.frames++
	p.primitives += primitives

	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	secs := elapsed.Seconds()
	p.last = Stats{
		FPS:                float64(p.frames) / secs,
		PrimitivesPerFrame: float64(p.primitives) / float64(p.frames),
		HeapMB:             float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:        float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs,
		GCCount:            p.memStats.NumGC,
	}
	p.logger.Printf("[Profiler] FPS: %.2f | Primitives/frame: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d",
		p.last.FPS, p.last.PrimitivesPerFrame, p.last.HeapMB, p.last.AllocRateMB, p.last.GCCount)

	p.frames = 0
	p.primitives = 0
	p.lastTime = current
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the stats of the most recent completed window, zero before the first.
//
// Returns:
//   - Stats: the stats
func (p *Profiler) Last() Stats {
	return p.last
}
