package profiler

import (
	"log"
	"runtime"
	"sync"
	"time"
)

// Profiler tracks frame rate, ray tracing time and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	traceCount int
	traceTotal time.Duration
	traceMax   time.Duration
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		mu:             &sync.Mutex{},
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// SetUpdateInterval changes how often statistics are logged. Non-positive values are ignored.
//
// Parameters:
//   - interval: the logging interval
func (p *Profiler) SetUpdateInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updateInterval = interval
}

// RecordTrace adds the duration of one full-frame ray trace to the current interval.
//
// Parameters:
//   - d: wall time spent tracing the frame
func (p *Profiler) RecordTrace(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.traceCount++
	p.traceTotal += d
	if d > p.traceMax {
		p.traceMax = d
	}
}

// TraceStats returns the average and maximum trace time recorded since the last logged interval.
//
// Returns:
//   - avg: mean trace duration, 0 if nothing was recorded
//   - max: longest trace duration
func (p *Profiler) TraceStats() (avg, max time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.traceStats()
}

// traceStats computes the trace summary. Caller must hold the mutex.
func (p *Profiler) traceStats() (avg, max time.Duration) {
	if p.traceCount == 0 {
		return 0, 0
	}
	return p.traceTotal / time.Duration(p.traceCount), p.traceMax
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, trace time, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		traceAvg, traceMax := p.traceStats()

		log.Printf("[Profiler] FPS: %.2f | Trace: %.2f ms (max: %.2f ms) | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, msec(traceAvg), msec(traceMax), allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		p.traceCount = 0
		p.traceTotal = 0
		p.traceMax = 0
		return true
	}

	return false
}

// msec converts a duration to fractional milliseconds for logging.
func msec(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
