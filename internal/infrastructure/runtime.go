package infrastructure

import (
	"runtime"
	"time"
)

// RuntimeStats is a point-in-time view of the Go runtime, reported by the
// readiness endpoint.
type RuntimeStats struct {
	Goroutines   int           `json:"goroutines"`
	HeapAlloc    uint64        `json:"heap_alloc_bytes"`
	SystemMemory uint64        `json:"system_memory_bytes"`
	GCCount      uint32        `json:"gc_count"`
	LastGCPause  time.Duration `json:"last_gc_pause_ns"`
	CPUCount     int           `json:"cpu_count"`
	Uptime       string        `json:"uptime"`
}

// CollectRuntimeStats reads runtime.MemStats and process counters.
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		Goroutines:   runtime.NumGoroutine(),
		HeapAlloc:    memStats.HeapAlloc,
		SystemMemory: memStats.Sys,
		GCCount:      memStats.NumGC,
		LastGCPause:  time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		CPUCount:     runtime.NumCPU(),
		Uptime:       time.Since(startTime).Round(time.Second).String(),
	}
}
