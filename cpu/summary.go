package cpu

import (
	"fmt"
	"io"
)

// Summary holds the statistics of a simulation.
type Summary struct {
	Operations    uint64  `json:"operations"`
	HitRate       float64 `json:"hit_rate"`
	MissRate      float64 `json:"miss_rate"`
	TotalAccesses uint64  `json:"total_accesses"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Evictions     uint64  `json:"evictions"`
	CacheSize     int     `json:"cache_size"`
	CacheCapacity int     `json:"cache_capacity"`
	MemorySize    int     `json:"memory_size"`
}

// Print writes the report in a human-readable form.
func (r Summary) Print(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"\nSIMULATION STATISTICS:\n"+
			"Operations Executed: %d\n"+
			"Cache Hit Rate: %.2f%%\n"+
			"Cache Miss Rate: %.2f%%\n"+
			"Total Memory Accesses: %d (%d hits, %d misses)\n"+
			"Cache Evictions: %d\n"+
			"Main Memory Size: %d entries\n"+
			"Cache Size: %d/%d blocks\n",
		r.Operations,
		r.HitRate,
		r.MissRate,
		r.TotalAccesses, r.Hits, r.Misses,
		r.Evictions,
		r.MemorySize,
		r.CacheSize, r.CacheCapacity,
	)

	return err
}
