package cache

// Stats is a snapshot of the counters of a cache.
type Stats struct {
	Capacity      int     `json:"capacity"`
	Size          int     `json:"size"`
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	TotalAccesses uint64  `json:"total_accesses"`
	Evictions     uint64  `json:"evictions"`
	HitRate       float64 `json:"hit_rate"`
	MissRate      float64 `json:"miss_rate"`
}
