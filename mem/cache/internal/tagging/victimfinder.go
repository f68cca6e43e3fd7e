package tagging

// A VictimFinder decides which block should be evicted
type VictimFinder interface {
	FindVictim(tags Tags) (Block, bool)
}

// LRUVictimFinder evicts the least recently used block
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the block that has gone the longest without being visited
// or updated. Every visit and update moves a block to the back of the order,
// so the front block is unique. Among blocks that were never touched after
// insertion, it is the earliest inserted one.
func (e *LRUVictimFinder) FindVictim(tags Tags) (Block, bool) {
	return tags.Oldest()
}
