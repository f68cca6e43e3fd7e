// Package tagging keeps track of the entries that are resident in a cache and
// of the order in which they were last touched.
package tagging

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// A Block is a resident cache entry.
type Block struct {
	Key   string
	Value int
}

// Tags holds the resident blocks ordered from the least recently used to the
// most recently used.
type Tags interface {
	// Lookup returns the block that holds the key, without changing the
	// recency order.
	Lookup(key string) (Block, bool)

	// Visit marks the block that holds the key as the most recently used.
	Visit(key string)

	// Update inserts or overwrites a block and marks it as the most recently
	// used.
	Update(block Block)

	// Remove drops the block that holds the key.
	Remove(key string) bool

	// Oldest returns the least recently used block.
	Oldest() (Block, bool)

	// Blocks lists the resident blocks, least recently used first.
	Blocks() []Block

	Len() int
	Reset()
}

// NewTags creates an empty Tags.
func NewTags() Tags {
	t := &tagsImpl{}
	t.Reset()

	return t
}

type tagsImpl struct {
	order *orderedmap.OrderedMap[string, int]
}

func (t *tagsImpl) Lookup(key string) (Block, bool) {
	value, found := t.order.Get(key)
	if !found {
		return Block{}, false
	}

	return Block{Key: key, Value: value}, true
}

// Visit moves the block to the back of the order. Visiting the most recently
// used block leaves the order unchanged.
func (t *tagsImpl) Visit(key string) {
	_ = t.order.MoveToBack(key)
}

func (t *tagsImpl) Update(block Block) {
	_, present := t.order.Set(block.Key, block.Value)
	if present {
		t.Visit(block.Key)
	}
}

func (t *tagsImpl) Remove(key string) bool {
	_, present := t.order.Delete(key)
	return present
}

func (t *tagsImpl) Oldest() (Block, bool) {
	pair := t.order.Oldest()
	if pair == nil {
		return Block{}, false
	}

	return Block{Key: pair.Key, Value: pair.Value}, true
}

func (t *tagsImpl) Blocks() []Block {
	blocks := make([]Block, 0, t.order.Len())
	for pair := t.order.Oldest(); pair != nil; pair = pair.Next() {
		blocks = append(blocks, Block{Key: pair.Key, Value: pair.Value})
	}

	return blocks
}

func (t *tagsImpl) Len() int {
	return t.order.Len()
}

// Reset drops all the blocks.
func (t *tagsImpl) Reset() {
	t.order = orderedmap.New[string, int]()
}
