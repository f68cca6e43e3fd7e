package mainmem

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const (
	// MinValue is the smallest value that HashValueSource generates.
	MinValue = 1

	// MaxValue is the largest value that HashValueSource generates.
	MaxValue = 100
)

// A ValueSource decides the value that a never-written key holds.
type ValueSource func(seed int64, key string) int

// HashValueSource derives a value in [MinValue, MaxValue] from the seed and the
// key. The same seed and key always produce the same value.
func HashValueSource(seed int64, key string) int {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(seed))

	d := xxhash.New()
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(key)

	span := uint64(MaxValue - MinValue + 1)

	return int(d.Sum64()%span) + MinValue
}

// FixedValueSource returns the listed value for known keys and falls back to
// the fallback source for the others.
func FixedValueSource(values map[string]int, fallback ValueSource) ValueSource {
	return func(seed int64, key string) int {
		if v, ok := values[key]; ok {
			return v
		}

		return fallback(seed, key)
	}
}
