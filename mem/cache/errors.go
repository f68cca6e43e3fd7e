package cache

import "errors"

// ErrInvalidCapacity is returned when a cache is built with a capacity smaller
// than one.
var ErrInvalidCapacity = errors.New("cache capacity must be at least 1")
