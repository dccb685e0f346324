package core

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// NewIdentifier returns a unique id for engine instances (animators, render groups).
func NewIdentifier() string {
	return uuid.NewString()
}

// HashString returns the FNV-1a 64-bit hash of s. Content addressed caches
// key their entries with it.
func HashString(s string) uint64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(s))
	return hasher.Sum64()
}
