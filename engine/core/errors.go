package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknown = errors.New("unknown")

	// animation building
	ErrKeyframeOrder   = errors.New("keyframe time is less than the previous keyframe time")
	ErrEmptyAnimation  = errors.New("animation has no keyframes")
	ErrBuilderConsumed = errors.New("animation builder already built")

	// skeleton and model data
	ErrInvalidSkeleton  = errors.New("invalid skeleton")
	ErrMalformedAsset   = errors.New("malformed asset file")
	ErrModelNotFound    = errors.New("model not found")
	ErrInvalidClipIndex = errors.New("animation clip index out of range")

	// rendering hand-off
	ErrTooManyBones = errors.New("bone count exceeds the bone buffer capacity")

	// lifecycle
	ErrAlreadyShutdown = errors.New("already shut down")
)

// Assert panics with a formatted error when cond is false. It is reserved for
// programmer misuse that has no sensible error return.
func Assert(cond bool, msg string, args ...interface{}) {
	if cond {
		return
	}
	err := fmt.Errorf(msg, args...)
	LogError("assertion failed: %s", err)
	panic(err)
}
