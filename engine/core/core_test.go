package core

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssert(t *testing.T) {
	SetLogOutput(io.Discard)

	assert.NotPanics(t, func() { Assert(true, "never shown") })
	assert.PanicsWithError(t, "engine shut down twice", func() {
		Assert(false, "engine shut down %s", "twice")
	})
}

func TestMetricsAverage(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	assert.InDelta(t, 16.0, m.FrameTime(), 1e-9)

	// 70 frames of 16ms cross one second once
	for i := 0; i < 40; i++ {
		m.Update(0.016)
	}
	fps, _ := m.Frame()
	assert.Equal(t, float64(62), fps)
}

func TestNewIdentifierIsUnique(t *testing.T) {
	a, b := NewIdentifier(), NewIdentifier()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestHashString(t *testing.T) {
	// FNV-1a 64 offset basis for the empty input
	assert.Equal(t, uint64(0xcbf29ce484222325), HashString(""))
	assert.Equal(t, HashString("assets/models/robot.model"), HashString("assets/models/robot.model"))
	assert.NotEqual(t, HashString("a"), HashString("b"))
}
