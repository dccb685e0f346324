package debug

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

func TestAddLine(t *testing.T) {
	sd := NewSimpleDraw(4)
	sd.AddLine(math.NewVec3(0, 0, 0), math.NewVec3(1, 0, 0), math.ColourWhite)
	sd.AddLine(math.NewVec3(0, 0, 0), math.NewVec3(0, 1, 0), math.ColourBlack)
	sd.AddLine(math.NewVec3(0, 0, 0), math.NewVec3(0, 0, 1), math.ColourBlack)

	require.Len(t, sd.Lines(), 2)
	assert.Equal(t, 4, sd.VertexCount())
	assert.Equal(t, math.ColourWhite, sd.Lines()[0].Colour)

	core.SetLogOutput(io.Discard)
	sd.Clear()
	assert.Empty(t, sd.Lines())
}

func TestAddSphere(t *testing.T) {
	sd := NewSimpleDraw(10000)
	center := math.NewVec3(1, 2, 3)
	sd.AddSphere(16, 16, 0.02, math.ColourDarkGray, center)

	assert.Len(t, sd.Lines(), 16*(2*16-1))
	for _, l := range sd.Lines() {
		assert.InDelta(t, 0.02, l.From.Distance(center), 1e-5)
		assert.InDelta(t, 0.02, l.To.Distance(center), 1e-5)
	}

	// a sphere that does not fit is dropped whole
	small := NewSimpleDraw(10)
	small.AddSphere(16, 16, 1, math.ColourWhite, center)
	assert.Empty(t, small.Lines())
}

func TestAddTransform(t *testing.T) {
	sd := NewSimpleDraw(100)
	sd.AddTransform(math.NewMat4Translation(math.NewVec3(0, 5, 0)))
	require.Len(t, sd.Lines(), 3)
	assert.Equal(t, math.NewVec3(0, 5, 0), sd.Lines()[1].From)
	assert.Equal(t, math.NewVec3(0, 6, 0), sd.Lines()[1].To)
}
