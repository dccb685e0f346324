package debug

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

// Line is one coloured segment.
type Line struct {
	From   math.Vec3
	To     math.Vec3
	Colour math.Colour
}

/**
 * @brief Collects debug lines for one frame. Shapes are broken into line
 * segments; once MaxVertexCount vertices are queued further shapes are
 * dropped until Clear.
 */
type SimpleDraw struct {
	MaxVertexCount int

	lines   []Line
	dropped int
}

func NewSimpleDraw(maxVertexCount int) *SimpleDraw {
	return &SimpleDraw{
		MaxVertexCount: maxVertexCount,
		lines:          make([]Line, 0, maxVertexCount/2),
	}
}

func (sd *SimpleDraw) AddLine(from, to math.Vec3, colour math.Colour) {
	if (len(sd.lines)+1)*2 > sd.MaxVertexCount {
		sd.dropped++
		return
	}
	sd.lines = append(sd.lines, Line{From: from, To: to, Colour: colour})
}

// AddSphere adds a wire sphere made of rings horizontal circles and slices
// vertical half circles around center.
func (sd *SimpleDraw) AddSphere(slices, rings int, radius float32, colour math.Colour, center math.Vec3) {
	if slices < 3 || rings < 2 {
		return
	}
	needed := 2 * (slices*(rings-1) + slices*rings)
	if len(sd.lines)*2+needed > sd.MaxVertexCount {
		sd.dropped++
		return
	}

	point := func(ring, slice int) math.Vec3 {
		phi := math.K_PI * float32(ring) / float32(rings)
		theta := math.K_PI_2 * float32(slice) / float32(slices)
		return center.Add(math.NewVec3(
			radius*math32.Sin(phi)*math32.Cos(theta),
			radius*math32.Cos(phi),
			radius*math32.Sin(phi)*math32.Sin(theta),
		))
	}

	for ring := 1; ring < rings; ring++ {
		for slice := 0; slice < slices; slice++ {
			sd.AddLine(point(ring, slice), point(ring, (slice+1)%slices), colour)
		}
	}
	for slice := 0; slice < slices; slice++ {
		for ring := 0; ring < rings; ring++ {
			sd.AddLine(point(ring, slice), point(ring+1, slice), colour)
		}
	}
}

// AddTransform draws the axes of m, x red, y green and z blue.
func (sd *SimpleDraw) AddTransform(m math.Mat4) {
	origin := m.GetTranslation()
	right := math.NewVec3(m.Data[0], m.Data[1], m.Data[2])
	up := math.NewVec3(m.Data[4], m.Data[5], m.Data[6])
	forward := math.NewVec3(m.Data[8], m.Data[9], m.Data[10])
	sd.AddLine(origin, origin.Add(right), math.Colour{R: 1, A: 1})
	sd.AddLine(origin, origin.Add(up), math.Colour{G: 1, A: 1})
	sd.AddLine(origin, origin.Add(forward), math.Colour{B: 1, A: 1})
}

// Lines returns the queued lines. The slice is reused after Clear.
func (sd *SimpleDraw) Lines() []Line {
	return sd.lines
}

func (sd *SimpleDraw) VertexCount() int {
	return len(sd.lines) * 2
}

// Clear empties the queue for the next frame.
func (sd *SimpleDraw) Clear() {
	if sd.dropped > 0 {
		core.LogWarn("debug draw dropped %d shapes, raise the vertex capacity of %d", sd.dropped, sd.MaxVertexCount)
		sd.dropped = 0
	}
	sd.lines = sd.lines[:0]
}
