package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcollage/viewer/pkg/core"
)

func TestBlend_EndpointsEqualLength(t *testing.T) {
	from := core.Polygon(
		core.Vertex{X: 0, Y: 0},
		core.Vertex{X: 100, Y: 0},
		core.Vertex{X: 50, Y: 100},
	)
	to := core.Polygon(
		core.Vertex{X: 10, Y: 10},
		core.Vertex{X: 90, Y: 10},
		core.Vertex{X: 50, Y: 90},
	)

	assert.Equal(t, from.Vertices, Blend(from, to, 0).Vertices)
	assert.Equal(t, to.Vertices, Blend(from, to, 1).Vertices)
}

func TestBlend_OutputVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		fromLen  int
		toLen    int
		expected int
	}{
		{"equal", 3, 3, 3},
		{"from longer", 6, 3, 6},
		{"to longer", 3, 8, 8},
		{"single vertex", 1, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := polygonOfLength(tt.fromLen)
			to := polygonOfLength(tt.toLen)
			out := Blend(from, to, 0.5)
			require.True(t, out.IsPolygon())
			assert.Len(t, out.Vertices, tt.expected)
		})
	}
}

func TestBlend_ModuloWraparound(t *testing.T) {
	from := core.Polygon(
		core.Vertex{X: 0, Y: 0},
		core.Vertex{X: 100, Y: 0},
	)
	to := polygonOfLength(5)

	out := Blend(from, to, 0)
	require.Len(t, out.Vertices, 5)
	// Indices 2..4 wrap back onto from's two vertices.
	assert.Equal(t, from.Vertices[0], out.Vertices[2])
	assert.Equal(t, from.Vertices[1], out.Vertices[3])
	assert.Equal(t, from.Vertices[0], out.Vertices[4])
}

func TestBlend_Midpoint(t *testing.T) {
	from := core.Polygon(core.Vertex{X: 0, Y: 0}, core.Vertex{X: 0, Y: 100}, core.Vertex{X: 100, Y: 100})
	to := core.Polygon(core.Vertex{X: 100, Y: 100}, core.Vertex{X: 100, Y: 0}, core.Vertex{X: 0, Y: 0})

	out := Blend(from, to, 0.5)
	assert.Equal(t, core.Vertex{X: 50, Y: 50}, out.Vertices[0])
	assert.Equal(t, core.Vertex{X: 50, Y: 50}, out.Vertices[1])
	assert.Equal(t, core.Vertex{X: 50, Y: 50}, out.Vertices[2])
}

func TestBlend_KindMismatchSnaps(t *testing.T) {
	circle := core.Circle(50, 50, 50)
	poly := polygonOfLength(3)

	assert.Equal(t, circle, Blend(circle, poly, 0.25))
	assert.Equal(t, poly, Blend(circle, poly, 0.75))
	assert.Equal(t, poly, Blend(poly, circle, 0.25))
	assert.Equal(t, circle, Blend(poly, circle, 0.75))
}

func TestBlend_BothEmptyDegradesToFrom(t *testing.T) {
	from := core.ClipRegion{Kind: core.ClipPolygon}
	to := core.ClipRegion{Kind: core.ClipPolygon}
	assert.Equal(t, from, Blend(from, to, 0.9))
}

func polygonOfLength(n int) core.ClipRegion {
	vertices := make([]core.Vertex, n)
	for i := range vertices {
		vertices[i] = core.Vertex{X: float64(i * 10), Y: float64(i * 5)}
	}
	return core.Polygon(vertices...)
}
