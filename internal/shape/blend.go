package shape

import "github.com/arcollage/viewer/pkg/core"

// Blend linearly interpolates two polygon clip regions at t in [0,1].
//
// When vertex counts differ, the shorter polygon's vertices are reused
// cyclically (index modulo its own length) rather than padding with zeros,
// giving a many-to-one vertex correspondence. This produces geometrically
// ambiguous results when winding orders or correspondences differ between
// the operands; downstream keyframe content is authored against exactly
// this behavior, so it is preserved as a known limitation.
//
// Shape-kind mismatches are not interpolated: if either operand is not a
// polygon, the result snaps to from for t < 0.5 and to otherwise. If both
// operands are empty the unmodified from is returned, keeping the render
// loop alive at the cost of visual correctness.
func Blend(from, to core.ClipRegion, t float64) core.ClipRegion {
	if !from.IsPolygon() || !to.IsPolygon() {
		if !from.IsPolygon() && !to.IsPolygon() {
			return from
		}
		if t < 0.5 {
			return from
		}
		return to
	}

	maxN := len(from.Vertices)
	if len(to.Vertices) > maxN {
		maxN = len(to.Vertices)
	}

	vertices := make([]core.Vertex, maxN)
	for i := 0; i < maxN; i++ {
		a := from.Vertices[i%len(from.Vertices)]
		b := to.Vertices[i%len(to.Vertices)]
		vertices[i] = core.Vertex{
			X: a.X + (b.X-a.X)*t,
			Y: a.Y + (b.Y-a.Y)*t,
		}
	}
	return core.Polygon(vertices...)
}
