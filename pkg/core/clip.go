// pkg/core/clip.go
package core

import (
	"fmt"
	"strings"
)

// ClipKind discriminates the two clip region geometries.
type ClipKind uint8

const (
	ClipCircle ClipKind = iota
	ClipPolygon
)

// Vertex is a single polygon vertex in percentage units of the overlay box.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ClipRegion is a 2D masking shape restricting which pixels of an overlay
// are visible. It is either a circle (radius and center in percent) or a
// polygon of 3 or more vertices.
type ClipRegion struct {
	Kind     ClipKind `json:"kind"`
	Radius   float64  `json:"radius,omitempty"`
	CenterX  float64  `json:"centerX,omitempty"`
	CenterY  float64  `json:"centerY,omitempty"`
	Vertices []Vertex `json:"vertices,omitempty"`
}

// Circle builds a circular clip region.
func Circle(radius, centerX, centerY float64) ClipRegion {
	return ClipRegion{Kind: ClipCircle, Radius: radius, CenterX: centerX, CenterY: centerY}
}

// Polygon builds a polygonal clip region from the given vertices.
func Polygon(vertices ...Vertex) ClipRegion {
	return ClipRegion{Kind: ClipPolygon, Vertices: vertices}
}

// UnitCircle is the fallback clip region covering the overlay center.
func UnitCircle() ClipRegion {
	return Circle(50, 50, 50)
}

// IsPolygon reports whether the region is a polygon with at least one vertex.
func (c ClipRegion) IsPolygon() bool {
	return c.Kind == ClipPolygon && len(c.Vertices) > 0
}

// String renders the region as a CSS clip-path value, e.g.
// "circle(50% at 50% 50%)" or "polygon(0% 0%, 100% 0%, 50% 100%)".
func (c ClipRegion) String() string {
	if c.Kind == ClipCircle {
		return fmt.Sprintf("circle(%s%% at %s%% %s%%)",
			formatPct(c.Radius), formatPct(c.CenterX), formatPct(c.CenterY))
	}
	var b strings.Builder
	b.WriteString("polygon(")
	for i, v := range c.Vertices {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatPct(v.X))
		b.WriteString("% ")
		b.WriteString(formatPct(v.Y))
		b.WriteByte('%')
	}
	b.WriteByte(')')
	return b.String()
}

// formatPct trims trailing zeros so whole percentages render as "50" and
// fractional ones as "50.25".
func formatPct(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
