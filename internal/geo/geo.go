// Package geo converts tracker-space poses into screen coordinates and
// angular units.
package geo

import (
	"math"

	"github.com/arcollage/viewer/pkg/core"
)

// ScreenTransform is the affine mapping from tracker world units to screen
// pixels. The sign convention of the scales has varied across camera
// revisions, so both scale and offset are configuration rather than
// constants.
type ScreenTransform struct {
	ScaleX  float64 `mapstructure:"scaleX"`
	OffsetX float64 `mapstructure:"offsetX"`
	ScaleY  float64 `mapstructure:"scaleY"`
	OffsetY float64 `mapstructure:"offsetY"`
}

// DefaultScreenTransform matches the current camera mount:
// screenX = -x*3200+200, screenY = y*1500+250.
func DefaultScreenTransform() ScreenTransform {
	return ScreenTransform{
		ScaleX:  -3200,
		OffsetX: 200,
		ScaleY:  1500,
		OffsetY: 250,
	}
}

// Project maps a world position onto screen pixel coordinates.
func (t ScreenTransform) Project(pos core.Position3D) (screenX, screenY float64) {
	return pos.X*t.ScaleX + t.OffsetX, pos.Y*t.ScaleY + t.OffsetY
}

// RadiansFromDegrees converts a wire rotation (degrees) into the radian
// rotation used everywhere inside the core.
func RadiansFromDegrees(r core.Rotation3D) core.Rotation3D {
	const f = math.Pi / 180
	return core.Rotation3D{X: r.X * f, Y: r.Y * f, Z: r.Z * f}
}
