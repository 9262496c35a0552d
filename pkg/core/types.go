// pkg/core/types.go
package core

// Position3D represents a 3D position in tracker world units.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Rotation3D represents a 3D rotation in radians, one angle per axis.
type Rotation3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose combines position and rotation.
type Pose struct {
	Position Position3D `json:"position"`
	Rotation Rotation3D `json:"rotation"`
}

// Lerp returns p advanced toward target by the fraction alpha, per axis.
func (p Pose) Lerp(target Pose, alpha float64) Pose {
	return Pose{
		Position: Position3D{
			X: p.Position.X + (target.Position.X-p.Position.X)*alpha,
			Y: p.Position.Y + (target.Position.Y-p.Position.Y)*alpha,
			Z: p.Position.Z + (target.Position.Z-p.Position.Z)*alpha,
		},
		Rotation: Rotation3D{
			X: p.Rotation.X + (target.Rotation.X-p.Rotation.X)*alpha,
			Y: p.Rotation.Y + (target.Rotation.Y-p.Rotation.Y)*alpha,
			Z: p.Rotation.Z + (target.Rotation.Z-p.Rotation.Z)*alpha,
		},
	}
}

// HighlightKind is the visual highlight state of a marker overlay.
type HighlightKind uint8

const (
	HighlightNone HighlightKind = iota
	HighlightHover
	HighlightSelected
)

func (h HighlightKind) String() string {
	switch h {
	case HighlightHover:
		return "hover"
	case HighlightSelected:
		return "selected"
	default:
		return "none"
	}
}

// MarkerParams holds the per-marker tuning parameters adjustable from the
// control surface. Values persist for a marker once created.
type MarkerParams struct {
	Scale     float64 `json:"scale"`
	Alpha     float64 `json:"alpha"`
	Red       uint8   `json:"red"`
	Green     uint8   `json:"green"`
	Blue      uint8   `json:"blue"`
	ZOffset   float64 `json:"zOffset"`
	RotationX float64 `json:"rotationX"`
	RotationY float64 `json:"rotationY"`
}

// DefaultMarkerParams returns the parameter set assigned to a marker the
// first time it is selected.
func DefaultMarkerParams() MarkerParams {
	return MarkerParams{
		Scale: 1.0,
		Alpha: 1.0,
		Red:   255,
		Green: 255,
		Blue:  255,
	}
}
