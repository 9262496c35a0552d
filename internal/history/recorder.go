package history

import (
	"math"
	"sync"
	"time"

	"github.com/arcollage/viewer/pkg/core"
)

// Suppression thresholds. A pose is only recorded when the summed |delta|
// across the three axes exceeds PositionThreshold tracker units or
// RotationThresholdDeg degrees since the last recorded sample for that
// marker.
const (
	DefaultPositionThreshold    = 0.015
	DefaultRotationThresholdDeg = 2.0
)

// Recorder filters near-identical pose samples before they reach the
// backend, keeping trail sizes proportional to actual motion.
type Recorder struct {
	backend      Backend
	posThreshold float64
	rotThreshold float64 // radians

	mu   sync.Mutex
	last map[int]core.Pose
}

// NewRecorder wraps a backend with change suppression. Thresholds at or
// below zero fall back to the defaults; rotationDeg is in degrees.
func NewRecorder(backend Backend, position, rotationDeg float64) *Recorder {
	if position <= 0 {
		position = DefaultPositionThreshold
	}
	if rotationDeg <= 0 {
		rotationDeg = DefaultRotationThresholdDeg
	}
	return &Recorder{
		backend:      backend,
		posThreshold: position,
		rotThreshold: rotationDeg * math.Pi / 180,
		last:         make(map[int]core.Pose),
	}
}

// ObservePose records the pose if it differs enough from the last recorded
// pose for this marker. The first observation of a marker always records.
func (r *Recorder) ObservePose(markerID int, pose core.Pose, at time.Time) error {
	r.mu.Lock()
	prev, seen := r.last[markerID]
	if seen && !r.moved(prev, pose) {
		r.mu.Unlock()
		return nil
	}
	r.last[markerID] = pose
	r.mu.Unlock()

	return r.backend.RecordPose(PoseSample{
		MarkerID: markerID,
		Time:     at,
		Position: pose.Position,
		Rotation: pose.Rotation,
	})
}

// ObserveControl passes control events straight through; they are discrete
// and never flood.
func (r *Recorder) ObserveControl(event ControlEvent) error {
	return r.backend.RecordControl(event)
}

func (r *Recorder) moved(prev, next core.Pose) bool {
	posChange := math.Abs(next.Position.X-prev.Position.X) +
		math.Abs(next.Position.Y-prev.Position.Y) +
		math.Abs(next.Position.Z-prev.Position.Z)
	if posChange > r.posThreshold {
		return true
	}
	rotChange := math.Abs(next.Rotation.X-prev.Rotation.X) +
		math.Abs(next.Rotation.Y-prev.Rotation.Y) +
		math.Abs(next.Rotation.Z-prev.Rotation.Z)
	return rotChange > r.rotThreshold
}
