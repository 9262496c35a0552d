// pkg/core/streaming.go
package core

import "encoding/json"

// Message type constants of the tracker streaming protocol.
const (
	TypeTrackingUpdate = "tracking_update"
)

// WirePose is the pose of a single marker as the tracker sends it.
// Rotation angles are in degrees on the wire. Position and Rotation are
// pointers so an entry that omits them is distinguishable from one at the
// origin.
type WirePose struct {
	ID       int         `json:"id"`
	Position *Position3D `json:"position"`
	Rotation *Rotation3D `json:"rotation"`
}

// TrackingUpdate is one tick of tracking data: a mapping from
// string-encoded marker id to its wire pose. Marker entries stay raw so a
// malformed entry can be dropped without poisoning the batch.
type TrackingUpdate struct {
	Type           string                     `json:"type"`
	Markers        map[string]json.RawMessage `json:"markers"`
	Timestamp      float64                    `json:"timestamp"`
	ProcessingTime float64                    `json:"processing_time"`
}

// PoseSnapshot is a parsed, unit-converted pose update for one marker.
// Rotation is in radians.
type PoseSnapshot struct {
	MarkerID int
	Pose     Pose
}
