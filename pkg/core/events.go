// pkg/core/events.go
package core

import "time"

// Control surface event names as dispatched on the event bus.
const (
	TypeControlChange = "control_change"
	TypeTrigger       = "trigger"
)

// ControlChange is a continuous control-surface value event, e.g. a dial or
// fader movement. Value is clamped to [0,127] by the consumer.
type ControlChange struct {
	Channel int       `json:"channel"`
	Value   int       `json:"value"`
	Time    time.Time `json:"time"`
}

// TriggerEvent is a discrete on/off control-surface event, e.g. a pad press.
type TriggerEvent struct {
	Note     int       `json:"note"`
	On       bool      `json:"on"`
	Velocity int       `json:"velocity"`
	Time     time.Time `json:"time"`
}

// VolumeChange is emitted toward the external player collaborator whenever a
// marker's derived audio volume moves outside the hysteresis band.
type VolumeChange struct {
	MarkerID int `json:"markerId"`
	Volume   int `json:"volume"`
}
