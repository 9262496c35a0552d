// Package history records viewing sessions: marker pose trails and control
// surface activity, persisted through a pluggable storage backend.
package history

import (
	"time"

	"github.com/arcollage/viewer/pkg/core"
)

// Session identifies one run of the viewer.
type Session struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// PoseSample is one recorded marker pose.
type PoseSample struct {
	ID        uint            `json:"-" gorm:"primarykey"`
	SessionID uint            `json:"-" gorm:"index"`
	MarkerID  int             `json:"markerId" gorm:"index"`
	Time      time.Time       `json:"time"`
	Position  core.Position3D `json:"position" gorm:"embedded;embeddedPrefix:pos_"`
	Rotation  core.Rotation3D `json:"rotation" gorm:"embedded;embeddedPrefix:rot_"`
}

// ControlEvent is one recorded control surface action.
type ControlEvent struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	SessionID uint      `json:"-" gorm:"index"`
	Time      time.Time `json:"time"`
	Kind      string    `json:"kind"`
	Channel   int       `json:"channel"`
	Value     int       `json:"value"`
}

// Control event kinds.
const (
	ControlKindDial    = "dial"
	ControlKindParam   = "param"
	ControlKindTrigger = "trigger"
)

// Backend is the interface all history storage implementations satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(s *Session) error
	EndSession() error

	// Recording
	RecordPose(sample PoseSample) error
	RecordControl(event ControlEvent) error
}

// Exportable is an optional interface for backends that write a session
// file on EndSession.
type Exportable interface {
	ExportedFilePath() string
}
