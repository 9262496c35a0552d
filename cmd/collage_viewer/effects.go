package main

import (
	"log/slog"

	"github.com/arcollage/viewer/pkg/core"
)

// logEffects is the stand-in renderer/audio collaborator: every outbound
// side effect is logged at debug level. A real overlay surface would
// replace this with draw calls.
type logEffects struct {
	logger *slog.Logger
}

func (e *logEffects) SetPose(id int, screenX, screenY float64, rot core.Rotation3D) {
	e.logger.Debug("set pose", "marker", id, "x", screenX, "y", screenY, "rotZ", rot.Z)
}

func (e *logEffects) ApplyClipPath(id int, region core.ClipRegion) {
	e.logger.Debug("apply clip path", "marker", id, "path", region.String())
}

func (e *logEffects) ApplyVolume(id, volume int) {
	e.logger.Info("apply volume", "marker", id, "volume", volume)
}

func (e *logEffects) SetHighlight(id int, kind core.HighlightKind) {
	e.logger.Info("set highlight", "marker", id, "kind", kind.String())
}
