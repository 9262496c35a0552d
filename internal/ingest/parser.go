// Package ingest consumes the tracker's pose update stream: parsing the
// wire contract and feeding snapshots into the core.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arcollage/viewer/internal/geo"
	"github.com/arcollage/viewer/pkg/core"
)

// Parser converts raw tracking_update payloads into pose snapshots.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a parser that reports dropped entries to logger.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse decodes one tracker message. Marker entries with malformed or
// missing fields are dropped with a warning and the rest of the batch is
// kept; the affected marker simply retains its last known target. Only a
// structurally unreadable envelope is an error.
func (p *Parser) Parse(data []byte) ([]core.PoseSnapshot, error) {
	var update core.TrackingUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return nil, fmt.Errorf("unmarshalling tracking update: %w", err)
	}
	if update.Type != core.TypeTrackingUpdate {
		return nil, fmt.Errorf("unexpected message type: %q", update.Type)
	}

	snapshots := make([]core.PoseSnapshot, 0, len(update.Markers))
	for key, entry := range update.Markers {
		id, err := strconv.Atoi(key)
		if err != nil {
			p.logger.Warn("dropping marker with non-integer id", "key", key)
			continue
		}

		var wire core.WirePose
		if err := json.Unmarshal(entry, &wire); err != nil {
			p.logger.Warn("dropping malformed marker entry", "id", id, "error", err)
			continue
		}
		if wire.Position == nil || wire.Rotation == nil {
			p.logger.Warn("dropping marker entry with missing pose fields", "id", id)
			continue
		}

		snapshots = append(snapshots, core.PoseSnapshot{
			MarkerID: id,
			Pose: core.Pose{
				Position: *wire.Position,
				// The tracker reports rotation in degrees.
				Rotation: geo.RadiansFromDegrees(*wire.Rotation),
			},
		})
	}
	return snapshots, nil
}
