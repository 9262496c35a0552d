package history

import (
	"fmt"

	"github.com/arcollage/viewer/internal/config"
)

// noopBackend discards everything. Used when history is disabled.
type noopBackend struct{}

func (noopBackend) Init() error                      { return nil }
func (noopBackend) Close() error                     { return nil }
func (noopBackend) StartSession(*Session) error      { return nil }
func (noopBackend) EndSession() error                { return nil }
func (noopBackend) RecordPose(PoseSample) error      { return nil }
func (noopBackend) RecordControl(ControlEvent) error { return nil }

// NewBackend creates a history backend based on configuration.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryBackend(cfg.Memory), nil
	case "sqlite":
		return NewSqliteBackend(cfg.Sqlite), nil
	case "none":
		return noopBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
