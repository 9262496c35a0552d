// Package monitor periodically snapshots engine health to a status file so
// an operator can watch a running viewer without attaching a debugger.
package monitor

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/arcollage/viewer/internal/engine"
)

// StatsSource provides the health snapshot written on each interval.
type StatsSource interface {
	Stats() engine.Stats
}

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Source    StatsSource
	Logger    *slog.Logger
	StatusDir string
	Interval  time.Duration
}

// Service writes a status.json file on a fixed interval while running.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// StatusFilePath returns where the snapshot is written.
func (s *Service) StatusFilePath() string {
	return filepath.Join(s.deps.StatusDir, "status.json")
}

// WriteStatus writes one snapshot immediately.
func (s *Service) WriteStatus() error {
	stats := s.deps.Source.Stats()
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.StatusFilePath(), data, 0644)
}

// Start launches the status goroutine. Calling Start on a running service
// is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
		s.mu.Unlock()
		return err
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					s.deps.Logger.Error("error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
