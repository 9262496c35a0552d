// Package engine drives the per-tick update cycle: pending pose snapshots
// are drained and applied, interpolation advances, and animated clip regions
// are recomputed, with all outward side effects funneled through the Effects
// interface so the renderer integration stays swappable.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/arcollage/viewer/internal/control"
	"github.com/arcollage/viewer/internal/dispatcher"
	"github.com/arcollage/viewer/internal/geo"
	"github.com/arcollage/viewer/internal/interp"
	"github.com/arcollage/viewer/internal/marker"
	"github.com/arcollage/viewer/internal/queue"
	"github.com/arcollage/viewer/pkg/core"
)

// Effects is the outbound side-effect surface. The renderer (and audio
// player) implement it; the engine and control surface only ever talk to
// collaborators through it.
type Effects interface {
	SetPose(id int, screenX, screenY float64, rot core.Rotation3D)
	ApplyClipPath(id int, region core.ClipRegion)
	ApplyVolume(id int, volume int)
	SetHighlight(id int, kind core.HighlightKind)
}

var _ control.Highlighter = (Effects)(nil)

// Dependencies carries everything the engine needs. All collaborators are
// passed in explicitly; the engine holds no package-level state.
type Dependencies struct {
	Store     *marker.Store
	Interp    *interp.Engine
	Surface   *control.Surface
	Transform geo.ScreenTransform
	Effects   Effects
	Logger    *slog.Logger

	// Throttle is the minimum interval between clip-path recomputes for a
	// single marker. Zero disables throttling.
	Throttle time.Duration
}

type Engine struct {
	deps    Dependencies
	pending *queue.Queue[[]core.PoseSnapshot]

	statsMu sync.Mutex
	stats   Stats
}

// Stats is a point-in-time snapshot of engine health, read by the status
// monitor.
type Stats struct {
	Ticks            uint64        `json:"ticks"`
	LastTickDuration time.Duration `json:"lastTickDurationNs"`
	PendingBatches   int           `json:"pendingBatches"`
	Markers          int           `json:"markers"`
	VisibleMarkers   int           `json:"visibleMarkers"`
}

func New(deps Dependencies) *Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{
		deps:    deps,
		pending: queue.New[[]core.PoseSnapshot](),
	}
}

// Enqueue hands a batch of parsed pose snapshots to the engine. Safe to call
// from the ingest goroutine; the batch is applied on the next Tick.
func (e *Engine) Enqueue(snapshots []core.PoseSnapshot) {
	if len(snapshots) == 0 {
		return
	}
	e.pending.Push(snapshots)
}

// HandleTrackingUpdate is the dispatcher handler for ingest events. The
// payload is the snapshot batch produced by the parser.
func (e *Engine) HandleTrackingUpdate(ev dispatcher.Event) error {
	snapshots, ok := ev.Payload.([]core.PoseSnapshot)
	if !ok {
		e.deps.Logger.Warn("unexpected payload on tracking event", "event", ev.Name)
		return nil
	}
	e.Enqueue(snapshots)
	return nil
}

// Tick runs one update cycle. Every batch enqueued before the call is
// applied before interpolation advances, so a pose received between ticks is
// never smoothed against a stale target.
func (e *Engine) Tick(now time.Time) {
	started := time.Now()
	defer e.recordTick(started)

	for _, batch := range e.pending.Drain() {
		e.applyBatch(batch)
	}

	e.deps.Interp.Advance(now)

	e.deps.Store.Each(func(m *marker.Marker) {
		if !m.Visible {
			return
		}
		x, y := e.deps.Transform.Project(m.CurrentPose.Position)
		e.deps.Effects.SetPose(m.ID, x, y, m.CurrentPose.Rotation)

		if m.Animation == nil {
			return
		}
		if !m.Animation.ShouldRecompute(now, e.deps.Throttle) {
			return
		}
		e.deps.Effects.ApplyClipPath(m.ID, m.Animation.PathAt(now))
	})
}

func (e *Engine) applyBatch(batch []core.PoseSnapshot) {
	for _, snap := range batch {
		vc, changed := e.deps.Store.SetTargetPose(snap.MarkerID, snap.Pose)
		if changed {
			e.deps.Effects.ApplyVolume(vc.MarkerID, vc.Volume)
		}
	}
}

func (e *Engine) recordTick(started time.Time) {
	visible := len(e.deps.Store.VisibleIDs())

	e.statsMu.Lock()
	e.stats.Ticks++
	e.stats.LastTickDuration = time.Since(started)
	e.stats.PendingBatches = e.pending.Len()
	e.stats.Markers = e.deps.Store.Len()
	e.stats.VisibleMarkers = visible
	e.statsMu.Unlock()
}

// Stats returns the latest engine health snapshot. Safe to call from any
// goroutine.
func (e *Engine) Stats() Stats {
	e.statsMu.Lock()
	defer e.statsMu.Unlock()
	return e.stats
}

// MarkInvisible runs the visibility-loss cleanup for a marker: the store
// flags it invisible and the control surface drops its selection and hover
// state. Tuning parameters stay behind so a reappearing marker resumes them.
func (e *Engine) MarkInvisible(id int) {
	e.deps.Store.MarkInvisible(id)
	e.deps.Surface.OnMarkerInvisible(id)
}
