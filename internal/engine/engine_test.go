package engine

import (
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcollage/viewer/internal/control"
	"github.com/arcollage/viewer/internal/dispatcher"
	"github.com/arcollage/viewer/internal/geo"
	"github.com/arcollage/viewer/internal/interp"
	"github.com/arcollage/viewer/internal/marker"
	"github.com/arcollage/viewer/internal/shape"
	"github.com/arcollage/viewer/pkg/core"
)

type poseCall struct {
	id   int
	x, y float64
	rot  core.Rotation3D
}

type clipCall struct {
	id     int
	region core.ClipRegion
}

type volumeCall struct {
	id     int
	volume int
}

type highlightCall struct {
	id   int
	kind core.HighlightKind
}

type fakeEffects struct {
	poses      []poseCall
	clips      []clipCall
	volumes    []volumeCall
	highlights []highlightCall
}

func (f *fakeEffects) SetPose(id int, x, y float64, rot core.Rotation3D) {
	f.poses = append(f.poses, poseCall{id, x, y, rot})
}

func (f *fakeEffects) ApplyClipPath(id int, region core.ClipRegion) {
	f.clips = append(f.clips, clipCall{id, region})
}

func (f *fakeEffects) ApplyVolume(id, volume int) {
	f.volumes = append(f.volumes, volumeCall{id, volume})
}

func (f *fakeEffects) SetHighlight(id int, kind core.HighlightKind) {
	f.highlights = append(f.highlights, highlightCall{id, kind})
}

type rig struct {
	engine  *Engine
	store   *marker.Store
	surface *control.Surface
	fx      *fakeEffects
}

func newRig(throttle time.Duration) *rig {
	fx := &fakeEffects{}
	store := marker.NewStore(marker.DefaultVolumeBand)
	surface := control.New(store, fx, control.DefaultChannelMap())
	eng := New(Dependencies{
		Store:     store,
		Interp:    interp.New(store, interp.Config{Alpha: interp.DefaultAlpha}),
		Surface:   surface,
		Transform: geo.DefaultScreenTransform(),
		Effects:   fx,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Throttle:  throttle,
	})
	return &rig{engine: eng, store: store, surface: surface, fx: fx}
}

func snapshot(id int, x, y, z float64) core.PoseSnapshot {
	return core.PoseSnapshot{
		MarkerID: id,
		Pose: core.Pose{
			Position: core.Position3D{X: x, Y: y, Z: z},
		},
	}
}

func TestTick_AppliesQueuedBatchesBeforeAdvancing(t *testing.T) {
	r := newRig(0)
	r.engine.Enqueue([]core.PoseSnapshot{snapshot(1, 1, 0, 0)})

	r.engine.Tick(time.Now())

	m, ok := r.store.Get(1)
	require.True(t, ok)
	assert.Equal(t, 1.0, m.TargetPose.Position.X)
	// One interpolation step ran against the fresh target, not a stale one.
	assert.InDelta(t, 0.15, m.CurrentPose.Position.X, 1e-9)
}

func TestTick_EmitsProjectedPose(t *testing.T) {
	r := newRig(0)
	r.engine.Enqueue([]core.PoseSnapshot{snapshot(4, 0.1, 0.2, 0.5)})

	r.engine.Tick(time.Now())

	require.Len(t, r.fx.poses, 1)
	call := r.fx.poses[0]
	assert.Equal(t, 4, call.id)
	// Current pose after a single 0.15 step from origin.
	assert.InDelta(t, 0.1*0.15*-3200+200, call.x, 1e-9)
	assert.InDelta(t, 0.2*0.15*1500+250, call.y, 1e-9)
}

func TestTick_VolumeEmittedWithHysteresis(t *testing.T) {
	r := newRig(0)

	// Flat rotation maps to volume 50; the first update always applies.
	r.engine.Enqueue([]core.PoseSnapshot{snapshot(1, 0, 0, 0)})
	r.engine.Tick(time.Now())
	require.Len(t, r.fx.volumes, 1)
	assert.Equal(t, volumeCall{1, 50}, r.fx.volumes[0])

	// A nudge inside the guard band is suppressed.
	r.engine.Enqueue([]core.PoseSnapshot{{MarkerID: 1, Pose: core.Pose{
		Rotation: core.Rotation3D{Z: 0.01},
	}}})
	r.engine.Tick(time.Now())
	assert.Len(t, r.fx.volumes, 1)

	// A quarter turn clears the band and re-applies.
	r.engine.Enqueue([]core.PoseSnapshot{{MarkerID: 1, Pose: core.Pose{
		Rotation: core.Rotation3D{Z: math.Pi / 2},
	}}})
	r.engine.Tick(time.Now())
	require.Len(t, r.fx.volumes, 2)
	assert.Equal(t, volumeCall{1, 75}, r.fx.volumes[1])
}

func TestTick_ClipPathThrottledPerMarker(t *testing.T) {
	r := newRig(25 * time.Millisecond)
	base := time.Now()

	r.engine.Enqueue([]core.PoseSnapshot{snapshot(1, 0, 0, 0)})
	r.engine.Tick(base)
	r.store.SetAnimation(1, &shape.Descriptor{
		Kind:     shape.KindBreathe,
		Base:     core.UnitCircle(),
		Duration: time.Second,
		Start:    base,
	})

	r.engine.Tick(base.Add(10 * time.Millisecond))
	require.Len(t, r.fx.clips, 1, "first animated tick computes a path")

	r.engine.Tick(base.Add(20 * time.Millisecond))
	assert.Len(t, r.fx.clips, 1, "inside the throttle window nothing recomputes")

	r.engine.Tick(base.Add(40 * time.Millisecond))
	assert.Len(t, r.fx.clips, 2, "past the throttle window the path refreshes")
	assert.Equal(t, 1, r.fx.clips[1].id)
}

func TestTick_StaticMarkersEmitNoClipPath(t *testing.T) {
	r := newRig(0)
	r.engine.Enqueue([]core.PoseSnapshot{snapshot(1, 0, 0, 0)})

	r.engine.Tick(time.Now())

	assert.Empty(t, r.fx.clips)
	assert.Len(t, r.fx.poses, 1)
}

func TestTick_InvisibleMarkersSkipped(t *testing.T) {
	r := newRig(0)
	r.engine.Enqueue([]core.PoseSnapshot{snapshot(1, 0, 0, 0), snapshot(2, 0, 0, 0)})
	r.engine.Tick(time.Now())

	r.engine.MarkInvisible(2)
	r.fx.poses = nil
	r.engine.Tick(time.Now())

	require.Len(t, r.fx.poses, 1)
	assert.Equal(t, 1, r.fx.poses[0].id)
}

func TestMarkInvisible_ClearsSelectionKeepsParams(t *testing.T) {
	r := newRig(0)
	r.engine.Enqueue([]core.PoseSnapshot{snapshot(1, 0, 0, 0)})
	r.engine.Tick(time.Now())

	r.surface.OnDial(127)
	r.surface.OnTrigger(true)
	require.True(t, r.surface.IsSelected(1))

	r.engine.MarkInvisible(1)

	assert.False(t, r.surface.IsSelected(1))
	_, hovered := r.surface.HoveredID()
	assert.False(t, hovered)
	_, ok := r.surface.Params(1)
	assert.True(t, ok, "tuning parameters survive visibility loss")

	m, found := r.store.Get(1)
	require.True(t, found)
	assert.False(t, m.Visible)
}

func TestHandleTrackingUpdate(t *testing.T) {
	r := newRig(0)

	err := r.engine.HandleTrackingUpdate(dispatcher.Event{
		Name:    core.TypeTrackingUpdate,
		Payload: []core.PoseSnapshot{snapshot(9, 1, 1, 1)},
	})
	require.NoError(t, err)
	r.engine.Tick(time.Now())
	_, ok := r.store.Get(9)
	assert.True(t, ok)

	// A payload of the wrong shape is dropped, not fatal.
	err = r.engine.HandleTrackingUpdate(dispatcher.Event{Name: core.TypeTrackingUpdate, Payload: 42})
	assert.NoError(t, err)
}
