package history

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcollage/viewer/pkg/core"
)

type captureBackend struct {
	noopBackend
	poses    []PoseSample
	controls []ControlEvent
}

func (c *captureBackend) RecordPose(s PoseSample) error {
	c.poses = append(c.poses, s)
	return nil
}

func (c *captureBackend) RecordControl(e ControlEvent) error {
	c.controls = append(c.controls, e)
	return nil
}

func poseAt(x, y, z float64) core.Pose {
	return core.Pose{Position: core.Position3D{X: x, Y: y, Z: z}}
}

func TestRecorder_FirstObservationAlwaysRecords(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)

	require.NoError(t, r.ObservePose(1, poseAt(0, 0, 0), time.Now()))
	assert.Len(t, b.poses, 1)
}

func TestRecorder_SuppressesSmallMoves(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)
	now := time.Now()

	require.NoError(t, r.ObservePose(1, poseAt(0, 0, 0), now))
	require.NoError(t, r.ObservePose(1, poseAt(0.01, 0.005, 0), now))
	assert.Len(t, b.poses, 1, "sub-threshold jitter is not recorded")

	require.NoError(t, r.ObservePose(1, poseAt(0.02, 0, 0), now))
	assert.Len(t, b.poses, 2, "crossing the position threshold records")
}

func TestRecorder_SuppressionIsAgainstLastRecorded(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)
	now := time.Now()

	require.NoError(t, r.ObservePose(1, poseAt(0, 0, 0), now))
	// Each step is below threshold relative to the last RECORDED pose
	// until the accumulated drift crosses it.
	require.NoError(t, r.ObservePose(1, poseAt(0.008, 0, 0), now))
	require.NoError(t, r.ObservePose(1, poseAt(0.014, 0, 0), now))
	assert.Len(t, b.poses, 1)

	require.NoError(t, r.ObservePose(1, poseAt(0.016, 0, 0), now))
	assert.Len(t, b.poses, 2)
}

func TestRecorder_SumsDeltasAcrossAxes(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)
	now := time.Now()

	require.NoError(t, r.ObservePose(1, poseAt(0, 0, 0), now))
	// No single axis crosses the threshold, but the summed motion does.
	require.NoError(t, r.ObservePose(1, poseAt(0.006, 0.006, 0.006), now))
	assert.Len(t, b.poses, 2, "distributed motion counts toward the threshold")

	require.NoError(t, r.ObservePose(2, poseAt(0, 0, 0), now))
	// A sum exactly at the threshold stays suppressed.
	require.NoError(t, r.ObservePose(2, poseAt(0.005, 0.005, 0.005), now))
	assert.Len(t, b.poses, 3)
}

func TestRecorder_RotationThreshold(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)
	now := time.Now()

	require.NoError(t, r.ObservePose(1, core.Pose{}, now))

	oneDeg := math.Pi / 180
	require.NoError(t, r.ObservePose(1, core.Pose{
		Rotation: core.Rotation3D{Z: oneDeg},
	}, now))
	assert.Len(t, b.poses, 1, "one degree is inside the guard band")

	require.NoError(t, r.ObservePose(1, core.Pose{
		Rotation: core.Rotation3D{Z: 3 * oneDeg},
	}, now))
	assert.Len(t, b.poses, 2)
}

func TestRecorder_PerMarkerTracking(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)
	now := time.Now()

	require.NoError(t, r.ObservePose(1, poseAt(0, 0, 0), now))
	require.NoError(t, r.ObservePose(2, poseAt(0, 0, 0), now))
	assert.Len(t, b.poses, 2, "each marker's first pose records")
}

func TestRecorder_DefaultThresholds(t *testing.T) {
	r := NewRecorder(&captureBackend{}, 0, -1)
	assert.Equal(t, DefaultPositionThreshold, r.posThreshold)
	assert.InDelta(t, DefaultRotationThresholdDeg*math.Pi/180, r.rotThreshold, 1e-12)
}

func TestRecorder_ControlEventsPassThrough(t *testing.T) {
	b := &captureBackend{}
	r := NewRecorder(b, 0.015, 2.0)

	require.NoError(t, r.ObserveControl(ControlEvent{Kind: ControlKindDial, Channel: 70, Value: 64}))
	require.NoError(t, r.ObserveControl(ControlEvent{Kind: ControlKindDial, Channel: 70, Value: 64}))
	assert.Len(t, b.controls, 2)
}
