// Package marker owns the per-marker state the rest of the core reads and
// mutates: current and target pose, visibility, derived audio volume, and
// the attached clip-shape animation. Latency in these calls is critical to
// keep the tick loop cheap; everything is synchronous in-memory mutation.
package marker

import (
	"sort"
	"sync"

	"github.com/arcollage/viewer/internal/shape"
	"github.com/arcollage/viewer/pkg/core"
)

// Marker is one tracked fiducial. Markers are created on first pose receipt
// and never evicted; a marker that drops out of tracking merely stops
// receiving target updates.
type Marker struct {
	ID          int
	CurrentPose core.Pose
	TargetPose  core.Pose
	HasTarget   bool
	Visible     bool
	LastVolume  int
	Animation   *shape.Descriptor
}

// Store holds every marker seen this session, keyed by tracker id.
type Store struct {
	mu      sync.Mutex
	markers map[int]*Marker

	volumeBand int
}

// NewStore creates an empty store. volumeBand is the hysteresis guard band
// for derived volume updates; values below 1 disable the suppression.
func NewStore(volumeBand int) *Store {
	return &Store{
		markers:    make(map[int]*Marker),
		volumeBand: volumeBand,
	}
}

// Upsert returns the marker for id, creating it if absent. Idempotent.
func (s *Store) Upsert(id int) *Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(id)
}

func (s *Store) upsertLocked(id int) *Marker {
	if m, ok := s.markers[id]; ok {
		return m
	}
	m := &Marker{ID: id, LastVolume: -1}
	s.markers[id] = m
	return m
}

// Get returns the marker for id if it exists.
func (s *Store) Get(id int) (*Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	return m, ok
}

// SetTargetPose records a new target pose for id, creating the marker if
// this is its first update, and marks it visible. The returned VolumeChange
// is valid only when changed is true: the derived volume moved outside the
// hysteresis band and should be forwarded to the player collaborator.
func (s *Store) SetTargetPose(id int, pose core.Pose) (vc core.VolumeChange, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.upsertLocked(id)
	m.TargetPose = pose
	m.HasTarget = true
	m.Visible = true

	vol := VolumeFromRotationZ(pose.Rotation.Z)
	if m.LastVolume < 0 || abs(vol-m.LastVolume) >= s.volumeBand {
		m.LastVolume = vol
		return core.VolumeChange{MarkerID: id, Volume: vol}, true
	}
	return core.VolumeChange{}, false
}

// MarkVisible flags id as visible, creating the marker if absent.
func (s *Store) MarkVisible(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(id).Visible = true
}

// MarkInvisible clears the visible flag without evicting the marker.
func (s *Store) MarkInvisible(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.Visible = false
	}
}

// VisibleIDs returns a snapshot of visible marker ids in ascending order.
// The ordering is irrelevant to correctness but must be deterministic so
// the control surface's dial slots are reproducible.
func (s *Store) VisibleIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.markers))
	for id, m := range s.markers {
		if m.Visible {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// SetAnimation attaches a shape animation descriptor to id, creating the
// marker if absent.
func (s *Store) SetAnimation(id int, desc *shape.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(id).Animation = desc
}

// ClearAnimation detaches any animation from id; the clip region becomes
// static.
func (s *Store) ClearAnimation(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.markers[id]; ok {
		m.Animation = nil
	}
}

// Each invokes fn for every marker while holding the store lock. Callers
// must not call back into the store from fn.
func (s *Store) Each(fn func(*Marker)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.markers {
		fn(m)
	}
}

// Len returns the number of markers ever seen.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
