// Package control maps continuous dial input and discrete trigger events
// from a physical control surface onto marker selection and per-marker
// parameter state.
package control

import (
	"sort"
	"sync"

	"github.com/arcollage/viewer/pkg/core"
)

// VisibleSource supplies the deterministic, ascending snapshot of marker
// ids currently visible; the marker store satisfies it.
type VisibleSource interface {
	VisibleIDs() []int
}

// Highlighter receives highlight side effects for the renderer collaborator.
type Highlighter interface {
	SetHighlight(id int, kind core.HighlightKind)
}

// Surface is the control-surface state machine. Hover is transient and
// follows the dial; selection is persistent and toggled by the trigger.
// The two are mutually exclusive in display: selection highlight always
// takes precedence over hover highlight.
type Surface struct {
	mu sync.Mutex

	dialValue int
	hoveredID int
	hovered   bool
	selected  map[int]struct{}
	params    map[int]*core.MarkerParams

	visible   VisibleSource
	highlight Highlighter
	channels  ChannelMap
}

// New creates a control surface over the given visibility source and
// highlight sink.
func New(visible VisibleSource, highlight Highlighter, channels ChannelMap) *Surface {
	return &Surface{
		selected:  make(map[int]struct{}),
		params:    make(map[int]*core.MarkerParams),
		visible:   visible,
		highlight: highlight,
		channels:  channels,
	}
}

// OnDial quantizes the dial value into len(visible)+1 slots, slot 0
// meaning "no selection", and moves the hover accordingly.
func (s *Surface) OnDial(value int) {
	value = clamp(value, 0, 127)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.dialValue = value

	ids := s.visible.VisibleIDs()
	total := len(ids) + 1
	slot := int(float64(value) / 127.0 * float64(total))
	if slot > total-1 {
		slot = total - 1
	}

	if len(ids) == 0 || slot == 0 {
		s.clearHoverLocked()
		return
	}

	next := ids[slot-1]
	if s.hovered && s.hoveredID == next {
		return
	}

	// Drop the old hover highlight unless selection owns that marker's
	// highlight.
	if s.hovered {
		if _, sel := s.selected[s.hoveredID]; !sel {
			s.highlight.SetHighlight(s.hoveredID, core.HighlightNone)
		}
	}

	s.hoveredID = next
	s.hovered = true
	if _, sel := s.selected[next]; !sel {
		s.highlight.SetHighlight(next, core.HighlightHover)
	}
}

func (s *Surface) clearHoverLocked() {
	if !s.hovered {
		return
	}
	if _, sel := s.selected[s.hoveredID]; !sel {
		s.highlight.SetHighlight(s.hoveredID, core.HighlightNone)
	}
	s.hovered = false
}

// OnTrigger toggles the hovered marker's membership in the selected set.
// A no-op when nothing is hovered or the trigger is released.
func (s *Surface) OnTrigger(pressed bool) {
	if !pressed {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hovered {
		return
	}
	id := s.hoveredID

	if _, sel := s.selected[id]; sel {
		delete(s.selected, id)
		// Removing selection reveals the hover underneath, if still
		// applicable.
		if s.hovered && s.hoveredID == id {
			s.highlight.SetHighlight(id, core.HighlightHover)
		} else {
			s.highlight.SetHighlight(id, core.HighlightNone)
		}
		return
	}

	s.selected[id] = struct{}{}
	s.highlight.SetHighlight(id, core.HighlightSelected)
	if _, ok := s.params[id]; !ok {
		p := core.DefaultMarkerParams()
		s.params[id] = &p
	}
}

// OnMarkerInvisible performs unconditional cleanup for a marker that left
// tracking: deselect, unhover, drop highlights. Stored parameters are
// intentionally retained so a re-appearing marker resumes its tuning.
func (s *Surface) OnMarkerInvisible(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.selected, id)
	if s.hovered && s.hoveredID == id {
		s.hovered = false
	}
	s.highlight.SetHighlight(id, core.HighlightNone)
}

// OnControlChange routes a continuous controller event through the channel
// map: the selection dial moves the hover, parameter channels mutate the
// stored parameters of every currently selected marker.
func (s *Surface) OnControlChange(cc core.ControlChange) {
	value := clamp(cc.Value, 0, 127)

	if cc.Channel == s.channels.SelectionDial {
		s.OnDial(value)
		return
	}

	apply, ok := s.channels.paramAction(cc.Channel)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.selected {
		p, ok := s.params[id]
		if !ok {
			continue
		}
		apply(p, value)
	}
}

// OnTriggerEvent routes a discrete pad event through the channel map.
func (s *Surface) OnTriggerEvent(te core.TriggerEvent) {
	if te.Note != s.channels.TriggerNote {
		return
	}
	s.OnTrigger(te.On)
}

// DialValue returns the last dial value applied.
func (s *Surface) DialValue() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialValue
}

// HoveredID returns the currently hovered marker id, if any.
func (s *Surface) HoveredID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hoveredID, s.hovered
}

// SelectedIDs returns the selected marker ids in ascending order.
func (s *Surface) SelectedIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// IsSelected reports whether id is in the selected set.
func (s *Surface) IsSelected(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[id]
	return ok
}

// Params returns a copy of the stored parameters for id, if any exist.
func (s *Surface) Params(id int) (core.MarkerParams, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.params[id]
	if !ok {
		return core.MarkerParams{}, false
	}
	return *p, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// norm maps a 0–127 controller value onto [0,1].
func norm(value int) float64 {
	return float64(value) / 127.0
}

// bipolar maps a 0–127 controller value onto [-1,1] with 64 near center.
func bipolar(value int) float64 {
	return norm(value)*2 - 1
}
