package control

import (
	"math"

	"github.com/arcollage/viewer/pkg/core"
)

// ChannelMap binds control-surface channel and note numbers to semantic
// actions. The defaults match the installation's hardware layout; the map
// is configurable so a different surface only needs new numbers.
type ChannelMap struct {
	SelectionDial int `mapstructure:"selectionDial"`
	Red           int `mapstructure:"red"`
	Green         int `mapstructure:"green"`
	Blue          int `mapstructure:"blue"`
	Alpha         int `mapstructure:"alpha"`
	Scale         int `mapstructure:"scale"`
	ZOffset       int `mapstructure:"zOffset"`
	RotationX     int `mapstructure:"rotationX"`
	RotationY     int `mapstructure:"rotationY"`
	TriggerNote   int `mapstructure:"triggerNote"`
}

// DefaultChannelMap returns the hardware layout the installation ships
// with: the selection dial on cc70, parameter channels on cc71–78, and
// the select trigger on pad note 36.
func DefaultChannelMap() ChannelMap {
	return ChannelMap{
		SelectionDial: 70,
		Red:           71,
		Green:         72,
		Blue:          73,
		Alpha:         74,
		Scale:         75,
		ZOffset:       76,
		RotationX:     77,
		RotationY:     78,
		TriggerNote:   36,
	}
}

// paramAction resolves a channel number to a mutation of a marker's
// parameter set. These handlers are extension points: they apply to every
// currently selected marker but carry no further behavior.
func (c ChannelMap) paramAction(channel int) (func(*core.MarkerParams, int), bool) {
	switch channel {
	case c.Red:
		return func(p *core.MarkerParams, v int) { p.Red = ccByte(v) }, true
	case c.Green:
		return func(p *core.MarkerParams, v int) { p.Green = ccByte(v) }, true
	case c.Blue:
		return func(p *core.MarkerParams, v int) { p.Blue = ccByte(v) }, true
	case c.Alpha:
		return func(p *core.MarkerParams, v int) { p.Alpha = norm(v) }, true
	case c.Scale:
		return func(p *core.MarkerParams, v int) { p.Scale = norm(v) * 2 }, true
	case c.ZOffset:
		return func(p *core.MarkerParams, v int) { p.ZOffset = bipolar(v) * 100 }, true
	case c.RotationX:
		return func(p *core.MarkerParams, v int) { p.RotationX = bipolar(v) * math.Pi }, true
	case c.RotationY:
		return func(p *core.MarkerParams, v int) { p.RotationY = bipolar(v) * math.Pi }, true
	}
	return nil, false
}

// ccByte expands a 7-bit controller value to the full 0–255 byte range.
func ccByte(v int) uint8 {
	return uint8(math.Round(norm(v) * 255))
}
