// Package shape computes procedural clip-region animations. A Descriptor
// plus a phase value in [0,1) deterministically yields a clip path; all
// mutation is confined to the per-descriptor frame cache.
package shape

import (
	"math"
	"time"

	"github.com/arcollage/viewer/pkg/core"
)

// Kind selects one of the four animation families.
type Kind string

const (
	KindMorph   Kind = "morph"
	KindBreathe Kind = "breathe"
	KindStar    Kind = "star"
	KindWave    Kind = "wave"
)

// Parameter defaults, applied when the descriptor leaves a field zero.
const (
	DefaultBreatheAmplitude = 0.3
	DefaultStarPoints       = 5
	DefaultStarInnerRatio   = 0.4
	DefaultWaveAmplitude    = 10.0
	DefaultWaveFrequency    = 3.0

	// WaveResolution is the number of horizontal sine samples per wave.
	WaveResolution = 16

	// MorphFrameCount is the number of evenly spaced phase samples
	// precomputed per morph animation. Indexing into 60 discrete frames
	// trades per-frame blend cost for 60 visible steps per loop; it is a
	// quality/performance tradeoff, not a correctness requirement.
	MorphFrameCount = 60
)

// Descriptor describes one looping clip-region animation attached to a
// marker. Duration must be positive; Start anchors phase zero.
type Descriptor struct {
	Kind     Kind
	Duration time.Duration
	Start    time.Time

	// Keyframes are the morph keyframe shapes, all required to be
	// polygons. Circles are not valid morph keyframes.
	Keyframes []core.ClipRegion

	// Base is the breathe base shape; only circles breathe.
	Base core.ClipRegion

	// Amplitude is the breathe radius swing (fraction) or the wave
	// amplitude (percent), depending on Kind.
	Amplitude float64

	// Points and InnerRatio shape the star kind.
	Points     int
	InnerRatio float64

	// Frequency is the wave cycle count across the overlay width.
	Frequency float64

	// Derived cache state.
	frames       []core.ClipRegion
	lastPath     core.ClipRegion
	lastComputed time.Time
	hasLast      bool
}

// Phase returns the normalized loop progress in [0,1) at the given time.
// The modulo guarantees a seamless loop: the phase at Start+Duration equals
// the phase at Start.
func (d *Descriptor) Phase(now time.Time) float64 {
	if d.Duration <= 0 {
		return 0
	}
	elapsed := now.Sub(d.Start) % d.Duration
	if elapsed < 0 {
		elapsed += d.Duration
	}
	return float64(elapsed) / float64(d.Duration)
}

// ComputePath converts the descriptor and a phase value into a clip region.
// Unrecognized kinds and morphs without usable keyframes fall back to the
// first keyframe, or the unit circle if there is none.
func (d *Descriptor) ComputePath(phase float64) core.ClipRegion {
	switch d.Kind {
	case KindMorph:
		return d.morphPath(phase)
	case KindBreathe:
		return d.breathePath(phase)
	case KindStar:
		return starPath(phase, d.Points, d.InnerRatio)
	case KindWave:
		return wavePath(phase, d.Amplitude, d.Frequency)
	}
	return d.fallback()
}

// PathAt computes the clip path for the given wall-clock time and records
// it in the descriptor cache.
func (d *Descriptor) PathAt(now time.Time) core.ClipRegion {
	path := d.ComputePath(d.Phase(now))
	d.lastPath = path
	d.lastComputed = now
	d.hasLast = true
	return path
}

// ShouldRecompute reports whether enough time has passed since the last
// computed path for this descriptor. The throttle is per-descriptor state,
// bounding CPU cost when many animated markers are live.
func (d *Descriptor) ShouldRecompute(now time.Time, minInterval time.Duration) bool {
	if !d.hasLast {
		return true
	}
	return now.Sub(d.lastComputed) >= minInterval
}

// LastPath returns the most recently computed path, if any.
func (d *Descriptor) LastPath() (core.ClipRegion, bool) {
	return d.lastPath, d.hasLast
}

func (d *Descriptor) fallback() core.ClipRegion {
	if len(d.Keyframes) > 0 {
		return d.Keyframes[0]
	}
	return core.UnitCircle()
}

// morphPath blends between adjacent keyframes, indexing into the
// precomputed frame cache once it exists.
func (d *Descriptor) morphPath(phase float64) core.ClipRegion {
	if len(d.Keyframes) < 2 {
		return d.fallback()
	}
	if d.frames == nil {
		d.precomputeFrames()
	}
	idx := int(phase * float64(len(d.frames)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(d.frames) {
		idx = len(d.frames) - 1
	}
	return d.frames[idx]
}

// precomputeFrames samples the keyframe sequence at evenly spaced phases.
// Runs once per animation start.
func (d *Descriptor) precomputeFrames() {
	frames := make([]core.ClipRegion, MorphFrameCount)
	for i := range frames {
		phase := float64(i) / float64(MorphFrameCount-1)
		frames[i] = d.morphAtPhase(phase)
	}
	d.frames = frames
}

// morphAtPhase does the exact fractional-index blend between keyframes.
func (d *Descriptor) morphAtPhase(phase float64) core.ClipRegion {
	n := len(d.Keyframes)
	f := phase * float64(n-1)
	idx := int(math.Floor(f))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	next := idx + 1
	if next > n-1 {
		next = n - 1
	}
	return Blend(d.Keyframes[idx], d.Keyframes[next], f-float64(idx))
}

// breathePath scales a circle's radius by a sine of the phase. Non-circle
// base shapes pass through unchanged; breathing is deliberately restricted
// to circles.
func (d *Descriptor) breathePath(phase float64) core.ClipRegion {
	base := d.Base
	if base.Kind != core.ClipCircle {
		return base
	}
	amp := d.Amplitude
	if amp == 0 {
		amp = DefaultBreatheAmplitude
	}
	radius := base.Radius * (1 + math.Sin(phase*2*math.Pi)*amp)
	return core.Circle(radius, base.CenterX, base.CenterY)
}

// starPath builds a 2*pts vertex star alternating outer and inner radius,
// rotated by a full revolution per loop.
func starPath(phase float64, pts int, inner float64) core.ClipRegion {
	if pts <= 0 {
		pts = DefaultStarPoints
	}
	if inner <= 0 {
		inner = DefaultStarInnerRatio
	}
	rotation := phase * 2 * math.Pi
	outerR := 50.0
	innerR := 50.0 * inner

	vertices := make([]core.Vertex, 0, 2*pts)
	for i := 0; i < 2*pts; i++ {
		angle := float64(i)*(math.Pi/float64(pts)) + rotation
		r := outerR
		if i%2 != 0 {
			r = innerR
		}
		vertices = append(vertices, core.Vertex{
			X: 50 + r*math.Cos(angle),
			Y: 50 + r*math.Sin(angle),
		})
	}
	return core.Polygon(vertices...)
}

// wavePath samples one sine wave across the overlay width and closes the
// polygon below it with the two bottom corners.
func wavePath(phase, amp, freq float64) core.ClipRegion {
	if amp <= 0 {
		amp = DefaultWaveAmplitude
	}
	if freq <= 0 {
		freq = DefaultWaveFrequency
	}
	vertices := make([]core.Vertex, 0, WaveResolution+3)
	for i := 0; i <= WaveResolution; i++ {
		t := float64(i) / float64(WaveResolution)
		vertices = append(vertices, core.Vertex{
			X: t * 100,
			Y: 50 + amp*math.Sin(t*freq*2*math.Pi+phase*2*math.Pi),
		})
	}
	vertices = append(vertices,
		core.Vertex{X: 100, Y: 100},
		core.Vertex{X: 0, Y: 100},
	)
	return core.Polygon(vertices...)
}
