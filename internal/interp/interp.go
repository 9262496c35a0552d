// Package interp advances marker poses toward their targets.
package interp

import (
	"math"
	"time"

	"github.com/arcollage/viewer/internal/marker"
)

// DefaultAlpha is the fixed per-call interpolation fraction.
const DefaultAlpha = 0.15

// Config selects between the two smoothing behaviors.
//
// The default is a fixed-fraction blend applied once per Advance call:
// convergence speed depends on call frequency, not on elapsed wall-clock
// time. That frame-rate dependence is the historical behavior of the
// installation and is preserved deliberately. Setting TimeCorrected
// switches to alpha = 1-exp(-dt/Tau), which converges at the same rate
// regardless of tick rate; the two are never substituted silently.
type Config struct {
	Alpha         float64
	TimeCorrected bool
	Tau           time.Duration
}

// Engine applies one exponential smoothing step per Advance to every
// marker that has a target pose.
type Engine struct {
	store *marker.Store
	cfg   Config

	lastAdvance time.Time
}

// New creates an interpolation engine over the given store. Zero config
// values fall back to DefaultAlpha and a 100ms Tau.
func New(store *marker.Store, cfg Config) *Engine {
	if cfg.Alpha <= 0 || cfg.Alpha > 1 {
		cfg.Alpha = DefaultAlpha
	}
	if cfg.Tau <= 0 {
		cfg.Tau = 100 * time.Millisecond
	}
	return &Engine{store: store, cfg: cfg}
}

// Advance moves every targeted marker's current pose toward its target by
// the configured fraction, independently per axis for both position and
// rotation. Markers without a target are left untouched. Per-marker
// updates are independent, so iteration order affects nothing observable.
func (e *Engine) Advance(now time.Time) {
	alpha := e.cfg.Alpha
	if e.cfg.TimeCorrected {
		alpha = e.timeCorrectedAlpha(now)
	}
	e.lastAdvance = now

	e.store.Each(func(m *marker.Marker) {
		if !m.HasTarget {
			return
		}
		m.CurrentPose = m.CurrentPose.Lerp(m.TargetPose, alpha)
	})
}

func (e *Engine) timeCorrectedAlpha(now time.Time) float64 {
	if e.lastAdvance.IsZero() {
		return e.cfg.Alpha
	}
	dt := now.Sub(e.lastAdvance)
	if dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-float64(dt)/float64(e.cfg.Tau))
}
