// Package animate turns a reconcile.Transition into per-item frames over a
// fixed duration. Every transition uses the same policy; nothing here
// depends on the data being animated.
package animate

import (
	"math"
	"time"

	"github.com/Makepad-fr/tada/internal/reconcile"
)

// DefaultDuration is the length of every list transition.
const DefaultDuration = 600 * time.Millisecond

// Frame is the visual state of one row at one instant. Offset is in rows,
// relative to the row's resting position; positive is below.
type Frame struct {
	Scale   float64
	Opacity float64
	Offset  float64
}

// Rest is the frame of a row that is not animating.
var Rest = Frame{Scale: 1, Opacity: 1}

// Keyframe pins a frame at a point (0..1) of the animation.
type Keyframe struct {
	At float64
	Frame
}

// Track is a list of keyframes sorted by At, starting at 0 and ending at 1.
type Track []Keyframe

// Sample linearly interpolates the track at p in [0, 1].
func (tr Track) Sample(p float64) Frame {
	if len(tr) == 0 {
		return Rest
	}
	if p <= tr[0].At {
		return tr[0].Frame
	}
	if last := tr[len(tr)-1]; p >= last.At {
		return last.Frame
	}
	for i := 1; i < len(tr); i++ {
		a, b := tr[i-1], tr[i]
		if p > b.At {
			continue
		}
		span := b.At - a.At
		if span <= 0 {
			return b.Frame
		}
		f := (p - a.At) / span
		return Frame{
			Scale:   lerp(a.Scale, b.Scale, f),
			Opacity: lerp(a.Opacity, b.Opacity, f),
			Offset:  lerp(a.Offset, b.Offset, f),
		}
	}
	return tr[len(tr)-1].Frame
}

func lerp(a, b, f float64) float64 { return a + (b-a)*f }

// EnterTrack pops a row in: it grows past full size, then settles.
var EnterTrack = Track{
	{At: 0, Frame: Frame{Scale: 0, Opacity: 0}},
	{At: 0.75, Frame: Frame{Scale: 1.15, Opacity: 1}},
	{At: 1, Frame: Frame{Scale: 1, Opacity: 1}},
}

// ExitTrack swells a row briefly, then shrinks and fades it out.
var ExitTrack = Track{
	{At: 0, Frame: Frame{Scale: 1, Opacity: 1}},
	{At: 0.33, Frame: Frame{Scale: 1.15, Opacity: 1}},
	{At: 0.5, Frame: Frame{Scale: 0.75, Opacity: 0.1}},
	{At: 1, Frame: Frame{Scale: 0.5, Opacity: 0}},
}

// overshoot is how far past its destination a moving row travels.
const overshoot = 0.15

// MoveTrack slides a row from delta rows away to rest, overshooting slightly.
// delta is reconcile.Change.Delta: old index minus new index.
func MoveTrack(delta int) Track {
	// a row that moved up (positive delta) starts below its new slot
	d := float64(delta)
	return Track{
		{At: 0, Frame: Frame{Scale: 1, Opacity: 1, Offset: d}},
		{At: 0.75, Frame: Frame{Scale: 1, Opacity: 1, Offset: -d * overshoot}},
		{At: 1, Frame: Rest},
	}
}

// Policy is the uniform timing of every transition.
type Policy struct {
	Duration time.Duration
	Easing   Easing
}

// DefaultPolicy is 600ms, ease-out.
var DefaultPolicy = Policy{Duration: DefaultDuration, Easing: EaseOut}

// Progress maps elapsed time to eased progress in [0, 1].
func (p Policy) Progress(elapsed time.Duration) float64 {
	if p.Duration <= 0 || elapsed >= p.Duration {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	t := float64(elapsed) / float64(p.Duration)
	if p.Easing == nil {
		return t
	}
	return p.Easing(t)
}

// TrackFor returns the track a change animates along.
func TrackFor[K comparable](c reconcile.Change[K]) Track {
	switch c.Action {
	case reconcile.Enter:
		return EnterTrack
	case reconcile.Exit:
		return ExitTrack
	default:
		if c.Moved() {
			return MoveTrack(c.Delta())
		}
		return nil
	}
}

// Timeline plays one transition from a start time.
type Timeline[K comparable] struct {
	policy     Policy
	start      time.Time
	transition reconcile.Transition[K]
	tracks     map[K]Track
}

// NewTimeline prepares tr to be played from start.
func NewTimeline[K comparable](tr reconcile.Transition[K], policy Policy, start time.Time) *Timeline[K] {
	tl := &Timeline[K]{
		policy:     policy,
		start:      start,
		transition: tr,
		tracks:     make(map[K]Track),
	}
	for _, group := range [][]reconcile.Change[K]{tr.Entering, tr.Exiting, tr.Remaining} {
		for _, c := range group {
			if track := TrackFor(c); track != nil {
				tl.tracks[c.Key] = track
			}
		}
	}
	return tl
}

// Transition returns the diff being played.
func (tl *Timeline[K]) Transition() reconcile.Transition[K] { return tl.transition }

// Frame returns key's frame at now. Keys the transition does not animate
// are at rest.
func (tl *Timeline[K]) Frame(key K, now time.Time) Frame {
	track, ok := tl.tracks[key]
	if !ok {
		return Rest
	}
	return track.Sample(tl.policy.Progress(now.Sub(tl.start)))
}

// Done reports whether the transition has finished at now.
func (tl *Timeline[K]) Done(now time.Time) bool {
	return len(tl.tracks) == 0 || now.Sub(tl.start) >= tl.policy.Duration
}

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseOut matches CSS ease-out, cubic-bezier(0, 0, 0.58, 1).
var EaseOut = CubicBezier(0, 0, 0.58, 1)

// CubicBezier builds a CSS-style timing function with control points
// (x1, y1) and (x2, y2); the end points are fixed at (0, 0) and (1, 1).
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(s float64) float64 { return ((ax*s+bx)*s + cx) * s }
	sampleY := func(s float64) float64 { return ((ay*s+by)*s + cy) * s }
	slopeX := func(s float64) float64 { return (3*ax*s+2*bx)*s + cx }

	solve := func(x float64) float64 {
		// Newton first, bisection if the slope flattens out
		s := x
		for i := 0; i < 8; i++ {
			d := sampleX(s) - x
			if math.Abs(d) < 1e-7 {
				return s
			}
			slope := slopeX(s)
			if math.Abs(slope) < 1e-6 {
				break
			}
			s -= d / slope
		}
		lo, hi := 0.0, 1.0
		s = x
		for i := 0; i < 50 && hi-lo > 1e-7; i++ {
			if sampleX(s) < x {
				lo = s
			} else {
				hi = s
			}
			s = (lo + hi) / 2
		}
		return s
	}

	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return sampleY(solve(t))
	}
}
