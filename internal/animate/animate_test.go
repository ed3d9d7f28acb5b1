package animate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/tada/internal/reconcile"
)

func TestTrackSampleEndpoints(t *testing.T) {
	assert.Equal(t, Frame{Scale: 0, Opacity: 0}, EnterTrack.Sample(0))
	assert.Equal(t, Frame{Scale: 1, Opacity: 1}, EnterTrack.Sample(1))
	assert.Equal(t, Frame{Scale: 0.5, Opacity: 0}, ExitTrack.Sample(1))
	assert.Equal(t, Rest, Track(nil).Sample(0.5))
}

func TestTrackSampleInterpolates(t *testing.T) {
	f := EnterTrack.Sample(0.375)
	assert.InDelta(t, 0.575, f.Scale, 1e-9)
	assert.InDelta(t, 0.5, f.Opacity, 1e-9)

	f = ExitTrack.Sample(0.33)
	assert.InDelta(t, 1.15, f.Scale, 1e-9)
}

func TestMoveTrackOvershoots(t *testing.T) {
	tr := MoveTrack(2)
	assert.InDelta(t, 2, tr.Sample(0).Offset, 1e-9)
	assert.InDelta(t, -0.3, tr.Sample(0.75).Offset, 1e-9)
	assert.InDelta(t, 0, tr.Sample(1).Offset, 1e-9)
}

func TestEaseOut(t *testing.T) {
	assert.Equal(t, 0.0, EaseOut(0))
	assert.Equal(t, 1.0, EaseOut(1))
	// ease-out runs ahead of linear and stays monotonic
	prev := 0.0
	for i := 1; i < 100; i++ {
		x := float64(i) / 100
		y := EaseOut(x)
		assert.GreaterOrEqual(t, y, x-1e-9)
		assert.GreaterOrEqual(t, y, prev)
		prev = y
	}
	assert.InDelta(t, 0.5, CubicBezier(0, 0, 1, 1)(0.5), 1e-6)
}

func TestPolicyProgress(t *testing.T) {
	p := Policy{Duration: 100 * time.Millisecond, Easing: Linear}
	assert.Equal(t, 0.0, p.Progress(-time.Millisecond))
	assert.InDelta(t, 0.5, p.Progress(50*time.Millisecond), 1e-9)
	assert.Equal(t, 1.0, p.Progress(time.Second))
	assert.Equal(t, 1.0, Policy{}.Progress(0))
}

func TestTimeline(t *testing.T) {
	start := time.Unix(0, 0)
	tr := reconcile.Diff([]int64{1, 2, 3}, []int64{2, 3, 4})
	tl := NewTimeline(tr, Policy{Duration: 600 * time.Millisecond, Easing: Linear}, start)

	// exiting row starts at full size, entering row invisible
	assert.Equal(t, 1.0, tl.Frame(1, start).Opacity)
	assert.Equal(t, 0.0, tl.Frame(4, start).Opacity)
	// row 2 moved up one slot and starts one row below
	assert.InDelta(t, 1, tl.Frame(2, start).Offset, 1e-9)
	// unknown keys are at rest
	assert.Equal(t, Rest, tl.Frame(99, start))

	assert.False(t, tl.Done(start.Add(599*time.Millisecond)))
	end := start.Add(600 * time.Millisecond)
	assert.True(t, tl.Done(end))
	assert.Equal(t, Rest, tl.Frame(2, end))
	assert.Equal(t, 0.0, tl.Frame(1, end).Opacity)
}

func TestTimelineWithNothingToAnimateIsDone(t *testing.T) {
	tr := reconcile.Diff([]int64{1, 2}, []int64{1, 2})
	tl := NewTimeline(tr, DefaultPolicy, time.Now())
	assert.True(t, tl.Done(time.Now()))
}
