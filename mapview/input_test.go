package mapview

import (
	"testing"
	"time"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
)

type recordingTarget struct {
	panX, panY  float64
	pans        int
	panFinished int
	selects     []f32.Point
	zoomAt      []int
	zoomIns     int
}

func (r *recordingTarget) Pan(dx, dy float64) {
	r.panX += dx
	r.panY += dy
	r.pans++
}

func (r *recordingTarget) PanFinished() { r.panFinished++ }

func (r *recordingTarget) SelectAt(px, py float64) {
	r.selects = append(r.selects, f32.Pt(float32(px), float32(py)))
}

func (r *recordingTarget) ZoomAt(px, py float64, delta int) { r.zoomAt = append(r.zoomAt, delta) }

func (r *recordingTarget) ZoomIn() { r.zoomIns++ }

func ev(kind InputKind, x, y float32, at time.Duration) InputEvent {
	return InputEvent{Kind: kind, Position: f32.Pt(x, y), Time: at}
}

func TestClickSelectsPoint(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 100, 100, time.Second))
	assert.Equal(t, PointerDown, c.State())
	c.Handle(tgt, ev(Move, 103, 102, time.Second+10*time.Millisecond))
	assert.Equal(t, PointerDown, c.State(), "small moves stay below the click slop")
	c.Handle(tgt, ev(Release, 103, 102, time.Second+20*time.Millisecond))

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, []f32.Point{{X: 103, Y: 102}}, tgt.selects)
	assert.Zero(t, tgt.pans)
	assert.Zero(t, tgt.panX)
	assert.Zero(t, tgt.panY)
}

func TestDragPans(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 100, 100, time.Second))
	c.Handle(tgt, ev(Move, 110, 100, time.Second))
	assert.Equal(t, Panning, c.State())
	c.Handle(tgt, ev(Move, 130, 90, time.Second))
	c.Handle(tgt, ev(Move, 140, 80, time.Second))
	c.Handle(tgt, ev(Release, 140, 80, time.Second))

	assert.Equal(t, Idle, c.State())
	assert.Empty(t, tgt.selects)
	assert.InDelta(t, 40, tgt.panX, 1e-6)
	assert.InDelta(t, -20, tgt.panY, 1e-6)
	assert.Equal(t, 1, tgt.panFinished)
}

func TestReleaseFarAwayWithoutMovesPans(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 0, 0, time.Second))
	c.Handle(tgt, ev(Release, 6, 0, time.Second))

	assert.Empty(t, tgt.selects)
	assert.InDelta(t, 6, tgt.panX, 1e-6)
	assert.Equal(t, 1, tgt.panFinished)
}

func TestClickSlopBoundary(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	// exactly 5px is still a click
	c.Handle(tgt, ev(Press, 0, 0, time.Second))
	c.Handle(tgt, ev(Move, 3, 4, time.Second))
	c.Handle(tgt, ev(Release, 3, 4, time.Second))
	assert.Len(t, tgt.selects, 1)
	assert.Zero(t, tgt.pans)
}

func TestDoubleClickZoomsIn(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 50, 50, time.Second))
	c.Handle(tgt, ev(Release, 50, 50, time.Second+50*time.Millisecond))
	c.Handle(tgt, ev(Press, 51, 50, time.Second+150*time.Millisecond))
	c.Handle(tgt, ev(Release, 51, 50, time.Second+200*time.Millisecond))

	assert.Len(t, tgt.selects, 2, "every click selects a point")
	assert.Equal(t, 1, tgt.zoomIns)

	// a third click starts a new sequence
	c.Handle(tgt, ev(Press, 51, 50, time.Second+300*time.Millisecond))
	c.Handle(tgt, ev(Release, 51, 50, time.Second+350*time.Millisecond))
	assert.Len(t, tgt.selects, 3)
	assert.Equal(t, 1, tgt.zoomIns)
}

func TestHostDoubleClickAfterTimedPairZoomsOnce(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 50, 50, time.Second))
	c.Handle(tgt, ev(Release, 50, 50, time.Second+50*time.Millisecond))
	c.Handle(tgt, ev(Press, 50, 50, time.Second+150*time.Millisecond))
	c.Handle(tgt, ev(Release, 50, 50, time.Second+200*time.Millisecond))
	c.Handle(tgt, ev(DoubleClick, 50, 50, time.Second+200*time.Millisecond))

	assert.Len(t, tgt.selects, 2)
	assert.Equal(t, 1, tgt.zoomIns)

	// the next pair zooms again
	c.Handle(tgt, ev(Press, 50, 50, 3*time.Second))
	c.Handle(tgt, ev(Release, 50, 50, 3*time.Second))
	c.Handle(tgt, ev(Press, 50, 50, 3*time.Second+100*time.Millisecond))
	c.Handle(tgt, ev(Release, 50, 50, 3*time.Second+100*time.Millisecond))
	c.Handle(tgt, ev(DoubleClick, 50, 50, 3*time.Second+100*time.Millisecond))
	assert.Len(t, tgt.selects, 4)
	assert.Equal(t, 2, tgt.zoomIns)
}

func TestHostDoubleClickWithoutTimestamps(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 50, 50, 0))
	c.Handle(tgt, ev(Release, 50, 50, 0))
	c.Handle(tgt, ev(Press, 50, 50, 0))
	c.Handle(tgt, ev(Release, 50, 50, 0))
	c.Handle(tgt, ev(DoubleClick, 50, 50, 0))

	assert.Len(t, tgt.selects, 2)
	assert.Equal(t, 1, tgt.zoomIns)
}

func TestSlowClicksAreSeparate(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 50, 50, time.Second))
	c.Handle(tgt, ev(Release, 50, 50, time.Second))
	c.Handle(tgt, ev(Press, 50, 50, 2*time.Second))
	c.Handle(tgt, ev(Release, 50, 50, 2*time.Second))

	assert.Len(t, tgt.selects, 2)
	assert.Zero(t, tgt.zoomIns)
}

func TestExplicitDoubleClick(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(DoubleClick, 10, 10, 0))
	assert.Equal(t, 1, tgt.zoomIns)

	c.Handle(tgt, ev(Press, 10, 10, 0))
	c.Handle(tgt, ev(DoubleClick, 10, 10, 0))
	assert.Equal(t, 1, tgt.zoomIns, "ignored while the pointer is down")
}

func TestScrollZoomsInAnyState(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, InputEvent{Kind: Scroll, Position: f32.Pt(10, 10), Scroll: -1})
	c.Handle(tgt, InputEvent{Kind: Scroll, Position: f32.Pt(10, 10), Scroll: 2})
	c.Handle(tgt, InputEvent{Kind: Scroll, Position: f32.Pt(10, 10), Scroll: 0})

	c.Handle(tgt, ev(Press, 0, 0, 0))
	c.Handle(tgt, ev(Move, 20, 0, 0))
	c.Handle(tgt, InputEvent{Kind: Scroll, Position: f32.Pt(20, 0), Scroll: -1})
	assert.Equal(t, Panning, c.State())

	assert.Equal(t, []int{1, -1, 1}, tgt.zoomAt)
}

func TestCancelEndsGesture(t *testing.T) {
	c := NewInputController()
	tgt := &recordingTarget{}

	c.Handle(tgt, ev(Press, 0, 0, 0))
	c.Handle(tgt, ev(Cancel, 0, 0, 0))
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, tgt.selects)

	c.Handle(tgt, ev(Press, 0, 0, 0))
	c.Handle(tgt, ev(Move, 30, 0, 0))
	c.Handle(tgt, ev(Cancel, 30, 0, 0))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, 1, tgt.panFinished)

	// moves and releases while idle do nothing
	c.Handle(tgt, ev(Move, 90, 0, 0))
	c.Handle(tgt, ev(Release, 90, 0, 0))
	assert.Empty(t, tgt.selects)
	assert.InDelta(t, 30, tgt.panX, 1e-6)
}
