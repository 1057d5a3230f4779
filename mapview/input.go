package mapview

import (
	"fmt"
	"math"
	"time"

	"gioui.org/f32"
)

type InputKind int

const (
	Press InputKind = iota
	Move
	Release
	Cancel
	DoubleClick
	Scroll
)

func (k InputKind) String() string {
	switch k {
	case Press:
		return "Press"
	case Move:
		return "Move"
	case Release:
		return "Release"
	case Cancel:
		return "Cancel"
	case DoubleClick:
		return "DoubleClick"
	case Scroll:
		return "Scroll"
	}
	return fmt.Sprintf("InputKind(%d)", int(k))
}

// InputEvent is a pointer event in viewport pixels. Scroll < 0 zooms in.
// Time is only compared between events, its origin does not matter.
type InputEvent struct {
	Kind     InputKind
	Position f32.Point
	Scroll   float32
	Time     time.Duration
}

type GestureState int

const (
	Idle GestureState = iota
	PointerDown
	Panning
)

func (s GestureState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case PointerDown:
		return "PointerDown"
	case Panning:
		return "Panning"
	}
	return fmt.Sprintf("GestureState(%d)", int(s))
}

const (
	DefaultClickSlop           = 5
	DefaultDoubleClickInterval = 300 * time.Millisecond
)

// gestureTarget receives the operations recognised by InputController.
type gestureTarget interface {
	Pan(dx, dy float64)
	PanFinished()
	SelectAt(px, py float64)
	ZoomAt(px, py float64, delta int)
	ZoomIn()
}

// InputController turns raw pointer events into pan, select and zoom
// operations.
type InputController struct {
	ClickSlop           float32
	DoubleClickInterval time.Duration

	state  GestureState
	origin f32.Point
	last   f32.Point

	lastClick    f32.Point
	lastClickAt  time.Duration
	hasLastClick bool
	// set when a click pair already zoomed in, so the host's own
	// DoubleClick event for the same pair is dropped
	pairZoomed bool
}

func NewInputController() *InputController {
	return &InputController{
		ClickSlop:           DefaultClickSlop,
		DoubleClickInterval: DefaultDoubleClickInterval,
	}
}

func (c *InputController) State() GestureState {
	return c.state
}

func (c *InputController) Handle(t gestureTarget, ev InputEvent) {
	switch ev.Kind {
	case Press:
		if c.state == Idle {
			c.pairZoomed = false
			c.state = PointerDown
			c.origin = ev.Position
			c.last = ev.Position
		}

	case Move:
		switch c.state {
		case PointerDown:
			if distance(c.origin, ev.Position) > c.ClickSlop {
				c.state = Panning
				c.pan(t, ev.Position)
			}
		case Panning:
			c.pan(t, ev.Position)
		}

	case Release:
		switch c.state {
		case PointerDown:
			c.state = Idle
			if distance(c.origin, ev.Position) > c.ClickSlop {
				// dragged without intermediate moves
				c.pan(t, ev.Position)
				c.hasLastClick = false
				t.PanFinished()
				return
			}
			c.click(t, ev)
		case Panning:
			c.state = Idle
			c.pan(t, ev.Position)
			c.hasLastClick = false
			t.PanFinished()
		}

	case Cancel:
		if c.state == Panning {
			t.PanFinished()
		}
		c.state = Idle

	case DoubleClick:
		if c.state != Idle {
			return
		}
		c.hasLastClick = false
		if c.pairZoomed {
			c.pairZoomed = false
			return
		}
		t.ZoomIn()

	case Scroll:
		switch {
		case ev.Scroll < 0:
			t.ZoomAt(float64(ev.Position.X), float64(ev.Position.Y), 1)
		case ev.Scroll > 0:
			t.ZoomAt(float64(ev.Position.X), float64(ev.Position.Y), -1)
		}
	}
}

func (c *InputController) pan(t gestureTarget, p f32.Point) {
	d := p.Sub(c.last)
	c.last = p
	if d.X != 0 || d.Y != 0 {
		t.Pan(float64(d.X), float64(d.Y))
	}
}

// click selects a point. When it completes a double click the map also
// zooms in.
func (c *InputController) click(t gestureTarget, ev InputEvent) {
	double := c.isDoubleClick(ev)
	t.SelectAt(float64(ev.Position.X), float64(ev.Position.Y))
	if double {
		c.hasLastClick = false
		c.pairZoomed = true
		t.ZoomIn()
		return
	}
	c.lastClick = ev.Position
	c.lastClickAt = ev.Time
	c.hasLastClick = true
}

func (c *InputController) isDoubleClick(ev InputEvent) bool {
	if !c.hasLastClick || c.DoubleClickInterval <= 0 || ev.Time == 0 || c.lastClickAt == 0 {
		return false
	}
	dt := ev.Time - c.lastClickAt
	return dt >= 0 && dt <= c.DoubleClickInterval && distance(c.lastClick, ev.Position) <= c.ClickSlop
}

func distance(a, b f32.Point) float32 {
	d := b.Sub(a)
	return float32(math.Hypot(float64(d.X), float64(d.Y)))
}
