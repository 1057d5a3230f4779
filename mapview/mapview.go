package mapview

import (
	"image"
	"math"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/olablt/gio-routemap/route"
	maps "github.com/olablt/gio-routemap/tiles"
	log "github.com/sirupsen/logrus"
)

// Tiles is the tile store and loader seen by the map.
type Tiles interface {
	TileSource
	EvictZoomLevel(zoom int) int
	Reset()
}

// MapView is an interactive slippy map with a route overlay and point
// selection. Its methods must be called from the UI goroutine.
type MapView struct {
	tiles    Tiles
	renderer *Renderer
	input    *InputController

	vp       Viewport
	route    *route.Route
	selected []maps.LatLng
	onSelect func(maps.LatLng)

	frame *image.RGBA
}

func New(tiles Tiles, center maps.LatLng, zoom int) *MapView {
	return &MapView{
		tiles:    tiles,
		renderer: NewRenderer(),
		input:    NewInputController(),
		vp: Viewport{
			Center: center,
			Zoom:   maps.ClampZoom(zoom),
		},
	}
}

func (mv *MapView) Renderer() *Renderer {
	return mv.renderer
}

func (mv *MapView) Input() *InputController {
	return mv.input
}

// Viewport returns a copy of the current viewport state.
func (mv *MapView) Viewport() Viewport {
	return mv.vp
}

// SetMapCenter recenters the map on ll and drops any pan offset.
func (mv *MapView) SetMapCenter(ll maps.LatLng) {
	mv.vp.Center = ll
	mv.vp.PanX, mv.vp.PanY = 0, 0
	mv.requestTiles()
}

func (mv *MapView) MapCenter() maps.LatLng {
	return mv.vp.Center
}

// SetZoomLevel changes the zoom, clamped to [1,18], keeping the visible
// center in place.
func (mv *MapView) SetZoomLevel(zoom int) {
	center := mv.vp.VisibleCenter()
	if !mv.setZoom(zoom) {
		return
	}
	mv.vp.Center = center
	mv.vp.PanX, mv.vp.PanY = 0, 0
	mv.requestTiles()
}

func (mv *MapView) ZoomLevel() int {
	return mv.vp.Zoom
}

func (mv *MapView) ZoomIn() {
	mv.ZoomAt(float64(mv.vp.Width)/2, float64(mv.vp.Height)/2, 1)
}

func (mv *MapView) ZoomOut() {
	mv.ZoomAt(float64(mv.vp.Width)/2, float64(mv.vp.Height)/2, -1)
}

// ZoomAt changes the zoom by delta levels keeping the location under
// pixel (px, py) fixed on screen.
func (mv *MapView) ZoomAt(px, py float64, delta int) {
	anchor := mv.vp.ScreenToLocation(px, py)
	if !mv.setZoom(mv.vp.Zoom + delta) {
		return
	}
	mv.vp.Center = mv.vp.anchoredCenter(anchor, px, py, mv.vp.Zoom)
	mv.vp.PanX, mv.vp.PanY = 0, 0
	mv.requestTiles()
}

// setZoom applies a new zoom level. Tiles of the old level are evicted and
// fetches still running for it are abandoned.
func (mv *MapView) setZoom(zoom int) bool {
	zoom = maps.ClampZoom(zoom)
	if zoom == mv.vp.Zoom {
		return false
	}
	old := mv.vp.Zoom
	mv.vp.Zoom = zoom
	mv.tiles.Reset()
	evicted := mv.tiles.EvictZoomLevel(old)
	log.WithFields(log.Fields{"from": old, "to": zoom, "evicted": evicted}).Debug("zoom changed")
	return true
}

// Pan moves the map by (dx, dy) pixels.
func (mv *MapView) Pan(dx, dy float64) {
	mv.vp.PanX += dx
	mv.vp.PanY += dy
}

// PanFinished loads the tiles of the region uncovered by a drag.
func (mv *MapView) PanFinished() {
	mv.requestTiles()
}

// SelectAt records the location under pixel (px, py) as a selected point.
func (mv *MapView) SelectAt(px, py float64) {
	ll := mv.vp.ScreenToLocation(px, py)
	mv.selected = append(mv.selected, ll)
	if mv.onSelect != nil {
		mv.onSelect(ll)
	}
}

func (mv *MapView) SetRoute(r *route.Route) {
	mv.route = r
}

func (mv *MapView) ClearRoute() {
	mv.route = nil
}

func (mv *MapView) Route() *route.Route {
	return mv.route
}

// SelectedPoints returns the clicked locations in click order.
func (mv *MapView) SelectedPoints() []maps.LatLng {
	return append([]maps.LatLng(nil), mv.selected...)
}

func (mv *MapView) ClearSelectedPoints() {
	mv.selected = nil
}

// SetPointSelectionListener registers the callback invoked once per
// confirmed click. A nil callback removes it.
func (mv *MapView) SetPointSelectionListener(cb func(maps.LatLng)) {
	mv.onSelect = cb
}

// FitRoute centers the map on the current route at the highest zoom that
// shows all of it, leaving margin pixels on each side.
func (mv *MapView) FitRoute(margin int) {
	if mv.route.Empty() {
		return
	}
	if mv.route.Len() == 1 || mv.vp.Width <= 0 || mv.vp.Height <= 0 {
		mv.SetMapCenter(mv.route.Waypoints[0])
		return
	}

	b := mv.route.Bound()
	nw := maps.LatLng{Lat: b.Max.Lat(), Lng: b.Min.Lon()}
	se := maps.LatLng{Lat: b.Min.Lat(), Lng: b.Max.Lon()}
	availW := float64(max(mv.vp.Width-2*margin, 1))
	availH := float64(max(mv.vp.Height-2*margin, 1))

	zoom := maps.MinZoom
	for z := maps.MaxZoom; z >= maps.MinZoom; z-- {
		x0, y0 := maps.CalculateWorldCoordinates(nw, z)
		x1, y1 := maps.CalculateWorldCoordinates(se, z)
		if math.Abs(x1-x0) <= availW && math.Abs(y1-y0) <= availH {
			zoom = z
			break
		}
	}

	x0, y0 := maps.LatLngToTileXY(nw, zoom)
	x1, y1 := maps.LatLngToTileXY(se, zoom)
	center := maps.TileXYToLatLng((x0+x1)/2, (y0+y1)/2, zoom)

	mv.setZoom(zoom)
	mv.SetMapCenter(center)
}

// SetSize updates the viewport dimensions in pixels.
func (mv *MapView) SetSize(width, height int) {
	if width == mv.vp.Width && height == mv.vp.Height {
		return
	}
	mv.vp.Width, mv.vp.Height = width, height
	mv.requestTiles()
}

// HandleEvent feeds a pointer event to the gesture state machine.
func (mv *MapView) HandleEvent(ev InputEvent) {
	mv.input.Handle(mv, ev)
}

// Render draws the current frame into dst.
func (mv *MapView) Render(dst *image.RGBA) {
	mv.renderer.Render(dst, mv.vp, mv.tiles, mv.route, mv.selected)
}

// Frame renders into a buffer owned by the view and returns it. The buffer
// is overwritten by the next call.
func (mv *MapView) Frame() *image.RGBA {
	r := image.Rect(0, 0, mv.vp.Width, mv.vp.Height)
	if mv.frame == nil || mv.frame.Bounds() != r {
		mv.frame = image.NewRGBA(r)
	}
	mv.Render(mv.frame)
	return mv.frame
}

func (mv *MapView) requestTiles() {
	for _, gt := range mv.vp.TileGrid(mv.renderer.Buffer) {
		mv.tiles.Request(gt.Key, gt.Priority)
	}
}

func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	tag := mv

	// process events
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}
		if x, ok := ev.(pointer.Event); ok {
			if in, ok := translatePointer(x); ok {
				mv.HandleEvent(in)
			}
		}
	}

	size := gtx.Constraints.Max
	mv.SetSize(size.X, size.Y)

	// Confine the area of interest to a gtx Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)

	// gio may still read the previous frame, so draw into a fresh image
	frame := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	mv.Render(frame)
	paint.NewImageOp(frame).Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)

	return layout.Dimensions{Size: size}
}

func translatePointer(x pointer.Event) (InputEvent, bool) {
	in := InputEvent{Position: x.Position, Time: x.Time}
	switch x.Kind {
	case pointer.Press:
		if !x.Buttons.Contain(pointer.ButtonPrimary) {
			return in, false
		}
		in.Kind = Press
	case pointer.Drag:
		in.Kind = Move
	case pointer.Release:
		in.Kind = Release
	case pointer.Cancel:
		in.Kind = Cancel
	case pointer.Scroll:
		in.Kind = Scroll
		in.Scroll = x.Scroll.Y
	default:
		return in, false
	}
	return in, true
}
