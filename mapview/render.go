package mapview

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/olablt/gio-routemap/route"
	maps "github.com/olablt/gio-routemap/tiles"
	"golang.org/x/image/draw"
)

// DefaultBuffer is the number of extra tile rows and columns kept around
// the viewport to hide loading while panning.
const DefaultBuffer = 3

// TileSource is where the renderer looks tiles up. Request must not block.
type TileSource interface {
	Get(k maps.Key) (maps.Entry, bool)
	Request(k maps.Key, prio maps.Priority) bool
}

// Renderer composites tiles, the route and the selected points into a frame.
type Renderer struct {
	Background        color.Color
	RouteColor        color.Color
	RouteWidth        float64
	MarkerFill        color.Color
	MarkerStroke      color.Color
	MarkerRadius      float64
	MarkerStrokeWidth float64
	Buffer            int
}

func NewRenderer() *Renderer {
	return &Renderer{
		Background:        color.RGBA{229, 227, 223, 255},
		RouteColor:        color.RGBA{0, 0, 255, 255},
		RouteWidth:        3,
		MarkerFill:        color.RGBA{255, 0, 0, 255},
		MarkerStroke:      color.RGBA{139, 0, 0, 255},
		MarkerRadius:      8,
		MarkerStrokeWidth: 2,
		Buffer:            DefaultBuffer,
	}
}

// Render draws the frame for vp into dst. Tiles that are not ready are
// drawn as placeholders and requested from src.
func (r *Renderer) Render(dst *image.RGBA, vp Viewport, src TileSource, rt *route.Route, points []maps.LatLng) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.Background), image.Point{}, draw.Src)
	r.drawTiles(dst, vp, src)

	dc := gg.NewContextForRGBA(dst)
	r.drawRoute(dc, vp, rt)
	r.drawMarkers(dc, vp, points)
}

func (r *Renderer) drawTiles(dst *image.RGBA, vp Viewport, src TileSource) {
	bounds := dst.Bounds()
	for _, gt := range vp.TileGrid(r.Buffer) {
		key := gt.Key.Wrap()

		var img image.Image
		e, ok := src.Get(key)
		switch {
		case ok && e.State == maps.Ready:
			img = e.Image
		case ok && e.State == maps.Placeholder:
			img = e.Image
			src.Request(key, gt.Priority)
		default:
			src.Request(key, gt.Priority)
		}
		if img == nil {
			img = maps.BlankPlaceholder()
		}

		ox, oy := vp.TileOrigin(gt.Key)
		at := image.Pt(int(math.Round(ox)), int(math.Round(oy)))
		rect := image.Rectangle{Min: at, Max: at.Add(image.Pt(maps.TileSize, maps.TileSize))}
		if !rect.Overlaps(bounds) {
			continue
		}
		draw.Draw(dst, rect, img, img.Bounds().Min, draw.Src)
	}
}

func (r *Renderer) drawRoute(dc *gg.Context, vp Viewport, rt *route.Route) {
	if rt.Len() < 2 {
		return
	}
	if !rt.Bound().Intersects(vp.VisibleBound()) {
		return
	}
	dc.SetColor(r.RouteColor)
	dc.SetLineWidth(r.RouteWidth)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	for i, p := range rt.Waypoints {
		x, y := vp.LocationToScreen(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.Stroke()
}

func (r *Renderer) drawMarkers(dc *gg.Context, vp Viewport, points []maps.LatLng) {
	for _, p := range points {
		x, y := vp.LocationToScreen(p)
		dc.DrawCircle(x, y, r.MarkerRadius)
		dc.SetColor(r.MarkerFill)
		dc.FillPreserve()
		dc.SetColor(r.MarkerStroke)
		dc.SetLineWidth(r.MarkerStrokeWidth)
		dc.Stroke()
	}
}
