package mapview

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/olablt/gio-routemap/route"
	maps "github.com/olablt/gio-routemap/tiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var green = color.RGBA{0, 128, 0, 255}

func solidTile(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, maps.TileSize, maps.TileSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func renderViewport() Viewport {
	return Viewport{Center: DefaultCenter, Zoom: DefaultZoom, Width: 256, Height: 256}
}

func countColor(img *image.RGBA, c color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestRenderReadyTiles(t *testing.T) {
	vp := renderViewport()
	ft := newFakeTiles()
	tile := solidTile(green)
	for _, gt := range vp.TileGrid(DefaultBuffer) {
		ft.entries[gt.Key.Wrap()] = maps.Entry{State: maps.Ready, Image: tile}
	}

	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	NewRenderer().Render(dst, vp, ft, nil, nil)

	assert.Empty(t, ft.requests, "ready tiles are not requested again")
	assert.Equal(t, vp.Width*vp.Height, countColor(dst, green))
}

func TestRenderMissingTilesRequestsThem(t *testing.T) {
	vp := renderViewport()
	ft := newFakeTiles()
	placeholder := vp.TileGrid(DefaultBuffer)[0].Key
	ft.entries[placeholder] = maps.Entry{State: maps.Placeholder, Image: maps.NewPlaceholder(placeholder)}

	r := NewRenderer()
	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	r.Render(dst, vp, ft, nil, nil)

	grid := vp.TileGrid(DefaultBuffer)
	require.Len(t, ft.requests, len(grid), "misses and placeholders are requested")
	for i, gt := range grid {
		assert.Equal(t, gt.Key, ft.requests[i].key)
		assert.Equal(t, gt.Priority, ft.requests[i].prio)
	}

	bg := color.RGBAModel.Convert(r.Background).(color.RGBA)
	assert.Zero(t, countColor(dst, bg), "placeholders cover the whole frame")
}

func TestRenderRoute(t *testing.T) {
	vp := renderViewport()
	r := NewRenderer()
	blue := color.RGBAModel.Convert(r.RouteColor).(color.RGBA)

	from := vp.ScreenToLocation(50, 128.5)
	to := vp.ScreenToLocation(200, 128.5)

	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	r.Render(dst, vp, newFakeTiles(), route.New([]maps.LatLng{from, to}, route.Driving), nil)
	assert.Equal(t, blue, dst.RGBAAt(125, 128))
	assert.NotEqual(t, blue, dst.RGBAAt(125, 20))

	dst = image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	r.Render(dst, vp, newFakeTiles(), route.New([]maps.LatLng{from}, route.Driving), nil)
	assert.Zero(t, countColor(dst, blue), "a single waypoint draws no line")
}

func TestRenderMarkers(t *testing.T) {
	vp := renderViewport()
	r := NewRenderer()
	red := color.RGBAModel.Convert(r.MarkerFill).(color.RGBA)
	stroke := color.RGBAModel.Convert(r.MarkerStroke).(color.RGBA)

	p := vp.ScreenToLocation(100.5, 60.5)
	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	r.Render(dst, vp, newFakeTiles(), nil, []maps.LatLng{p})

	assert.Equal(t, red, dst.RGBAAt(100, 60))
	edge := dst.RGBAAt(100+int(r.MarkerRadius), 60)
	assert.InDelta(t, stroke.R, edge.R, 16)
	assert.Zero(t, edge.G)
	assert.NotEqual(t, red, dst.RGBAAt(200, 200))
}
