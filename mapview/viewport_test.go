package mapview

import (
	"testing"

	maps "github.com/olablt/gio-routemap/tiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenLocationRoundTrip(t *testing.T) {
	viewports := []Viewport{
		{Center: DefaultCenter, Zoom: 13, Width: 800, Height: 600},
		{Center: DefaultCenter, Zoom: 1, Width: 300, Height: 200},
		{Center: DefaultCenter, Zoom: 18, Width: 1024, Height: 768, PanX: 37.5, PanY: -120},
		{Center: maps.LatLng{Lat: -33.8688, Lng: 151.2093}, Zoom: 7, Width: 640, Height: 480, PanX: -300},
		{Center: maps.LatLng{Lat: 70, Lng: 179.5}, Zoom: 5, Width: 500, Height: 500},
	}

	for _, vp := range viewports {
		for px := 0.0; px <= float64(vp.Width); px += float64(vp.Width) / 7 {
			for py := 0.0; py <= float64(vp.Height); py += float64(vp.Height) / 5 {
				ll := vp.ScreenToLocation(px, py)
				x, y := vp.LocationToScreen(ll)
				require.InDelta(t, px, x, 1, "zoom %d at (%v,%v)", vp.Zoom, px, py)
				require.InDelta(t, py, y, 1, "zoom %d at (%v,%v)", vp.Zoom, px, py)
			}
		}
	}
}

func TestCenterMapsToViewportMiddle(t *testing.T) {
	vp := Viewport{Center: DefaultCenter, Zoom: 13, Width: 800, Height: 600}
	x, y := vp.LocationToScreen(DefaultCenter)
	assert.InDelta(t, 400, x, 1e-6)
	assert.InDelta(t, 300, y, 1e-6)

	vp.PanX, vp.PanY = 10, -20
	x, y = vp.LocationToScreen(DefaultCenter)
	assert.InDelta(t, 410, x, 1e-6)
	assert.InDelta(t, 280, y, 1e-6)
}

func TestTileGrid(t *testing.T) {
	vp := Viewport{Center: DefaultCenter, Zoom: 13, Width: 800, Height: 600}
	grid := vp.TileGrid(DefaultBuffer)
	require.NotEmpty(t, grid)

	center := maps.LatLngToTile(DefaultCenter, 13)
	var visible, background int
	seen := make(map[maps.Key]bool)
	for _, gt := range grid {
		assert.False(t, seen[gt.Key], "duplicate tile %s", gt.Key)
		seen[gt.Key] = true
		if gt.Priority == maps.PriorityVisible {
			visible++
			ox, oy := vp.TileOrigin(gt.Key)
			assert.True(t, ox < 800 && ox+maps.TileSize > 0 && oy < 600 && oy+maps.TileSize > 0,
				"visible tile %s is off screen", gt.Key)
		} else {
			background++
		}
	}
	assert.True(t, seen[center], "grid must contain the center tile")
	// 800x600 needs at least 4x3 tiles and at most 5x4
	assert.GreaterOrEqual(t, visible, 12)
	assert.LessOrEqual(t, visible, 20)
	assert.Greater(t, background, visible)
}

func TestTileGridFollowsPan(t *testing.T) {
	vp := Viewport{Center: DefaultCenter, Zoom: 13, Width: 256, Height: 256}
	before := vp.TileGrid(0)

	// dragging the map right by two tiles reveals tiles to the west
	vp.PanX = 2 * maps.TileSize
	after := vp.TileGrid(0)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Key.X-2, after[i].Key.X)
		assert.Equal(t, before[i].Key.Y, after[i].Key.Y)
	}
}

func TestTileGridSkipsRowsPastThePoles(t *testing.T) {
	vp := Viewport{Center: maps.LatLng{Lat: 80, Lng: 0}, Zoom: 2, Width: 1024, Height: 1024}
	for _, gt := range vp.TileGrid(DefaultBuffer) {
		assert.GreaterOrEqual(t, gt.Key.Y, 0)
		assert.Less(t, gt.Key.Y, 4)
		assert.True(t, gt.Key.Wrap().Valid(), gt.Key.String())
	}
}

func TestVisibleBound(t *testing.T) {
	vp := Viewport{Center: DefaultCenter, Zoom: 13, Width: 800, Height: 600}
	b := vp.VisibleBound()
	assert.Less(t, b.Min.Lon(), DefaultCenter.Lng)
	assert.Greater(t, b.Max.Lon(), DefaultCenter.Lng)
	assert.Less(t, b.Min.Lat(), DefaultCenter.Lat)
	assert.Greater(t, b.Max.Lat(), DefaultCenter.Lat)
}
