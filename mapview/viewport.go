package mapview

import (
	"math"

	maps "github.com/olablt/gio-routemap/tiles"
	"github.com/paulmach/orb"
)

// DefaultCenter is Lisbon.
var DefaultCenter = maps.LatLng{Lat: 38.7223, Lng: -9.1393}

const DefaultZoom = 13

// Viewport is the visible part of the map. The geographic Center is drawn
// at the middle of the viewport shifted by the pan offset.
type Viewport struct {
	Center     maps.LatLng
	Zoom       int
	PanX, PanY float64
	Width      int
	Height     int
}

// GridTile is one tile of the buffered grid around the viewport. Key is
// not wrapped so its screen position can be derived from it.
type GridTile struct {
	Key      maps.Key
	Priority maps.Priority
}

// anchor returns the screen position of Center.
func (v Viewport) anchor() (float64, float64) {
	return float64(v.Width)/2 + v.PanX, float64(v.Height)/2 + v.PanY
}

// ScreenToLocation returns the geographic point drawn at pixel (px, py).
func (v Viewport) ScreenToLocation(px, py float64) maps.LatLng {
	cx, cy := maps.LatLngToTileXY(v.Center, v.Zoom)
	ax, ay := v.anchor()
	tx := cx + (px-ax)/maps.TileSize
	ty := cy + (py-ay)/maps.TileSize
	return maps.TileXYToLatLng(tx, ty, v.Zoom)
}

// LocationToScreen returns the pixel at which ll is drawn.
func (v Viewport) LocationToScreen(ll maps.LatLng) (float64, float64) {
	cx, cy := maps.LatLngToTileXY(v.Center, v.Zoom)
	tx, ty := maps.LatLngToTileXY(ll, v.Zoom)
	ax, ay := v.anchor()
	return ax + (tx-cx)*maps.TileSize, ay + (ty-cy)*maps.TileSize
}

// TileOrigin returns the screen position of the top-left corner of tile k.
func (v Viewport) TileOrigin(k maps.Key) (float64, float64) {
	cx, cy := maps.LatLngToTileXY(v.Center, v.Zoom)
	ax, ay := v.anchor()
	return ax + (float64(k.X)-cx)*maps.TileSize, ay + (float64(k.Y)-cy)*maps.TileSize
}

// VisibleCenter is the location drawn at the middle of the viewport.
func (v Viewport) VisibleCenter() maps.LatLng {
	return v.ScreenToLocation(float64(v.Width)/2, float64(v.Height)/2)
}

// TileGrid lists the tiles covering the viewport plus buffer extra tiles
// on every side. Tiles touching the viewport are visible priority, the
// rest are background. Rows past the poles are left out.
func (v Viewport) TileGrid(buffer int) []GridTile {
	if v.Width <= 0 || v.Height <= 0 {
		return nil
	}
	cx, cy := maps.LatLngToTileXY(v.Center, v.Zoom)
	ax, ay := v.anchor()

	// fractional tile coordinates of the viewport corners
	minX := cx - ax/maps.TileSize
	minY := cy - ay/maps.TileSize
	maxX := cx + (float64(v.Width)-ax)/maps.TileSize
	maxY := cy + (float64(v.Height)-ay)/maps.TileSize

	visX0, visY0 := int(math.Floor(minX)), int(math.Floor(minY))
	visX1, visY1 := int(math.Ceil(maxX))-1, int(math.Ceil(maxY))-1

	n := 1 << v.Zoom
	grid := make([]GridTile, 0, (visX1-visX0+1+2*buffer)*(visY1-visY0+1+2*buffer))
	for y := visY0 - buffer; y <= visY1+buffer; y++ {
		if y < 0 || y >= n {
			continue
		}
		for x := visX0 - buffer; x <= visX1+buffer; x++ {
			prio := maps.PriorityBackground
			if x >= visX0 && x <= visX1 && y >= visY0 && y <= visY1 {
				prio = maps.PriorityVisible
			}
			grid = append(grid, GridTile{
				Key:      maps.Key{Zoom: v.Zoom, X: x, Y: y},
				Priority: prio,
			})
		}
	}
	return grid
}

// VisibleBound is the geographic extent of the viewport.
func (v Viewport) VisibleBound() orb.Bound {
	nw := v.ScreenToLocation(0, 0)
	se := v.ScreenToLocation(float64(v.Width), float64(v.Height))
	return orb.Bound{
		Min: orb.Point{nw.Lng, se.Lat},
		Max: orb.Point{se.Lng, nw.Lat},
	}
}

// anchoredCenter returns the center that keeps ll drawn at pixel (px, py)
// with no pan offset at the given zoom.
func (v Viewport) anchoredCenter(ll maps.LatLng, px, py float64, zoom int) maps.LatLng {
	tx, ty := maps.LatLngToTileXY(ll, zoom)
	cx := tx - (px-float64(v.Width)/2)/maps.TileSize
	cy := ty - (py-float64(v.Height)/2)/maps.TileSize
	return maps.TileXYToLatLng(cx, cy, zoom)
}
