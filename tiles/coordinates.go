package tiles

import (
	"fmt"
	"math"

	"github.com/paulmach/orb/maptile"
)

const (
	TileSize           = 256
	MinZoom            = 1
	MaxZoom            = 18
	earthCircumference = 40075016.686 // meters at equator
)

// Key identifies a tile in the Web-Mercator tiling scheme.
type Key struct {
	Zoom, X, Y int
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

func (ll LatLng) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", ll.Lat, ll.Lng)
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Zoom, k.X, k.Y)
}

// Wrap returns the key with X taken modulo 2^zoom. Y is left alone: the
// Mercator grid does not wrap across the poles.
func (k Key) Wrap() Key {
	if k.Zoom < 0 || k.Zoom > 30 {
		return k
	}
	n := 1 << k.Zoom
	k.X %= n
	if k.X < 0 {
		k.X += n
	}
	return k
}

// Valid reports whether the key addresses an existing tile at a supported zoom.
func (k Key) Valid() bool {
	if k.Zoom < MinZoom || k.Zoom > MaxZoom {
		return false
	}
	n := 1 << k.Zoom
	return k.X >= 0 && k.X < n && k.Y >= 0 && k.Y < n
}

// Tile converts the key to an orb maptile. The key must be valid.
func (k Key) Tile() maptile.Tile {
	return maptile.New(uint32(k.X), uint32(k.Y), maptile.Zoom(k.Zoom))
}

// KeyFromTile is the inverse of Key.Tile.
func KeyFromTile(t maptile.Tile) Key {
	return Key{Zoom: int(t.Z), X: int(t.X), Y: int(t.Y)}
}

// ClampZoom limits zoom to [MinZoom, MaxZoom].
func ClampZoom(zoom int) int {
	return max(MinZoom, min(zoom, MaxZoom))
}

// LatLngToTileXY converts geographical coordinates to fractional tile coordinates.
func LatLngToTileXY(ll LatLng, zoom int) (float64, float64) {
	latRad := ll.Lat * math.Pi / 180
	n := math.Exp2(float64(zoom))
	x := (ll.Lng + 180.0) / 360.0 * n
	y := (1.0 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x, y
}

// TileXYToLatLng converts fractional tile coordinates back to geographical coordinates.
func TileXYToLatLng(x, y float64, zoom int) LatLng {
	n := math.Exp2(float64(zoom))
	lng := x/n*360.0 - 180.0
	latRad := math.Atan(math.Sinh(math.Pi * (1 - 2*y/n)))
	return LatLng{Lat: latRad * 180.0 / math.Pi, Lng: lng}
}

// LatLngToTile returns the tile containing ll. X wraps around the
// antimeridian, Y is clamped to the grid.
func LatLngToTile(ll LatLng, zoom int) Key {
	fx, fy := LatLngToTileXY(ll, zoom)
	n := 1 << zoom
	y := int(math.Floor(fy))
	y = max(0, min(y, n-1))
	return Key{Zoom: zoom, X: int(math.Floor(fx)), Y: y}.Wrap()
}

// TileToLatLng returns the north-west corner of the tile.
func TileToLatLng(k Key) LatLng {
	return TileXYToLatLng(float64(k.X), float64(k.Y), k.Zoom)
}

// CalculateWorldCoordinates converts geographical coordinates to world pixel coordinates at given zoom level
func CalculateWorldCoordinates(ll LatLng, zoom int) (float64, float64) {
	x, y := LatLngToTileXY(ll, zoom)
	return x * TileSize, y * TileSize
}

// WorldToLatLng converts world pixel coordinates back to geographical coordinates
func WorldToLatLng(worldX, worldY float64, zoom int) LatLng {
	return TileXYToLatLng(worldX/TileSize, worldY/TileSize, zoom)
}

// CalculateMetersPerPixel calculates the meters per pixel at a given latitude and zoom level
func CalculateMetersPerPixel(latitude float64, zoom int) float64 {
	return earthCircumference * math.Cos(latitude*math.Pi/180) / (math.Exp2(float64(zoom)) * TileSize)
}
