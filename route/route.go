// Package route holds the values the map receives from the routing and
// geocoding clients: routes, transport modes and labelled locations.
package route

import (
	"fmt"
	"math"

	"github.com/olablt/gio-routemap/tiles"
	"github.com/paulmach/orb"
)

// Route is an ordered list of waypoints plus the metadata reported by the
// routing service. The map never modifies a Route it has been given.
type Route struct {
	Waypoints    []tiles.LatLng
	Distance     float64 // meters
	Duration     float64 // seconds
	Instructions []string
	Mode         TransportMode
}

func New(waypoints []tiles.LatLng, mode TransportMode) *Route {
	return &Route{
		Waypoints: append([]tiles.LatLng(nil), waypoints...),
		Mode:      mode,
	}
}

func (r *Route) Empty() bool {
	return r == nil || len(r.Waypoints) == 0
}

func (r *Route) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Waypoints)
}

// LineString returns the waypoints as an orb line (x = longitude).
func (r *Route) LineString() orb.LineString {
	ls := make(orb.LineString, 0, r.Len())
	if r == nil {
		return ls
	}
	for _, p := range r.Waypoints {
		ls = append(ls, orb.Point{p.Lng, p.Lat})
	}
	return ls
}

func (r *Route) Bound() orb.Bound {
	return r.LineString().Bound()
}

func (r *Route) FormattedDistance() string {
	return FormatDistance(r.Distance)
}

func (r *Route) FormattedDuration() string {
	return FormatDuration(r.Duration)
}

func (r *Route) String() string {
	return fmt.Sprintf("Route{waypoints=%d, distance=%.2f km, duration=%.0f min, mode=%s}",
		r.Len(), r.Distance/1000, r.Duration/60, r.Mode)
}

// FormatDistance renders meters as "850 m" or "12.30 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}

// FormatDuration renders seconds as "1 h 5 min" or "42 min".
func FormatDuration(seconds float64) string {
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	if hours > 0 {
		return fmt.Sprintf("%d h %d min", hours, minutes)
	}
	return fmt.Sprintf("%d min", minutes)
}

// Location is a geocoding result: a point with an optional label.
type Location struct {
	Point   tiles.LatLng
	Name    string
	Address string
}

func (l Location) String() string {
	if l.Name == "" {
		return l.Point.String()
	}
	return fmt.Sprintf("%s %s", l.Name, l.Point)
}

// ValidLocation reports whether ll is a real geographic coordinate.
func ValidLocation(ll tiles.LatLng) bool {
	return !math.IsNaN(ll.Lat) && !math.IsNaN(ll.Lng) &&
		ll.Lat >= -90 && ll.Lat <= 90 &&
		ll.Lng >= -180 && ll.Lng <= 180
}
