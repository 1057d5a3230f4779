package route

import (
	"github.com/olablt/gio-routemap/tiles"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/simplify"
)

// TotalDistance is the haversine length of the polyline in meters.
func TotalDistance(points []tiles.LatLng) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += geo.DistanceHaversine(
			orb.Point{points[i-1].Lng, points[i-1].Lat},
			orb.Point{points[i].Lng, points[i].Lat},
		)
	}
	return total
}

// EstimateTravelTime returns seconds needed to cover meters at the mode's
// average speed.
func EstimateTravelTime(meters float64, mode TransportMode) float64 {
	speed := mode.AverageSpeed()
	if speed <= 0 {
		return 0
	}
	return meters / 1000 / speed * 3600
}

// Simplify drops waypoints closer than minDistance meters to the previously
// kept one. The first and last waypoints always survive. Distance and
// duration are recomputed from the remaining points.
func Simplify(r *Route, minDistance float64) *Route {
	if r.Empty() {
		return &Route{}
	}
	out := &Route{Mode: r.Mode, Instructions: append([]string(nil), r.Instructions...)}

	ls := r.LineString()
	if len(ls) > 2 {
		if s, ok := simplify.Radial(geo.Distance, minDistance).Simplify(ls.Clone()).(orb.LineString); ok && len(s) >= 2 {
			ls = s
		}
	}
	out.Waypoints = make([]tiles.LatLng, 0, len(ls))
	for _, p := range ls {
		out.Waypoints = append(out.Waypoints, tiles.LatLng{Lat: p.Lat(), Lng: p.Lon()})
	}
	out.Distance = TotalDistance(out.Waypoints)
	out.Duration = EstimateTravelTime(out.Distance, out.Mode)
	return out
}

// Centroid is the arithmetic mean of the points, or the origin for none.
func Centroid(points []tiles.LatLng) tiles.LatLng {
	if len(points) == 0 {
		return tiles.LatLng{}
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return tiles.LatLng{Lat: lat / n, Lng: lng / n}
}
