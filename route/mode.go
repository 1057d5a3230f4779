package route

import "fmt"

type TransportMode int

const (
	Driving TransportMode = iota
	Walking
	Cycling
)

var modes = []struct {
	code, name string
	speed      float64 // km/h
}{
	Driving: {"car", "Driving", 50},
	Walking: {"foot", "Walking", 5},
	Cycling: {"bike", "Cycling", 15},
}

// APICode is the profile name used by the routing service.
func (m TransportMode) APICode() string {
	if m < 0 || int(m) >= len(modes) {
		return ""
	}
	return modes[m].code
}

// AverageSpeed in km/h, used when the routing service reports no duration.
func (m TransportMode) AverageSpeed() float64 {
	if m < 0 || int(m) >= len(modes) {
		return 0
	}
	return modes[m].speed
}

func (m TransportMode) String() string {
	if m < 0 || int(m) >= len(modes) {
		return fmt.Sprintf("TransportMode(%d)", int(m))
	}
	return modes[m].name
}

func ParseTransportMode(code string) (TransportMode, error) {
	for i, m := range modes {
		if m.code == code {
			return TransportMode(i), nil
		}
	}
	return Driving, fmt.Errorf("unknown transport mode %q", code)
}
