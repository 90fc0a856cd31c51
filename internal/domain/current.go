package domain

import "math"

var compassPoints = [8]string{"E", "NE", "N", "NW", "W", "SW", "S", "SE"}

// Speed is the magnitude of the (u, v) current vector in m/s.
func Speed(u, v float64) float64 {
	return math.Hypot(u, v)
}

// CompassDirection names the 8-point compass direction the current flows
// toward. u is eastward, v northward.
func CompassDirection(u, v float64) string {
	deg := math.Atan2(v, u) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return compassPoints[int(math.Round(deg/45))%8]
}
