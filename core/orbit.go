package core

import (
	"math"

	"github.com/signalsfoundry/impact-simulator/model"
)

// Orbit elements used for the planet's own path around the Sun (AU).
const (
	EarthEccentricity   = 0.0167
	EarthSemiMajorAxis  = 1.0
	DefaultOrbitSamples = 100
)

// OrbitPoints samples a planar conic with eccentricity e and semi-major axis
// a at n+1 evenly spaced true anomalies, so the first and last samples
// coincide. Points lie in the z=0 plane with the focus at the origin.
func OrbitPoints(e, a float64, n int) []model.Point {
	if n <= 0 {
		return nil
	}
	points := make([]model.Point, 0, n+1)
	p := a * (1 - e*e)
	for i := 0; i <= n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		r := p / (1 + e*math.Cos(angle))
		points = append(points, model.Point{
			X: r * math.Cos(angle),
			Y: r * math.Sin(angle),
		})
	}
	return points
}
