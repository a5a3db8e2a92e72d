package core

import (
	"math"
	"testing"
)

func TestOrbitPointsCircle(t *testing.T) {
	pts := OrbitPoints(0, 2, 8)
	if len(pts) != 9 {
		t.Fatalf("len = %d, want 9", len(pts))
	}
	for i, p := range pts {
		if r := math.Hypot(p.X, p.Y); math.Abs(r-2) > 1e-12 || p.Z != 0 {
			t.Fatalf("point %d = %+v, want radius 2 in z=0", i, p)
		}
	}
	if math.Abs(pts[0].X-pts[8].X) > 1e-12 || math.Abs(pts[0].Y-pts[8].Y) > 1e-12 {
		t.Fatalf("orbit not closed: %+v vs %+v", pts[0], pts[8])
	}
}

func TestOrbitPointsEllipse(t *testing.T) {
	pts := OrbitPoints(EarthEccentricity, EarthSemiMajorAxis, DefaultOrbitSamples)
	perihelion := EarthSemiMajorAxis * (1 - EarthEccentricity)
	if math.Abs(pts[0].X-perihelion) > 1e-12 {
		t.Fatalf("first sample X = %v, want perihelion %v", pts[0].X, perihelion)
	}
	aphelion := pts[DefaultOrbitSamples/2]
	if math.Abs(-aphelion.X-EarthSemiMajorAxis*(1+EarthEccentricity)) > 1e-9 {
		t.Fatalf("half-way sample %+v is not aphelion", aphelion)
	}
	if OrbitPoints(0.1, 1, 0) != nil {
		t.Fatalf("n=0 should yield nil")
	}
}
