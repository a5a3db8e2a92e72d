package core

import (
	"math"
	"testing"
)

func vecNear(a, b Vec3, tol float64) bool {
	return a.DistanceTo(b) <= tol
}

func TestIntersectRaySphereFrontHit(t *testing.T) {
	r := Ray{Origin: Vec3{Z: 10}, Direction: Vec3{Z: -1}}
	p, ok := IntersectRaySphere(r, Sphere{Radius: 4})
	if !ok || !vecNear(p, Vec3{Z: 4}, 1e-12) {
		t.Fatalf("hit = %+v ok=%v, want (0,0,4)", p, ok)
	}
}

func TestIntersectRaySphereMiss(t *testing.T) {
	r := Ray{Origin: Vec3{X: 5, Z: 10}, Direction: Vec3{Z: -1}}
	if _, ok := IntersectRaySphere(r, Sphere{Radius: 4}); ok {
		t.Fatalf("expected ray passing beside the sphere to miss")
	}
}

func TestIntersectRaySphereBehindOrigin(t *testing.T) {
	r := Ray{Origin: Vec3{Z: 10}, Direction: Vec3{Z: 1}}
	if _, ok := IntersectRaySphere(r, Sphere{Radius: 4}); ok {
		t.Fatalf("sphere behind the ray must not be hit")
	}
}

func TestIntersectRaySphereFromInside(t *testing.T) {
	r := Ray{Origin: Vec3{}, Direction: Vec3{X: 2}}
	p, ok := IntersectRaySphere(r, Sphere{Radius: 4})
	if !ok || !vecNear(p, Vec3{X: 4}, 1e-12) {
		t.Fatalf("inside hit = %+v ok=%v, want exit point (4,0,0)", p, ok)
	}
}

func TestIntersectRaySphereOffsetCenter(t *testing.T) {
	s := Sphere{Center: Vec3{X: 1, Y: 2, Z: 3}, Radius: 1}
	r := Ray{Origin: Vec3{X: 1, Y: 2, Z: 10}, Direction: Vec3{Z: -3}}
	p, ok := IntersectRaySphere(r, s)
	if !ok || !vecNear(p, Vec3{X: 1, Y: 2, Z: 4}, 1e-12) {
		t.Fatalf("hit = %+v ok=%v", p, ok)
	}
}

func TestSurfaceLatLon(t *testing.T) {
	s := Sphere{Radius: 4}
	cases := []struct {
		name     string
		p        Vec3
		rot      float64
		lat, lon float64
	}{
		{"prime meridian", Vec3{X: 4}, 0, 0, 0},
		{"north pole", Vec3{Y: 4}, 0, 90, 0},
		{"facing camera", Vec3{Z: 4}, 0, 0, -90},
		{"rotated quarter turn", Vec3{Z: 4}, -math.Pi / 2, 0, 0},
	}
	for _, tc := range cases {
		lat, lon := SurfaceLatLon(tc.p, s, tc.rot)
		if math.Abs(lat-tc.lat) > 1e-9 || math.Abs(lon-tc.lon) > 1e-9 {
			t.Fatalf("%s: lat/lon = %v/%v, want %v/%v", tc.name, lat, lon, tc.lat, tc.lon)
		}
	}
}

func TestVec3RotateYPreservesLength(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	r := v.RotateY(1.234)
	if math.Abs(r.Norm()-v.Norm()) > 1e-12 || r.Y != v.Y {
		t.Fatalf("RotateY changed length or Y: %+v", r)
	}
	if !vecNear(r.RotateY(-1.234), v, 1e-12) {
		t.Fatalf("RotateY not invertible")
	}
}

func TestIntersectRaySphereRejectsNaNRay(t *testing.T) {
	nan := math.NaN()
	r := Ray{Origin: Vec3{Z: 10}, Direction: Vec3{X: nan, Y: nan, Z: nan}}
	if p, ok := IntersectRaySphere(r, Sphere{Radius: 4}); ok {
		t.Fatalf("NaN ray reported hit at %+v", p)
	}
	if _, ok := IntersectRaySphere(Ray{Origin: Vec3{Z: 10}, Direction: Vec3{Z: -1}}, Sphere{Radius: nan}); ok {
		t.Fatalf("NaN radius reported a hit")
	}
}
