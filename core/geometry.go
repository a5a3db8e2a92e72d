package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/signalsfoundry/impact-simulator/model"
)

// Vec3 is a scene-space vector. The planet sits at the origin and all
// distances are in scene units.
type Vec3 struct {
	X, Y, Z float64
}

// VecFromPoint converts a model point.
func VecFromPoint(p model.Point) Vec3 { return Vec3{X: p.X, Y: p.Y, Z: p.Z} }

// Point converts v back into a model point.
func (v Vec3) Point() model.Point { return model.Point{X: v.X, Y: v.Y, Z: v.Z} }

func vecFromMgl(v mgl64.Vec3) Vec3 { return Vec3{X: v[0], Y: v[1], Z: v[2]} }

func (v Vec3) mgl() mgl64.Vec3 { return mgl64.Vec3{v.X, v.Y, v.Z} }

// DistanceTo returns the straight-line distance between two points.
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Norm()
}

// Norm returns the Euclidean norm of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Normalize returns the unit vector in the direction of v, or the zero
// vector when v has no length.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return v.Scale(1 / n)
}

// Lerp interpolates between a and b. t is not clamped.
func Lerp(a, b Vec3, t float64) Vec3 {
	return Vec3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// RotateY rotates v about the Y axis by angle radians.
func (v Vec3) RotateY(angle float64) Vec3 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// Ray is a half-line starting at Origin. Direction need not be normalised.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point Origin + t*Direction.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Sphere is the collision shape of the planet mesh.
type Sphere struct {
	Center Vec3
	Radius float64
}

// IntersectRaySphere returns the nearest point where the ray enters the
// sphere. Hits behind the ray origin are ignored; when the origin is inside
// the sphere the exit point is returned.
func IntersectRaySphere(r Ray, s Sphere) (Vec3, bool) {
	a := r.Direction.Dot(r.Direction)
	if !(a > 0) || !(s.Radius > 0) {
		return Vec3{}, false
	}

	// |o + t d - c|^2 = R^2  ->  a t^2 + 2 b t + c = 0 with b = d.(o-c).
	oc := r.Origin.Sub(s.Center)
	b := r.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := b*b - a*c
	if !(disc >= 0) {
		return Vec3{}, false
	}
	sq := math.Sqrt(disc)

	t := (-b - sq) / a
	if t < 0 {
		t = (-b + sq) / a
	}
	if t < 0 {
		return Vec3{}, false
	}
	return r.At(t), true
}

// SurfaceLatLon returns latitude and longitude in degrees of a point on a
// sphere that has been spun rotationY radians about its Y axis. +Y is north
// and the unrotated +X axis is the prime meridian.
func SurfaceLatLon(p Vec3, s Sphere, rotationY float64) (lat, lon float64) {
	local := p.Sub(s.Center).RotateY(-rotationY)
	r := local.Norm()
	if r == 0 {
		return 0, 0
	}

	sinLat := local.Y / r
	if sinLat > 1 {
		sinLat = 1
	} else if sinLat < -1 {
		sinLat = -1
	}
	lat = math.Asin(sinLat) * 180.0 / math.Pi
	lon = math.Atan2(-local.Z, local.X) * 180.0 / math.Pi
	return lat, lon
}
