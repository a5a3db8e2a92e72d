package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Viewport is the size of the drawing surface in screen units (pixels or
// terminal cells).
type Viewport struct {
	Width  float64
	Height float64
}

// Valid reports whether the viewport has a drawable area.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// ToNDC maps screen coordinates (origin top-left, y down) to normalised
// device coordinates in [-1, 1] with y up. An invalid viewport maps every
// point to the centre.
func (v Viewport) ToNDC(x, y float64) (float64, float64) {
	if !v.Valid() {
		return 0, 0
	}
	return (x/v.Width)*2 - 1, -(y/v.Height)*2 + 1
}

// FromNDC is the inverse of ToNDC.
func (v Viewport) FromNDC(nx, ny float64) (float64, float64) {
	return (nx + 1) / 2 * v.Width, (1 - ny) / 2 * v.Height
}

// Camera is a perspective camera looking at Target.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3
	FovYDeg  float64
	Near     float64
	Far      float64
	// PixelAspect corrects for non-square screen units; terminal cells are
	// about twice as tall as they are wide. Zero means 1.
	PixelAspect float64
	Viewport    Viewport
}

// DefaultCamera mirrors the scene setup: 75° field of view, ten units out on
// +Z looking at the planet.
func DefaultCamera(vp Viewport) Camera {
	return Camera{
		Position: Vec3{Z: 10},
		Up:       Vec3{Y: 1},
		FovYDeg:  75,
		Near:     0.1,
		Far:      1000,
		Viewport: vp,
	}
}

// Aspect returns the width/height ratio of the view frustum.
func (c Camera) Aspect() float64 {
	if !c.Viewport.Valid() {
		return 1
	}
	pa := c.PixelAspect
	if pa == 0 {
		pa = 1
	}
	return c.Viewport.Width / (c.Viewport.Height * pa)
}

func (c Camera) viewProjection() mgl64.Mat4 {
	view := mgl64.LookAtV(c.Position.mgl(), c.Target.mgl(), c.Up.mgl())
	proj := mgl64.Perspective(mgl64.DegToRad(c.FovYDeg), c.Aspect(), c.Near, c.Far)
	return proj.Mul4(view)
}

// RayThroughNDC casts a ray from the camera through a point in normalised
// device coordinates.
func (c Camera) RayThroughNDC(nx, ny float64) Ray {
	inv := c.viewProjection().Inv()
	p := inv.Mul4x1(mgl64.Vec4{nx, ny, 0.5, 1})
	if p[3] == 0 {
		return Ray{Origin: c.Position}
	}
	world := vecFromMgl(p.Vec3().Mul(1 / p[3]))
	return Ray{Origin: c.Position, Direction: world.Sub(c.Position).Normalize()}
}

// RayThroughScreen casts a ray through screen coordinates. Without a valid
// viewport the ray has no direction and hits nothing.
func (c Camera) RayThroughScreen(x, y float64) Ray {
	if !c.Viewport.Valid() {
		return Ray{Origin: c.Position}
	}
	nx, ny := c.Viewport.ToNDC(x, y)
	return c.RayThroughNDC(nx, ny)
}

// Project maps a world point to screen coordinates. ok is false when the
// point is behind the camera or outside the clip volume depth.
func (c Camera) Project(p Vec3) (x, y float64, ok bool) {
	clip := c.viewProjection().Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	if ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, false
	}
	x, y = c.Viewport.FromNDC(ndc[0], ndc[1])
	return x, y, true
}

// Distance returns how far the camera is from its target.
func (c Camera) Distance() float64 {
	return c.Position.DistanceTo(c.Target)
}

// WithDistance moves the camera along its current line of sight so that it
// is d units from its target, clamped to [minD, maxD].
func (c Camera) WithDistance(d, minD, maxD float64) Camera {
	d = math.Max(minD, math.Min(maxD, d))
	dir := c.Position.Sub(c.Target).Normalize()
	if dir == (Vec3{}) {
		dir = Vec3{Z: 1}
	}
	c.Position = c.Target.Add(dir.Scale(d))
	return c
}

// PointerEvent is a click in screen coordinates. OverUI marks clicks that
// landed on interface controls and must not target the planet.
type PointerEvent struct {
	X, Y   float64
	OverUI bool
}

// Planet is the target body: its collision sphere, idle spin and the latch
// that stops the spin once the user has aimed at it.
type Planet struct {
	Sphere
	RotationY      float64
	RotationPaused bool
}

// DefaultMarkerRadius is the size of the surface marker.
const DefaultMarkerRadius = 0.05

// Targeter turns clicks into surface points and owns the single surface
// marker.
type Targeter struct {
	handles      *Handles
	marker       Handle
	markerPos    Vec3
	MarkerRadius float64
}

// NewTargeter constructs a targeter with no marker placed.
func NewTargeter(handles *Handles) *Targeter {
	if handles == nil {
		handles = NewHandles()
	}
	return &Targeter{handles: handles, MarkerRadius: DefaultMarkerRadius}
}

// Marker returns the current marker handle and position.
func (t *Targeter) Marker() (Handle, Vec3, bool) {
	if t.marker == 0 {
		return 0, Vec3{}, false
	}
	return t.marker, t.markerPos, true
}

// ResolveImpactPoint casts the pointer through cam onto planet. On a hit it
// replaces the surface marker and latches the planet's rotation off; on a
// miss, or a click over the UI, nothing changes.
func (t *Targeter) ResolveImpactPoint(ev PointerEvent, cam Camera, planet *Planet) (Vec3, []RenderInstruction, bool) {
	if ev.OverUI || planet == nil {
		return Vec3{}, nil, false
	}

	point, ok := IntersectRaySphere(cam.RayThroughScreen(ev.X, ev.Y), planet.Sphere)
	if !ok {
		return Vec3{}, nil, false
	}

	planet.RotationPaused = true

	out := t.ClearMarker()
	t.marker = t.handles.Allocate(KindMarker)
	t.markerPos = point
	out = append(out, RenderInstruction{
		Op:       OpSpawn,
		Handle:   t.marker,
		Kind:     KindMarker,
		Position: point,
		Radius:   t.MarkerRadius,
		Visible:  true,
	})
	return point, out, true
}

// ClearMarker removes the marker if one is placed.
func (t *Targeter) ClearMarker() []RenderInstruction {
	if t.marker == 0 {
		return nil
	}
	h := t.marker
	t.handles.Retire(h)
	t.marker = 0
	t.markerPos = Vec3{}
	return []RenderInstruction{{Op: OpRetire, Handle: h, Kind: KindMarker}}
}
