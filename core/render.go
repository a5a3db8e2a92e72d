package core

import "fmt"

// RenderKind tells the adapter what a handle draws.
type RenderKind int

const (
	KindProjectile RenderKind = iota + 1
	KindEffect
	KindMarker
	KindPlanet
)

func (k RenderKind) String() string {
	switch k {
	case KindProjectile:
		return "projectile"
	case KindEffect:
		return "effect"
	case KindMarker:
		return "marker"
	case KindPlanet:
		return "planet"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RenderOp is the action an adapter applies to a renderable.
type RenderOp int

const (
	// OpSpawn creates the renderable at Position with Radius. Visible says
	// whether it starts shown.
	OpSpawn RenderOp = iota + 1
	// OpMove sets Position.
	OpMove
	// OpShow makes the renderable visible.
	OpShow
	// OpTransform sets isotropic Scale and Opacity.
	OpTransform
	// OpRotate sets the Y rotation of the planet.
	OpRotate
	// OpRetire removes the renderable. The handle is never used again.
	OpRetire
)

func (o RenderOp) String() string {
	switch o {
	case OpSpawn:
		return "spawn"
	case OpMove:
		return "move"
	case OpShow:
		return "show"
	case OpTransform:
		return "transform"
	case OpRotate:
		return "rotate"
	case OpRetire:
		return "retire"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// RenderInstruction is one change the presentation layer must apply. Only
// the fields relevant to Op are set.
type RenderInstruction struct {
	Op     RenderOp
	Handle Handle
	Kind   RenderKind

	Position Vec3
	// Normal is the direction the effect ring faces (towards the planet
	// centre) on spawn.
	Normal  Vec3
	Radius  float64
	Visible bool

	Scale     float64
	Opacity   float64
	RotationY float64
}
