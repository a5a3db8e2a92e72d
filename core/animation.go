package core

import (
	"fmt"
	"time"
)

// Phase is the state of the impact animation.
type Phase int

const (
	// PhaseIdle means no run is active.
	PhaseIdle Phase = iota
	// PhaseApproaching means the projectile is in flight (progress < 1).
	PhaseApproaching
	// PhaseImpacting means the projectile has landed and the effect is
	// expanding and fading (progress >= 1).
	PhaseImpacting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseApproaching:
		return "approaching"
	case PhaseImpacting:
		return "impacting"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	// DefaultFlightDuration is how long a projectile takes to reach the
	// surface.
	DefaultFlightDuration = 2 * time.Second

	// decayRate maps progress past 1 onto the decay fraction; decay
	// completes at progress 1 + 1/decayRate.
	decayRate = 2.0
	// effectGrowth is how many times its size the effect gains over the
	// decay phase.
	effectGrowth = 10.0
)

// Launch describes a run to start.
type Launch struct {
	Start            Vec3
	End              Vec3
	Duration         time.Duration
	ProjectileRadius float64
	// PlanetCenter orients the effect so it faces the planet.
	PlanetCenter Vec3
}

// ImpactRun is the mutable state of the active animation.
type ImpactRun struct {
	Projectile Handle
	Effect     Handle

	StartPosition Vec3
	EndPosition   Vec3

	// Progress is elapsed flight time over the flight duration. Values
	// past 1 drive the decay of the effect.
	Progress        float64
	DurationSeconds float64

	Phase Phase
}

// DecayFraction is the normalised progress through the post-impact phase.
func (r ImpactRun) DecayFraction() float64 {
	if r.Progress < 1 {
		return 0
	}
	return (r.Progress - 1) * decayRate
}

// StepResult is what one frame produced.
type StepResult struct {
	Instructions []RenderInstruction
	// Impacted is set on the single step that moves the run from
	// approaching to impacting.
	Impacted bool
	// Cleared is set on the step that retires the effect and ends the run.
	Cleared bool
	// Run is a snapshot of the run after the step. It is the final state
	// when Cleared is set.
	Run ImpactRun
}

// Animator drives at most one ImpactRun. It is not safe for concurrent use;
// it is meant to be owned by the frame loop.
type Animator struct {
	handles *Handles
	run     *ImpactRun
}

// NewAnimator constructs an idle animator allocating from handles. A nil
// handles gets a private allocator.
func NewAnimator(handles *Handles) *Animator {
	if handles == nil {
		handles = NewHandles()
	}
	return &Animator{handles: handles}
}

// Phase returns the current animation phase.
func (a *Animator) Phase() Phase {
	if a.run == nil {
		return PhaseIdle
	}
	return a.run.Phase
}

// Run returns a snapshot of the active run.
func (a *Animator) Run() (ImpactRun, bool) {
	if a.run == nil {
		return ImpactRun{}, false
	}
	return *a.run, true
}

// Start begins a new run. Any active run is discarded first and its
// renderables retired without waiting for its decay.
func (a *Animator) Start(launch Launch) ([]RenderInstruction, error) {
	if launch.Duration <= 0 {
		return nil, fmt.Errorf("flight duration %s: %w", launch.Duration, ErrInvalidParameter)
	}

	out := a.Discard()

	run := &ImpactRun{
		Projectile:      a.handles.Allocate(KindProjectile),
		Effect:          a.handles.Allocate(KindEffect),
		StartPosition:   launch.Start,
		EndPosition:     launch.End,
		DurationSeconds: launch.Duration.Seconds(),
		Phase:           PhaseApproaching,
	}
	a.run = run

	out = append(out,
		RenderInstruction{
			Op:       OpSpawn,
			Handle:   run.Projectile,
			Kind:     KindProjectile,
			Position: launch.Start,
			Radius:   launch.ProjectileRadius,
			Visible:  true,
		},
		RenderInstruction{
			Op:       OpSpawn,
			Handle:   run.Effect,
			Kind:     KindEffect,
			Position: launch.End,
			Normal:   launch.PlanetCenter.Sub(launch.End).Normalize(),
			Visible:  false,
			Scale:    1,
			Opacity:  1,
		},
	)
	return out, nil
}

// Discard drops the active run, if any, and returns the retire instructions
// for whatever it still held.
func (a *Animator) Discard() []RenderInstruction {
	if a.run == nil {
		return nil
	}
	var out []RenderInstruction
	if a.run.Projectile != 0 {
		out = append(out, a.retire(a.run.Projectile, KindProjectile))
	}
	if a.run.Effect != 0 {
		out = append(out, a.retire(a.run.Effect, KindEffect))
	}
	a.run = nil
	return out
}

// Step advances the active run by dt. It is a no-op when idle. Negative dt
// is treated as zero so progress never decreases.
//
// A dt large enough to carry progress past both 1 and the end of decay in
// one step still performs the impact transition before the run is cleared.
func (a *Animator) Step(dt time.Duration) StepResult {
	run := a.run
	if run == nil {
		return StepResult{}
	}

	if dt > 0 {
		run.Progress += dt.Seconds() / run.DurationSeconds
	}

	var res StepResult
	if run.Phase == PhaseApproaching {
		if run.Progress < 1 {
			res.Instructions = append(res.Instructions, RenderInstruction{
				Op:       OpMove,
				Handle:   run.Projectile,
				Kind:     KindProjectile,
				Position: Lerp(run.StartPosition, run.EndPosition, run.Progress),
			})
			res.Run = *run
			return res
		}

		res.Instructions = append(res.Instructions,
			a.retire(run.Projectile, KindProjectile),
			RenderInstruction{Op: OpShow, Handle: run.Effect, Kind: KindEffect, Visible: true},
		)
		run.Projectile = 0
		run.Phase = PhaseImpacting
		res.Impacted = true
	}

	decay := run.DecayFraction()
	opacity := 1 - decay
	transform := RenderInstruction{
		Op:      OpTransform,
		Handle:  run.Effect,
		Kind:    KindEffect,
		Scale:   1 + decay*effectGrowth,
		Opacity: opacity,
	}
	if opacity <= 0 {
		transform.Opacity = 0
		res.Instructions = append(res.Instructions, transform, a.retire(run.Effect, KindEffect))
		run.Effect = 0
		res.Cleared = true
		res.Run = *run
		a.run = nil
		return res
	}

	res.Instructions = append(res.Instructions, transform)
	res.Run = *run
	return res
}

func (a *Animator) retire(h Handle, kind RenderKind) RenderInstruction {
	a.handles.Retire(h)
	return RenderInstruction{Op: OpRetire, Handle: h, Kind: kind}
}
