package core

import (
	"math"
	"testing"
	"time"
)

func startTestRun(t *testing.T, a *Animator) []RenderInstruction {
	t.Helper()
	instr, err := a.Start(Launch{
		Start:            Vec3{Z: -5},
		End:              Vec3{Z: 4},
		Duration:         2 * time.Second,
		ProjectileRadius: 0.25,
	})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	return instr
}

func hasOp(instr []RenderInstruction, op RenderOp, h Handle) bool {
	for _, in := range instr {
		if in.Op == op && in.Handle == h {
			return true
		}
	}
	return false
}

func TestAnimatorStepSequence(t *testing.T) {
	a := NewAnimator(nil)
	if res := a.Step(time.Second); len(res.Instructions) != 0 || res.Impacted || res.Cleared {
		t.Fatalf("idle Step produced %+v", res)
	}

	instr := startTestRun(t, a)
	run, _ := a.Run()
	if len(instr) != 2 || instr[0].Kind != KindProjectile || !instr[0].Visible || instr[1].Kind != KindEffect || instr[1].Visible {
		t.Fatalf("unexpected spawn instructions %+v", instr)
	}
	if instr[1].Normal != (Vec3{Z: -1}) {
		t.Fatalf("effect normal = %+v, want facing the planet centre", instr[1].Normal)
	}

	impacts := 0

	// Step 1: halfway.
	res := a.Step(time.Second)
	if res.Run.Progress != 0.5 || a.Phase() != PhaseApproaching {
		t.Fatalf("after step 1: progress %v phase %s", res.Run.Progress, a.Phase())
	}
	if len(res.Instructions) != 1 || res.Instructions[0].Op != OpMove || res.Instructions[0].Position.Z != -0.5 {
		t.Fatalf("after step 1: instructions %+v", res.Instructions)
	}
	if res.Impacted {
		impacts++
	}

	// Step 2: lands.
	res = a.Step(time.Second)
	if res.Impacted {
		impacts++
	}
	if res.Run.Progress != 1 || a.Phase() != PhaseImpacting || res.Cleared {
		t.Fatalf("after step 2: progress %v phase %s cleared %v", res.Run.Progress, a.Phase(), res.Cleared)
	}
	if !hasOp(res.Instructions, OpRetire, run.Projectile) || !hasOp(res.Instructions, OpShow, run.Effect) {
		t.Fatalf("after step 2: expected projectile retire and effect show, got %+v", res.Instructions)
	}

	// Step 3: fully decayed.
	res = a.Step(time.Second)
	if res.Impacted {
		impacts++
	}
	if res.Run.Progress != 1.5 || res.Run.DecayFraction() != 1 {
		t.Fatalf("after step 3: progress %v decay %v", res.Run.Progress, res.Run.DecayFraction())
	}
	if !res.Cleared || a.Phase() != PhaseIdle {
		t.Fatalf("after step 3: cleared %v phase %s", res.Cleared, a.Phase())
	}
	if !hasOp(res.Instructions, OpRetire, run.Effect) {
		t.Fatalf("after step 3: effect not retired: %+v", res.Instructions)
	}

	if impacts != 1 {
		t.Fatalf("impact transition fired %d times, want 1", impacts)
	}
	if _, ok := a.Run(); ok {
		t.Fatalf("run still active after clearing")
	}
}

func TestAnimatorDecayScalesAndFades(t *testing.T) {
	a := NewAnimator(nil)
	startTestRun(t, a)
	a.Step(2 * time.Second)

	res := a.Step(500 * time.Millisecond) // progress 1.25
	var tr *RenderInstruction
	for i := range res.Instructions {
		if res.Instructions[i].Op == OpTransform {
			tr = &res.Instructions[i]
		}
	}
	if tr == nil {
		t.Fatalf("no transform emitted: %+v", res.Instructions)
	}
	if math.Abs(tr.Scale-6) > 1e-9 || math.Abs(tr.Opacity-0.5) > 1e-9 {
		t.Fatalf("scale %v opacity %v, want 6 and 0.5", tr.Scale, tr.Opacity)
	}
}

func TestAnimatorRestartRetiresPreviousRun(t *testing.T) {
	h := NewHandles()
	a := NewAnimator(h)
	startTestRun(t, a)
	first, _ := a.Run()
	a.Step(time.Second)

	instr := startTestRun(t, a)
	second, _ := a.Run()

	if !hasOp(instr, OpRetire, first.Projectile) || !hasOp(instr, OpRetire, first.Effect) {
		t.Fatalf("restart did not retire old renderables: %+v", instr)
	}
	if !h.IsRetired(first.Projectile) || !h.IsRetired(first.Effect) {
		t.Fatalf("old handles not marked retired")
	}
	if second.Projectile == first.Projectile || second.Effect == first.Effect {
		t.Fatalf("retired handle reused")
	}
	if second.Progress != 0 || a.Phase() != PhaseApproaching {
		t.Fatalf("new run not fresh: %+v", second)
	}
	if h.Live(KindProjectile) != 1 || h.Live(KindEffect) != 1 {
		t.Fatalf("live projectiles %d effects %d, want 1 each", h.Live(KindProjectile), h.Live(KindEffect))
	}
}

func TestAnimatorOvershootStillImpacts(t *testing.T) {
	a := NewAnimator(nil)
	startTestRun(t, a)

	res := a.Step(10 * time.Second)
	if !res.Impacted || !res.Cleared {
		t.Fatalf("overshoot step: impacted %v cleared %v", res.Impacted, res.Cleared)
	}
	if a.Phase() != PhaseIdle {
		t.Fatalf("phase = %s, want idle", a.Phase())
	}
}

func TestAnimatorNegativeDeltaDoesNotRewind(t *testing.T) {
	a := NewAnimator(nil)
	startTestRun(t, a)
	a.Step(time.Second)
	res := a.Step(-time.Second)
	if res.Run.Progress != 0.5 {
		t.Fatalf("progress = %v, want 0.5", res.Run.Progress)
	}
}

func TestAnimatorStartRejectsZeroDuration(t *testing.T) {
	a := NewAnimator(nil)
	if _, err := a.Start(Launch{Duration: 0}); err == nil {
		t.Fatalf("expected error for zero duration")
	}
	if a.Phase() != PhaseIdle {
		t.Fatalf("failed start left phase %s", a.Phase())
	}
}
