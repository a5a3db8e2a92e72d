package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/impact-simulator/core"
	"github.com/signalsfoundry/impact-simulator/internal/config"
	"github.com/signalsfoundry/impact-simulator/internal/logging"
	"github.com/signalsfoundry/impact-simulator/kb"
	"github.com/signalsfoundry/impact-simulator/model"
)

func newTestApp(t *testing.T, profiles ...model.AsteroidProfile) (*app, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(100, 40)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	catalog := kb.NewCatalog()
	for _, p := range profiles {
		if err := catalog.AddProfile(p); err != nil {
			t.Fatalf("AddProfile error: %v", err)
		}
	}
	return newApp(cfg, catalog, screen, logging.Noop()), screen
}

func key(k tcell.Key, r rune) *tcell.EventKey {
	return tcell.NewEventKey(k, r, tcell.ModNone)
}

func TestAppEmptyCatalogStartsInCustomMode(t *testing.T) {
	a, _ := newTestApp(t)
	p, ok := a.sim.CurrentProfile()
	if !ok || !p.IsCustom() || p.DiameterM != 100 {
		t.Fatalf("profile = %+v, want custom 100 m", p)
	}

	a.handleKey(key(tcell.KeyRight, 0))
	a.handleKey(key(tcell.KeyUp, 0))
	p, _ = a.sim.CurrentProfile()
	if p.DiameterM != 125 || p.VelocityKms != 21 {
		t.Fatalf("after adjust: %+v", p)
	}
}

func TestAppKeysSelectAndQuit(t *testing.T) {
	a, _ := newTestApp(t,
		model.AsteroidProfile{ID: "a", Name: "A", DiameterM: 50, VelocityKms: 10, ImpactEnergyKt: 10},
		model.AsteroidProfile{ID: "b", Name: "B", DiameterM: 500, VelocityKms: 10, ImpactEnergyKt: 1000},
	)

	if p, _ := a.sim.CurrentProfile(); p.ID != "a" {
		t.Fatalf("initial selection %q", p.ID)
	}
	a.handleKey(key(tcell.KeyTab, 0))
	if p, _ := a.sim.CurrentProfile(); p.ID != "b" {
		t.Fatalf("after Tab selection %q", p.ID)
	}
	a.handleKey(key(tcell.KeyRune, 'c'))
	if p, _ := a.sim.CurrentProfile(); !p.IsCustom() {
		t.Fatalf("c did not switch to custom")
	}

	before := a.sim.Camera().Distance()
	a.handleKey(key(tcell.KeyRune, '+'))
	if a.sim.Camera().Distance() != before-1 {
		t.Fatalf("zoom in: %v -> %v", before, a.sim.Camera().Distance())
	}

	if a.handleKey(key(tcell.KeyRune, 'q')) {
		t.Fatalf("q did not quit")
	}
}

func TestAppClickRunsToReport(t *testing.T) {
	a, screen := newTestApp(t, model.AsteroidProfile{ID: "a", Name: "A", DiameterM: 370, VelocityKms: 7.4, ImpactEnergyKt: 1200})
	ctx := context.Background()

	w, h := screen.Size()
	vp := a.adapter.Viewport(w, h)
	click := tcell.NewEventMouse(int(vp.Width/2), int(vp.Height/2), tcell.Button1, tcell.ModNone)
	if !a.handleEvent(ctx, click) {
		t.Fatalf("click quit the app")
	}
	if a.sim.Phase() != core.PhaseApproaching {
		t.Fatalf("phase = %s after click", a.sim.Phase())
	}

	for i := 0; i < 5; i++ {
		a.adapter.Apply(a.sim.Frame(ctx, 500*time.Millisecond))
	}
	a.draw()

	if a.status != "impact!" {
		t.Fatalf("status = %q", a.status)
	}
	hud := strings.Join(a.hudLines(), "\n")
	if !strings.Contains(hud, "Impact Report") || !strings.Contains(hud, core.TsunamiAdvisory) {
		t.Fatalf("HUD missing report:\n%s", hud)
	}
}

func TestAppCameraFollowsConfig(t *testing.T) {
	t.Setenv("IMPACT_CAMERA_NEAR", "0.5")
	t.Setenv("IMPACT_CAMERA_FAR", "250")
	a, _ := newTestApp(t)

	cam := a.sim.Camera()
	if cam.Near != 0.5 || cam.Far != 250 {
		t.Fatalf("camera near/far = %v/%v, want 0.5/250", cam.Near, cam.Far)
	}
}

func TestAppDrawsOrbitsOfSelection(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(100, 40)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	catalog := kb.NewCatalog()
	catalog.SetEarthOrbit(core.OrbitPoints(0.0167, 1, 24))
	if err := catalog.AddProfile(model.AsteroidProfile{
		ID: "a", Name: "A", DiameterM: 370, VelocityKms: 7.4, ImpactEnergyKt: 1200,
		TrajectoryPoints: core.OrbitPoints(0.4, 1.6, 24),
	}); err != nil {
		t.Fatalf("AddProfile error: %v", err)
	}
	a := newApp(cfg, catalog, screen, logging.Noop())
	a.draw()

	w, _ := screen.Size()
	var sun, earth, rock int
	for y := 0; y < 11; y++ {
		for x := w - 26; x < w; x++ {
			r, _, _, _ := screen.GetContent(x, y)
			switch r {
			case '*':
				sun++
			case '·':
				earth++
			case '•':
				rock++
			}
		}
	}
	if sun != 1 || earth == 0 || rock == 0 {
		t.Fatalf("orbit inset sun=%d earth=%d asteroid=%d", sun, earth, rock)
	}
}
