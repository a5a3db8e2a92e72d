package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/signalsfoundry/impact-simulator/core"
	"github.com/signalsfoundry/impact-simulator/internal/config"
	"github.com/signalsfoundry/impact-simulator/internal/logging"
	"github.com/signalsfoundry/impact-simulator/internal/render/term"
	"github.com/signalsfoundry/impact-simulator/kb"
	"github.com/signalsfoundry/impact-simulator/model"
)

const hudRows = 7

// custom slider ranges and steps
const (
	minDiameterM  = 10.0
	maxDiameterM  = 20000.0
	minVelocityKm = 5.0
	maxVelocityKm = 70.0
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON config file")
	catalogPath := flag.String("catalog", "", "Path to the catalog document (overrides catalog.path)")
	logPath := flag.String("log", "", "Write logs to this file (the terminal is busy drawing)")
	flag.Parse()

	if err := run(*configPath, *catalogPath, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "impact-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, catalogPath, logPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	log := logging.Noop()
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log = logging.New(logging.Config{
			Level:   os.Getenv("LOG_LEVEL"),
			Format:  os.Getenv("LOG_FORMAT"),
			Backend: os.Getenv("LOG_BACKEND"),
			Output:  f,
		})
	}

	catalog := kb.NewCatalog()
	if f, err := os.Open(cfg.Catalog.Path); err == nil {
		_, err = core.LoadCatalog(catalog, f, cfg.Sim.DensityKgM3)
		f.Close()
		if err != nil {
			return fmt.Errorf("load catalog %q: %w", cfg.Catalog.Path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("open catalog: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()

	app := newApp(cfg, catalog, screen, log)
	app.loop()
	return nil
}

type app struct {
	screen  tcell.Screen
	adapter *term.Adapter
	sim     *core.Simulation
	catalog *kb.Catalog
	log     logging.Logger

	profiles []model.AsteroidProfile
	selected int
	custom   bool
	diameter float64
	velocity float64
	status   string
}

func newApp(cfg *config.Config, catalog *kb.Catalog, screen tcell.Screen, log logging.Logger) *app {
	adapter := term.NewAdapter(hudRows)
	w, h := screen.Size()

	settings := core.DefaultSettings()
	settings.FlightDuration = cfg.Sim.FlightDuration
	settings.DensityKgM3 = cfg.Sim.DensityKgM3
	settings.PlanetRadius = cfg.Planet.Radius
	settings.RotationStep = cfg.Planet.RotationStep
	settings.MinCameraDistance = cfg.Camera.MinDistance
	settings.MaxCameraDistance = cfg.Camera.MaxDistance

	cam := core.DefaultCamera(adapter.Viewport(w, h))
	cam.FovYDeg = cfg.Camera.FovDeg
	cam.Near = cfg.Camera.Near
	cam.Far = cfg.Camera.Far
	cam.PixelAspect = term.CellAspect
	cam = cam.WithDistance(cfg.Camera.Distance, cfg.Camera.MinDistance, cfg.Camera.MaxDistance)

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a := &app{
		screen:   screen,
		adapter:  adapter,
		catalog:  catalog,
		log:      log,
		profiles: catalog.ListProfiles(),
		diameter: 100,
		velocity: 20,
		sim: core.NewSimulation(catalog,
			core.WithSettings(settings),
			core.WithCamera(cam),
			core.WithLogger(log),
			core.WithRand(rand.New(rand.NewSource(seed))),
		),
	}
	a.sim.AddReportListener(func(ctx context.Context, r model.ImpactReport) {
		a.status = "impact!"
		if runLog := logging.LoggerFromContext(ctx); runLog != nil {
			runLog.Debug(ctx, "report shown",
				logging.Float64("lat", r.LatitudeDeg),
				logging.Float64("lon", r.LongitudeDeg),
			)
		}
	})
	if len(a.profiles) == 0 {
		a.custom = true
	}
	a.applySelection()
	return a
}

func (a *app) loop() {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ctx := context.Background()
	last := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !a.handleEvent(ctx, ev) {
				return
			}
		case now := <-ticker.C:
			a.adapter.Apply(a.sim.Frame(ctx, now.Sub(last)))
			last = now
			a.draw()
		}
	}
}

// handleEvent applies one input event. It returns false when the user quits.
func (a *app) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return true
		}
		_, h := a.screen.Size()
		started, instr := a.sim.Click(ctx, a.adapter.PointerFromMouse(ev, h))
		a.adapter.Apply(instr)
		if started {
			a.status = "incoming..."
		}
	case *tcell.EventResize:
		a.sim.SetViewport(a.adapter.Viewport(a.screen.Size()))
		a.screen.Sync()
	}
	return true
}

func (a *app) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		if len(a.profiles) > 0 && !a.custom {
			a.selected = (a.selected + 1) % len(a.profiles)
			a.applySelection()
		}
	case tcell.KeyLeft:
		a.adjustCustom(a.diameter*0.8, a.velocity)
	case tcell.KeyRight:
		a.adjustCustom(a.diameter*1.25, a.velocity)
	case tcell.KeyDown:
		a.adjustCustom(a.diameter, a.velocity-1)
	case tcell.KeyUp:
		a.adjustCustom(a.diameter, a.velocity+1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case '+', '=':
			a.sim.Zoom(-1)
		case '-', '_':
			a.sim.Zoom(1)
		case 'r':
			a.adapter.Apply(a.sim.Reset())
			a.status = ""
		case 'c':
			if len(a.profiles) > 0 {
				a.custom = !a.custom
				a.applySelection()
			}
		}
	}
	return true
}

func (a *app) adjustCustom(diameter, velocity float64) {
	if !a.custom {
		return
	}
	a.diameter = clamp(diameter, minDiameterM, maxDiameterM)
	a.velocity = clamp(velocity, minVelocityKm, maxVelocityKm)
	a.applySelection()
}

func (a *app) applySelection() {
	var (
		p   model.AsteroidProfile
		err error
	)
	if a.custom {
		p, err = a.sim.SetCustomParameters(a.diameter, a.velocity)
	} else if len(a.profiles) > 0 {
		p, err = a.sim.SelectAsteroid(a.profiles[a.selected].ID)
	}
	if err != nil {
		a.status = err.Error()
		return
	}
	a.adapter.SetOrbits(a.catalog.EarthOrbit(), p.TrajectoryPoints)
}

func (a *app) draw() {
	a.adapter.Draw(a.screen, a.sim.Camera(), a.sim.Planet(), a.hudLines())
	a.screen.Show()
}

func (a *app) hudLines() []string {
	mode := "catalog [Tab next, c custom]"
	if a.custom {
		mode = "custom [arrows adjust, c catalog]"
	}
	lines := []string{fmt.Sprintf("Asteroid Impact Simulator  %s  click planet to launch, +/- zoom, r reset, q quit", a.status)}

	info, ok := a.sim.Info()
	if !ok {
		return append(lines, "no asteroid selected")
	}
	p := info.Profile
	lines = append(lines,
		fmt.Sprintf("%s (%s)  mode: %s", p.Name, p.ID, mode),
		fmt.Sprintf("diameter %.0f m  velocity %.2f km/s  energy %.2f kt (~%d Hiroshima bombs)", p.DiameterM, p.VelocityKms, p.ImpactEnergyKt, info.HiroshimaBombs),
		fmt.Sprintf("strategy: %s", info.Strategy.Name),
	)

	if r, ok := a.sim.Report(); ok {
		c := r.Consequences
		lines = append(lines,
			fmt.Sprintf("Impact Report: magnitude %.1f  shaking %s  at %.1f°, %.1f°", c.Magnitude, c.ShakingIntensity, r.LatitudeDeg, r.LongitudeDeg),
			fmt.Sprintf("crater %.2f km  air blast %.2f km (3 psi)", c.CraterDiameterKm, c.AirBlastRadiusKm),
			c.TsunamiWarning,
		)
	}
	return lines
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
