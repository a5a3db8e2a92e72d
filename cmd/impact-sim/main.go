package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalsfoundry/impact-simulator/core"
	"github.com/signalsfoundry/impact-simulator/internal/config"
	"github.com/signalsfoundry/impact-simulator/internal/logging"
	"github.com/signalsfoundry/impact-simulator/internal/observability"
	"github.com/signalsfoundry/impact-simulator/kb"
	"github.com/signalsfoundry/impact-simulator/model"
	"github.com/signalsfoundry/impact-simulator/timectrl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, logging.NewFromEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "impact-sim: %v\n", err)
		os.Exit(1)
	}
}

// result is what the headless run prints.
type result struct {
	Info    model.InfoPanel     `json:"info"`
	Report  *model.ImpactReport `json:"report,omitempty"`
	Frames  int                 `json:"frames"`
	Elapsed string              `json:"elapsed"`
}

func run(ctx context.Context, args []string, stdout io.Writer, log logging.Logger) error {
	fs := flag.NewFlagSet("impact-sim", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a JSON config file")
	catalogPath := fs.String("catalog", "", "Path to the catalog document (overrides catalog.path)")
	asteroidID := fs.String("asteroid", "", "ID of the catalogued asteroid to launch (default: first in catalog)")
	diameter := fs.Float64("diameter", 0, "Custom asteroid diameter in metres (with -velocity)")
	velocity := fs.Float64("velocity", 0, "Custom asteroid velocity in km/s (with -diameter)")
	clickX := fs.Float64("x", -1, "Click x in viewport pixels (default: centre)")
	clickY := fs.Float64("y", -1, "Click y in viewport pixels (default: centre)")
	metricsAddr := fs.String("metrics-addr", "", "HTTP address for Prometheus /metrics (overrides metrics.addr; empty disables)")
	runFor := fs.Duration("run-for", 0, "Maximum frame time to simulate (overrides sim.runFor)")
	realtime := fs.Bool("realtime", false, "Pace frames against the wall clock instead of stepping back to back")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}
	if *runFor > 0 {
		cfg.Sim.RunFor = *runFor
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["metrics-addr"] {
		cfg.Metrics.Addr = *metricsAddr
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, os.Stderr, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewSimCollector(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	if metricsSrv := serveMetrics(cfg.Metrics.Addr, collector, log); metricsSrv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	catalog := kb.NewCatalog()
	defer watchCatalog(ctx, catalog, collector, log)()
	if err := loadCatalog(ctx, log, catalog, cfg.Catalog.Path, cfg.Sim.DensityKgM3); err != nil {
		return err
	}

	sim := newSimulation(cfg, catalog, log, collector)

	if err := selectProfile(sim, catalog, *asteroidID, *diameter, *velocity); err != nil {
		return err
	}
	info, _ := sim.Info()
	log.Info(ctx, "asteroid selected",
		logging.String("asteroid_id", info.Profile.ID),
		logging.Float64("energy_kt", info.Profile.ImpactEnergyKt),
		logging.String("strategy", info.Strategy.Name),
	)

	var report *model.ImpactReport
	sim.AddReportListener(func(ctx context.Context, r model.ImpactReport) {
		report = &r
		if runLog := logging.LoggerFromContext(ctx); runLog != nil {
			runLog.Info(ctx, "impact report ready",
				logging.Float64("lat", r.LatitudeDeg),
				logging.Float64("lon", r.LongitudeDeg),
			)
		}
	})

	x, y := *clickX, *clickY
	vp := sim.Camera().Viewport
	if x < 0 {
		x = vp.Width / 2
	}
	if y < 0 {
		y = vp.Height / 2
	}
	if started, _ := sim.Click(ctx, core.PointerEvent{X: x, Y: y}); !started {
		return fmt.Errorf("click at (%.0f, %.0f) missed the planet", x, y)
	}

	mode := timectrl.Accelerated
	if *realtime {
		mode = timectrl.RealTime
	}
	clockCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	clock := timectrl.NewFrameClock(cfg.Sim.FrameInterval, mode)
	clock.AddListener(func(dt time.Duration) {
		sim.Frame(clockCtx, dt)
		if sim.Phase() == core.PhaseIdle {
			cancel()
		}
	})

	log.Info(ctx, "running frames",
		logging.String("mode", mode.String()),
		logging.String("interval", cfg.Sim.FrameInterval.String()),
		logging.String("run_for", cfg.Sim.RunFor.String()),
	)
	<-clock.Start(clockCtx, cfg.Sim.RunFor)

	if report == nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("no impact within %s of frame time", cfg.Sim.RunFor)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result{
		Info:    info,
		Report:  report,
		Frames:  clock.Frames(),
		Elapsed: clock.Elapsed().String(),
	})
}

// watchCatalog keeps the catalog size gauge in step with the catalog. It
// returns the unsubscribe function.
func watchCatalog(ctx context.Context, catalog *kb.Catalog, collector *observability.SimCollector, log logging.Logger) func() {
	collector.SetCatalogSize(catalog.Len())
	return catalog.Subscribe(func(ev kb.Event) {
		switch ev.Type {
		case kb.EventProfileAdded:
			collector.SetCatalogSize(catalog.Len())
		case kb.EventEarthOrbitSet:
			log.Debug(ctx, "earth orbit loaded", logging.Int("samples", ev.Samples))
		}
	})
}

func newSimulation(cfg *config.Config, catalog *kb.Catalog, log logging.Logger, metrics core.MetricsRecorder) *core.Simulation {
	settings := core.DefaultSettings()
	settings.FlightDuration = cfg.Sim.FlightDuration
	settings.DensityKgM3 = cfg.Sim.DensityKgM3
	settings.PlanetRadius = cfg.Planet.Radius
	settings.RotationStep = cfg.Planet.RotationStep
	settings.MinCameraDistance = cfg.Camera.MinDistance
	settings.MaxCameraDistance = cfg.Camera.MaxDistance

	cam := core.DefaultCamera(core.Viewport{Width: cfg.Viewport.Width, Height: cfg.Viewport.Height})
	cam.FovYDeg = cfg.Camera.FovDeg
	cam.Near = cfg.Camera.Near
	cam.Far = cfg.Camera.Far
	cam = cam.WithDistance(cfg.Camera.Distance, cfg.Camera.MinDistance, cfg.Camera.MaxDistance)

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return core.NewSimulation(catalog,
		core.WithSettings(settings),
		core.WithCamera(cam),
		core.WithLogger(log),
		core.WithMetricsRecorder(metrics),
		core.WithRand(rand.New(rand.NewSource(seed))),
	)
}

func selectProfile(sim *core.Simulation, catalog *kb.Catalog, id string, diameter, velocity float64) error {
	switch {
	case diameter != 0 || velocity != 0:
		if _, err := sim.SetCustomParameters(diameter, velocity); err != nil {
			return fmt.Errorf("custom asteroid: %w", err)
		}
	case id != "":
		if _, err := sim.SelectAsteroid(id); err != nil {
			return err
		}
	default:
		if profiles := catalog.ListProfiles(); len(profiles) > 0 {
			if _, err := sim.SelectAsteroid(profiles[0].ID); err != nil {
				return err
			}
		}
	}
	_, err := sim.RequireProfile()
	return err
}

func loadCatalog(ctx context.Context, log logging.Logger, catalog *kb.Catalog, path string, density float64) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn(ctx, "catalog not found, only custom asteroids available", logging.String("path", path))
			return nil
		}
		return fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()

	summary, err := core.LoadCatalog(catalog, f, density)
	if err != nil {
		return fmt.Errorf("load catalog %q: %w", path, err)
	}
	log.Info(ctx, "loaded asteroid catalog",
		logging.String("path", path),
		logging.Int("asteroids", len(summary.ProfileIDs)),
		logging.Int("derived_energy", len(summary.DerivedEnergyIDs)),
		logging.Int("earth_orbit_samples", summary.EarthOrbitSamples),
	)
	return nil
}

func serveMetrics(addr string, collector *observability.SimCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
