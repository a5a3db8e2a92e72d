package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/impact-simulator/internal/logging"
	"github.com/signalsfoundry/impact-simulator/kb"
	"github.com/signalsfoundry/impact-simulator/model"
)

var (
	// ErrUnknownAsteroid is returned when a selection names no catalogued
	// asteroid.
	ErrUnknownAsteroid = errors.New("unknown asteroid")
	// ErrNoSelection is returned by RequireProfile when nothing is selected.
	ErrNoSelection = errors.New("no asteroid selected")
)

// MetricsRecorder receives simulation events. observability.SimCollector
// implements it.
type MetricsRecorder interface {
	RunStarted()
	RunDiscarded()
	RunCompleted()
	ReportGenerated(energyKt float64)
	RayMissed()
	FrameObserved(dt time.Duration)
	SetActiveRuns(n int)
}

type noopMetrics struct{}

func (noopMetrics) RunStarted()                 {}
func (noopMetrics) RunDiscarded()               {}
func (noopMetrics) RunCompleted()               {}
func (noopMetrics) ReportGenerated(float64)     {}
func (noopMetrics) RayMissed()                  {}
func (noopMetrics) FrameObserved(time.Duration) {}
func (noopMetrics) SetActiveRuns(int)           {}

// Settings are the tunables of a Simulation.
type Settings struct {
	FlightDuration    time.Duration
	DensityKgM3       float64
	PlanetRadius      float64
	RotationStep      float64 // radians per frame
	MinCameraDistance float64
	MaxCameraDistance float64
	// LaunchOffset is where projectiles start relative to the camera,
	// before the random jitter is applied.
	LaunchOffset Vec3
	// LaunchJitter is the half-width of the uniform jitter on X and Y.
	LaunchJitter float64
}

// DefaultSettings match the scene the simulator was designed around.
func DefaultSettings() Settings {
	return Settings{
		FlightDuration:    DefaultFlightDuration,
		DensityKgM3:       DefaultDensityKgM3,
		PlanetRadius:      4,
		RotationStep:      0.0005,
		MinCameraDistance: 4.5,
		MaxCameraDistance: 20,
		LaunchOffset:      Vec3{Z: -15},
		LaunchJitter:      5,
	}
}

// ReportListener is called once per run when the projectile reaches the
// surface.
type ReportListener func(ctx context.Context, report model.ImpactReport)

// Option customises a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Simulation) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Simulation) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRand sets the source used for launch jitter.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithTracer sets the tracer used for report spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulation) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithSettings replaces the default settings.
func WithSettings(cfg Settings) Option {
	return func(s *Simulation) { s.settings = cfg }
}

// WithCamera replaces the default camera.
func WithCamera(c Camera) Option {
	return func(s *Simulation) { s.camera = c }
}

// Simulation is the single-session simulation context: the selected profile,
// the active run, the surface marker and the planet's rotation latch. All
// methods are meant to be called from one goroutine (the frame loop and the
// input handlers it serialises).
type Simulation struct {
	catalog  *kb.Catalog
	settings Settings

	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer
	rng     *rand.Rand

	handles  *Handles
	animator *Animator
	targeter *Targeter
	planet   Planet
	camera   Camera

	profile    *model.AsteroidProfile
	lastReport *model.ImpactReport

	runCtx context.Context
	runLog logging.Logger

	listeners []ReportListener
}

// NewSimulation constructs an idle simulation over catalog.
func NewSimulation(catalog *kb.Catalog, opts ...Option) *Simulation {
	if catalog == nil {
		catalog = kb.NewCatalog()
	}
	s := &Simulation{
		catalog:  catalog,
		settings: DefaultSettings(),
		log:      logging.Noop(),
		metrics:  noopMetrics{},
		tracer:   otel.Tracer("github.com/signalsfoundry/impact-simulator/core"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		handles:  NewHandles(),
		camera:   DefaultCamera(Viewport{Width: 1280, Height: 720}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.settings.FlightDuration <= 0 {
		s.settings.FlightDuration = DefaultFlightDuration
	}
	if s.settings.DensityKgM3 <= 0 {
		s.settings.DensityKgM3 = DefaultDensityKgM3
	}
	s.animator = NewAnimator(s.handles)
	s.targeter = NewTargeter(s.handles)
	s.planet = Planet{Sphere: Sphere{Radius: s.settings.PlanetRadius}}
	return s
}

// AddReportListener registers fn to receive impact reports.
func (s *Simulation) AddReportListener(fn ReportListener) {
	s.listeners = append(s.listeners, fn)
}

// Catalog returns the backing catalog.
func (s *Simulation) Catalog() *kb.Catalog { return s.catalog }

// Handles exposes the renderable allocator.
func (s *Simulation) Handles() *Handles { return s.handles }

// Planet returns a copy of the planet state.
func (s *Simulation) Planet() Planet { return s.planet }

// Camera returns the current camera.
func (s *Simulation) Camera() Camera { return s.camera }

// SetViewport resizes the camera's viewport.
func (s *Simulation) SetViewport(vp Viewport) { s.camera.Viewport = vp }

// Phase returns the animation phase.
func (s *Simulation) Phase() Phase { return s.animator.Phase() }

// ActiveRun returns a snapshot of the run in flight.
func (s *Simulation) ActiveRun() (ImpactRun, bool) { return s.animator.Run() }

// Marker returns the current surface marker.
func (s *Simulation) Marker() (Handle, Vec3, bool) { return s.targeter.Marker() }

// SelectAsteroid makes the catalogued asteroid id current.
func (s *Simulation) SelectAsteroid(id string) (model.AsteroidProfile, error) {
	p, ok := s.catalog.GetProfile(id)
	if !ok {
		return model.AsteroidProfile{}, fmt.Errorf("select %q: %w", id, ErrUnknownAsteroid)
	}
	s.profile = &p
	return p, nil
}

// SetCustomParameters replaces the current profile with a custom one
// derived from slider values.
func (s *Simulation) SetCustomParameters(diameterM, velocityKms float64) (model.AsteroidProfile, error) {
	p, err := NewCustomProfile(diameterM, velocityKms, s.settings.DensityKgM3)
	if err != nil {
		return model.AsteroidProfile{}, err
	}
	s.profile = &p
	return p, nil
}

// CurrentProfile returns the selected profile.
func (s *Simulation) CurrentProfile() (model.AsteroidProfile, bool) {
	if s.profile == nil {
		return model.AsteroidProfile{}, false
	}
	return *s.profile, true
}

// RequireProfile is CurrentProfile for callers that treat a missing
// selection as an error.
func (s *Simulation) RequireProfile() (model.AsteroidProfile, error) {
	p, ok := s.CurrentProfile()
	if !ok {
		return model.AsteroidProfile{}, ErrNoSelection
	}
	return p, nil
}

// Strategy returns the recommended deflection for the selected profile.
func (s *Simulation) Strategy() (model.DeflectionStrategy, bool) {
	if s.profile == nil {
		return model.DeflectionStrategy{}, false
	}
	return SelectStrategy(*s.profile), true
}

// Info returns the info panel for the selected profile.
func (s *Simulation) Info() (model.InfoPanel, bool) {
	if s.profile == nil {
		return model.InfoPanel{}, false
	}
	return Info(*s.profile), true
}

// Report returns the most recent impact report.
func (s *Simulation) Report() (model.ImpactReport, bool) {
	if s.lastReport == nil {
		return model.ImpactReport{}, false
	}
	return *s.lastReport, true
}

// Click handles a pointer click. A click that hits the planet places the
// marker and, if a profile is selected, starts a new run replacing any run
// in flight. The boolean reports whether a run began.
func (s *Simulation) Click(ctx context.Context, ev PointerEvent) (bool, []RenderInstruction) {
	point, out, ok := s.targeter.ResolveImpactPoint(ev, s.camera, &s.planet)
	if !ok {
		if !ev.OverUI {
			s.metrics.RayMissed()
			s.log.Debug(ctx, "click missed planet",
				logging.Float64("x", ev.X),
				logging.Float64("y", ev.Y),
			)
		}
		return false, nil
	}

	if s.profile == nil {
		s.log.Debug(ctx, "click ignored, no asteroid selected")
		return false, out
	}

	if _, active := s.animator.Run(); active {
		s.metrics.RunDiscarded()
		s.runLogger().Info(s.runContext(ctx), "impact run superseded")
	}

	launch := Launch{
		Start:            s.launchPosition(),
		End:              point,
		Duration:         s.settings.FlightDuration,
		ProjectileRadius: ProjectileRadius(s.profile.DiameterM),
		PlanetCenter:     s.planet.Center,
	}
	instr, err := s.animator.Start(launch)
	if err != nil {
		s.log.Error(ctx, "failed to start impact run", logging.Err(err))
		return false, out
	}

	s.runCtx, s.runLog = logging.WithRunLogger(logging.ContextWithRunID(ctx, ""), s.log)
	s.metrics.RunStarted()
	s.metrics.SetActiveRuns(1)
	s.runLog.Info(s.runCtx, "impact run started",
		logging.String("asteroid_id", s.profile.ID),
		logging.Any("impact_point", point),
		logging.Float64("duration_s", launch.Duration.Seconds()),
	)
	return true, append(out, instr...)
}

// Frame advances the simulation by dt: spins the planet unless latched and
// steps the active run. The report is produced on the frame the projectile
// lands.
func (s *Simulation) Frame(ctx context.Context, dt time.Duration) []RenderInstruction {
	s.metrics.FrameObserved(dt)

	var out []RenderInstruction
	if !s.planet.RotationPaused {
		s.planet.RotationY += s.settings.RotationStep
		out = append(out, RenderInstruction{Op: OpRotate, Kind: KindPlanet, RotationY: s.planet.RotationY})
	}

	res := s.animator.Step(dt)
	out = append(out, res.Instructions...)

	if res.Impacted {
		s.produceReport(s.runContext(ctx), res.Run.EndPosition)
	}
	if res.Cleared {
		s.metrics.RunCompleted()
		s.metrics.SetActiveRuns(0)
		s.runLogger().Info(s.runContext(ctx), "impact run cleared", logging.Float64("progress", res.Run.Progress))
		s.runCtx, s.runLog = nil, nil
	}
	return out
}

// Reset discards the run, marker, latch and report, keeping the selected
// profile.
func (s *Simulation) Reset() []RenderInstruction {
	out := s.animator.Discard()
	if len(out) > 0 {
		s.metrics.RunDiscarded()
		s.metrics.SetActiveRuns(0)
	}
	out = append(out, s.targeter.ClearMarker()...)
	s.planet.RotationPaused = false
	s.lastReport = nil
	s.runCtx, s.runLog = nil, nil
	return out
}

// Zoom moves the camera delta units towards (negative) or away from
// (positive) the planet within the configured limits.
func (s *Simulation) Zoom(delta float64) {
	s.camera = s.camera.WithDistance(s.camera.Distance()+delta, s.settings.MinCameraDistance, s.settings.MaxCameraDistance)
}

// ProjectileRadius sizes the projectile from the asteroid diameter on a log
// scale, never smaller than 0.1 scene units.
func ProjectileRadius(diameterM float64) float64 {
	if diameterM <= 0 {
		return 0.1
	}
	return math.Max(0.1, math.Log10(diameterM)/10)
}

func (s *Simulation) produceReport(ctx context.Context, point Vec3) {
	log := s.runLogger()
	if s.profile == nil {
		log.Warn(ctx, "impact reached with no asteroid selected; no report")
		return
	}

	ctx, span := s.tracer.Start(ctx, "impact.report")
	defer span.End()

	profile := *s.profile
	lat, lon := SurfaceLatLon(point, s.planet.Sphere, s.planet.RotationY)
	report := model.ImpactReport{
		Profile:      profile,
		Consequences: ComputeImpactConsequences(profile),
		Point:        point.Point(),
		LatitudeDeg:  lat,
		LongitudeDeg: lon,
	}
	s.lastReport = &report

	span.SetAttributes(
		attribute.String("asteroid.id", profile.ID),
		attribute.Float64("impact.energy_kt", profile.ImpactEnergyKt),
		attribute.Float64("impact.magnitude", report.Consequences.Magnitude),
	)
	s.metrics.ReportGenerated(profile.ImpactEnergyKt)
	log.Info(ctx, "impact reached",
		logging.String("asteroid_id", profile.ID),
		logging.Float64("magnitude", report.Consequences.Magnitude),
		logging.String("intensity", string(report.Consequences.ShakingIntensity)),
		logging.Float64("lat", lat),
		logging.Float64("lon", lon),
	)

	for _, fn := range s.listeners {
		fn(ctx, report)
	}
}

func (s *Simulation) launchPosition() Vec3 {
	j := s.settings.LaunchJitter
	jitter := Vec3{
		X: s.rng.Float64()*2*j - j,
		Y: s.rng.Float64()*2*j - j,
	}
	return s.camera.Position.Add(s.settings.LaunchOffset).Add(jitter)
}

func (s *Simulation) runLogger() logging.Logger {
	if s.runLog != nil {
		return s.runLog
	}
	return s.log
}

// runContext carries the active run's ID and logger over to ctx, so report
// listeners can log against the run.
func (s *Simulation) runContext(ctx context.Context) context.Context {
	if s.runCtx == nil {
		return ctx
	}
	if id := logging.RunIDFromContext(s.runCtx); id != "" {
		ctx = logging.ContextWithRunID(ctx, id)
	}
	if s.runLog != nil {
		ctx = logging.ContextWithLogger(ctx, s.runLog)
	}
	return ctx
}
