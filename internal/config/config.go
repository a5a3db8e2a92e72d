package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. IMPACT_SIM_FLIGHTDURATION.
const EnvPrefix = "IMPACT"

// Config is the resolved simulator configuration.
type Config struct {
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Sim      SimConfig      `mapstructure:"sim"`
	Planet   PlanetConfig   `mapstructure:"planet"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Viewport ViewportConfig `mapstructure:"viewport"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Neo      NeoConfig      `mapstructure:"neo"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type SimConfig struct {
	FlightDuration time.Duration `mapstructure:"flightDuration"`
	DensityKgM3    float64       `mapstructure:"densityKgM3"`
	FrameInterval  time.Duration `mapstructure:"frameInterval"`
	RunFor         time.Duration `mapstructure:"runFor"`
	Seed           int64         `mapstructure:"seed"`
}

type PlanetConfig struct {
	Radius       float64 `mapstructure:"radius"`
	RotationStep float64 `mapstructure:"rotationStep"`
}

type CameraConfig struct {
	Distance    float64 `mapstructure:"distance"`
	FovDeg      float64 `mapstructure:"fovDeg"`
	Near        float64 `mapstructure:"near"`
	Far         float64 `mapstructure:"far"`
	MinDistance float64 `mapstructure:"minDistance"`
	MaxDistance float64 `mapstructure:"maxDistance"`
}

type ViewportConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type NeoConfig struct {
	APIKey      string        `mapstructure:"apiKey"`
	BaseURL     string        `mapstructure:"baseURL"`
	Output      string        `mapstructure:"output"`
	OrbitPoints int           `mapstructure:"orbitPoints"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// TracingConfig selects the span exporter. Exporter is stdout or otlp;
// Endpoint only applies to otlp.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"serviceName"`
	Exporter    string  `mapstructure:"exporter"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sampleRatio"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "scene_data.json")

	v.SetDefault("sim.flightDuration", "2s")
	v.SetDefault("sim.densityKgM3", 3000.0)
	v.SetDefault("sim.frameInterval", "16ms")
	v.SetDefault("sim.runFor", "5s")
	v.SetDefault("sim.seed", 0)

	v.SetDefault("planet.radius", 4.0)
	v.SetDefault("planet.rotationStep", 0.0005)

	v.SetDefault("camera.distance", 10.0)
	v.SetDefault("camera.fovDeg", 75.0)
	v.SetDefault("camera.near", 0.1)
	v.SetDefault("camera.far", 1000.0)
	v.SetDefault("camera.minDistance", 4.5)
	v.SetDefault("camera.maxDistance", 20.0)

	v.SetDefault("viewport.width", 1280.0)
	v.SetDefault("viewport.height", 720.0)

	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("neo.apiKey", "DEMO_KEY")
	v.SetDefault("neo.baseURL", "https://api.nasa.gov/neo/rest/v1")
	v.SetDefault("neo.output", "scene_data.json")
	v.SetDefault("neo.orbitPoints", 100)
	v.SetDefault("neo.timeout", "30s")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "impact-simulator")
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.sampleRatio", 1.0)
}

// Load resolves configuration from defaults, the JSON file at path (when
// path is non-empty) and IMPACT_* environment variables, in increasing
// precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Sim.FlightDuration <= 0 {
		errs = append(errs, fmt.Errorf("sim.flightDuration must be positive, got %s", c.Sim.FlightDuration))
	}
	if c.Sim.DensityKgM3 <= 0 {
		errs = append(errs, fmt.Errorf("sim.densityKgM3 must be positive, got %v", c.Sim.DensityKgM3))
	}
	if c.Sim.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("sim.frameInterval must be positive, got %s", c.Sim.FrameInterval))
	}
	if c.Planet.Radius <= 0 {
		errs = append(errs, fmt.Errorf("planet.radius must be positive, got %v", c.Planet.Radius))
	}
	if c.Camera.MinDistance > c.Camera.MaxDistance {
		errs = append(errs, fmt.Errorf("camera.minDistance %v exceeds camera.maxDistance %v", c.Camera.MinDistance, c.Camera.MaxDistance))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sampleRatio must be within [0,1], got %v", c.Tracing.SampleRatio))
	}
	switch strings.ToLower(c.Tracing.Exporter) {
	case "stdout", "otlp":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter must be stdout or otlp, got %q", c.Tracing.Exporter))
	}
	return errors.Join(errs...)
}
