// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Camera    CameraConfig    `yaml:"camera"`
	Accretor  AccretorConfig  `yaml:"accretor"`
	Star      StarConfig      `yaml:"star"`
	Phases    PhasesConfig    `yaml:"phases"`
	Stream    StreamConfig    `yaml:"stream"`
	Disk      DiskConfig      `yaml:"disk"`
	Jets      JetsConfig      `yaml:"jets"`
	Lensing   LensingConfig   `yaml:"lensing"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Frames    FramesConfig    `yaml:"frames"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds the fixed simulation step.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// CameraConfig holds orbit camera defaults.
type CameraConfig struct {
	Distance   float64 `yaml:"distance"`    // Camera distance from the origin
	Focal      float64 `yaml:"focal"`       // Perspective focal length in pixels
	Yaw        float64 `yaml:"yaw"`         // Initial yaw (radians)
	Pitch      float64 `yaml:"pitch"`       // Initial pitch (radians), positive looks down on the disk
	OrbitSpeed float64 `yaml:"orbit_speed"` // Automatic yaw drift (radians per second)
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
}

// AccretorConfig holds central body parameters.
type AccretorConfig struct {
	InitialMass       float64 `yaml:"initial_mass"`
	BaseRadius        float64 `yaml:"base_radius"`        // Dormant radius, also the floor
	GrowthScale       float64 `yaml:"growth_scale"`       // Maximum radius added by feeding
	GrowthMass        float64 `yaml:"growth_mass"`        // Consumed mass for ~63% of GrowthScale
	RadiusSmoothing   float64 `yaml:"radius_smoothing"`   // Per-second approach rate toward target radius
	ActivityGain      float64 `yaml:"activity_gain"`      // Activity added per unit consumed mass
	ActivityDecay     float64 `yaml:"activity_decay"`     // Activity lost per second while feeding
	StabilizeDuration float64 `yaml:"stabilize_duration"` // Seconds for glow to ease to rest
	RestingGlow       float64 `yaml:"resting_glow"`
}

// StarConfig holds disrupted body parameters.
type StarConfig struct {
	InitialMass          float64 `yaml:"initial_mass"`
	Radius               float64 `yaml:"radius"`
	InitialOrbitalRadius float64 `yaml:"initial_orbital_radius"`
	InitialPhi           float64 `yaml:"initial_phi"`
	AngularSpeed         float64 `yaml:"angular_speed"`     // rad/s at the initial orbit and mass
	SpinRate             float64 `yaml:"spin_rate"`         // rad/s
	MinOrbitFactor       float64 `yaml:"min_orbit_factor"`  // Orbit never closer than accretor radius * this
	StretchFactor        float64 `yaml:"stretch_factor"`    // Emission radius growth at full disruption
	MassPerParticle      float64 `yaml:"mass_per_particle"` // Mass shed per emission attempt
	RadialWobble         float64 `yaml:"radial_wobble"`     // Fraction of orbital radius
	AngularWobble        float64 `yaml:"angular_wobble"`    // Radians
	VerticalWobble       float64 `yaml:"vertical_wobble"`   // Fraction of orbital radius
	RadialWobbleFreq     float64 `yaml:"radial_wobble_freq"`
	AngularWobbleFreq    float64 `yaml:"angular_wobble_freq"`
	VerticalWobbleFreq   float64 `yaml:"vertical_wobble_freq"`
}

// PhaseConfig holds parameters for one phase of the encounter.
type PhaseConfig struct {
	Duration   float64 `yaml:"duration"`    // Timed phases only
	DecayRate  float64 `yaml:"decay_rate"`  // Orbital decay rate (1/s)
	Wobble     float64 `yaml:"wobble"`      // Wobble amplitude scale at full progress
	EmitRate   float64 `yaml:"emit_rate"`   // Stream particles per second at full progress
	WobbleBase float64 `yaml:"wobble_base"` // Wobble amplitude scale at zero progress
}

// PhasesConfig holds the encounter timeline.
type PhasesConfig struct {
	Approach PhaseConfig `yaml:"approach"`
	Stretch  PhaseConfig `yaml:"stretch"`
	Disrupt  PhaseConfig `yaml:"disrupt"`
	Accrete  PhaseConfig `yaml:"accrete"`
	Flare    PhaseConfig `yaml:"flare"`

	DisruptReference float64 `yaml:"disrupt_reference"` // Reference duration for event-terminated progress
	FlashDuration    float64 `yaml:"flash_duration"`
}

// StreamConfig holds tidal stream parameters.
type StreamConfig struct {
	MaxParticles    int     `yaml:"max_particles"`
	Lifetime        float64 `yaml:"lifetime"`
	Gravity         float64 `yaml:"gravity"`          // accel = gravity / distance
	Drag            float64 `yaml:"drag"`             // Velocity retained per reference step
	Inheritance     float64 `yaml:"inheritance"`      // Fraction of emitter velocity inherited
	InwardSpeedMin  float64 `yaml:"inward_speed_min"` // Radial kick toward the center
	InwardSpeedMax  float64 `yaml:"inward_speed_max"`
	TangentialSpeed float64 `yaml:"tangential_speed"`
	InnerSideChance float64 `yaml:"inner_side_chance"` // Probability of emitting from the near side
	SpinInfluence   float64 `yaml:"spin_influence"`    // Radians of emission swing from spin
	Jitter          float64 `yaml:"jitter"`            // Positional jitter as a fraction of emitter radius
	SizeMin         float64 `yaml:"size_min"`
	SizeMax         float64 `yaml:"size_max"`
	AccretionFactor float64 `yaml:"accretion_factor"` // Consumption radius = accretor radius * this
	ParticleMass    float64 `yaml:"particle_mass"`    // Mass delivered on consumption
}

// DiskConfig holds accretion disk parameters.
type DiskConfig struct {
	MaxParticles       int     `yaml:"max_particles"`
	InnerFactor        float64 `yaml:"inner_factor"` // k_in
	OuterFactor        float64 `yaml:"outer_factor"` // k_out
	SpawnRate          float64 `yaml:"spawn_rate"`   // Particles per second once feeding
	LifetimeMin        float64 `yaml:"lifetime_min"`
	LifetimeMax        float64 `yaml:"lifetime_max"`
	Kepler             float64 `yaml:"kepler"` // omega = kepler / distance^1.5
	Thickness          float64 `yaml:"thickness"`
	InnerBias          float64 `yaml:"inner_bias"` // Radius sampling exponent (>1 favors the inner edge)
	ActivationDuration float64 `yaml:"activation_duration"`
	Circularize        float64 `yaml:"circularize"`    // Per-second approach of omega to Keplerian
	DecayChance        float64 `yaml:"decay_chance"`   // Base falling probability per second
	DecayFactor        float64 `yaml:"decay_factor"`   // Distance retained per reference step when falling
	FallSpinUp         float64 `yaml:"fall_spin_up"`   // Angular speed multiplier per reference step when falling
	FallFlatten        float64 `yaml:"fall_flatten"`   // Vertical offset retained per reference step when falling
	ConsumeFactor      float64 `yaml:"consume_factor"` // Consumption threshold = accretor radius * this
	CaptureBlend       float64 `yaml:"capture_blend"`  // Weight of Keplerian speed on capture (0.5 = average)
	ParticleMass       float64 `yaml:"particle_mass"`  // Mass delivered on consumption
	SizeMin            float64 `yaml:"size_min"`
	SizeMax            float64 `yaml:"size_max"`
	Doppler            float64 `yaml:"doppler"`           // Brightness swing from approach/recession
	FadeIn             float64 `yaml:"fade_in"`           // Seconds
	FadeOutFraction    float64 `yaml:"fade_out_fraction"` // Final fraction of lifetime spent fading
}

// JetsConfig holds polar jet parameters.
type JetsConfig struct {
	MaxParticles       int     `yaml:"max_particles"`
	EmitRate           float64 `yaml:"emit_rate"`
	Speed              float64 `yaml:"speed"`
	Spread             float64 `yaml:"spread"` // Lateral speed as a fraction of Speed
	Lifetime           float64 `yaml:"lifetime"`
	Size               float64 `yaml:"size"`
	ActivationDuration float64 `yaml:"activation_duration"`
	RestingIntensity   float64 `yaml:"resting_intensity"`
}

// LensingConfig holds lensing projector constants.
type LensingConfig struct {
	Falloff    float64 `yaml:"falloff"`
	RingFactor float64 `yaml:"ring_factor"`
	MinRadius  float64 `yaml:"min_radius"` // Substituted when the planar radius is ~0
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// FramesConfig holds headless frame export parameters.
type FramesConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Every  int `yaml:"every"` // Export every N ticks
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ReferenceStep float64 // Step that per-tick factors (drag, decay) are tuned for
	TicksPerStats int     // Telemetry.StatsWindow in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Physics.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT))
	}
	if c.Disk.OuterFactor <= c.Disk.InnerFactor {
		errs = append(errs, fmt.Errorf("disk.outer_factor (%v) must exceed disk.inner_factor (%v)",
			c.Disk.OuterFactor, c.Disk.InnerFactor))
	}
	if c.Stream.MaxParticles <= 0 {
		errs = append(errs, errors.New("stream.max_particles must be positive"))
	}
	if c.Disk.MaxParticles <= 0 {
		errs = append(errs, errors.New("disk.max_particles must be positive"))
	}
	if c.Jets.MaxParticles < 0 {
		errs = append(errs, errors.New("jets.max_particles must not be negative"))
	}
	if c.Accretor.BaseRadius <= 0 {
		errs = append(errs, errors.New("accretor.base_radius must be positive"))
	}
	if c.Star.InitialMass <= 0 || c.Star.MassPerParticle <= 0 {
		errs = append(errs, errors.New("star.initial_mass and star.mass_per_particle must be positive"))
	}
	for name, p := range map[string]PhaseConfig{
		"approach": c.Phases.Approach,
		"stretch":  c.Phases.Stretch,
		"accrete":  c.Phases.Accrete,
		"flare":    c.Phases.Flare,
	} {
		if p.Duration <= 0 {
			errs = append(errs, fmt.Errorf("phases.%s.duration must be positive", name))
		}
	}
	if c.Phases.DisruptReference <= 0 {
		errs = append(errs, errors.New("phases.disrupt_reference must be positive"))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ReferenceStep = 1.0 / 60.0

	ticks := int(c.Telemetry.StatsWindow / c.Physics.DT)
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.TicksPerStats = ticks
}

// WithStatsWindow returns a copy of c that flushes telemetry every sec seconds.
func (c *Config) WithStatsWindow(sec float64) *Config {
	cp := *c
	cp.Telemetry.StatsWindow = sec
	cp.computeDerived()
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
