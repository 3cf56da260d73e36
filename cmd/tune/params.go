package main

import (
	"github.com/pthm-cable/tidal/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of stream and disk parameters,
// with defaults taken from base.
func NewParamVector(base *config.Config) *ParamVector {
	specs := []ParamSpec{
		{
			Name: "stream_gravity", Path: "stream.gravity", Min: 5000, Max: 60000,
			get: func(c *config.Config) float64 { return c.Stream.Gravity },
			set: func(c *config.Config, v float64) { c.Stream.Gravity = v },
		},
		{
			Name: "stream_drag", Path: "stream.drag", Min: 0.97, Max: 0.9999,
			get: func(c *config.Config) float64 { return c.Stream.Drag },
			set: func(c *config.Config, v float64) { c.Stream.Drag = v },
		},
		{
			Name: "stream_inheritance", Path: "stream.inheritance", Min: 0.1, Max: 1.0,
			get: func(c *config.Config) float64 { return c.Stream.Inheritance },
			set: func(c *config.Config, v float64) { c.Stream.Inheritance = v },
		},
		{
			Name: "stream_inward_min", Path: "stream.inward_speed_min", Min: 0, Max: 40,
			get: func(c *config.Config) float64 { return c.Stream.InwardSpeedMin },
			set: func(c *config.Config, v float64) { c.Stream.InwardSpeedMin = v },
		},
		{
			Name: "stream_inward_max", Path: "stream.inward_speed_max", Min: 10, Max: 120,
			get: func(c *config.Config) float64 { return c.Stream.InwardSpeedMax },
			set: func(c *config.Config, v float64) { c.Stream.InwardSpeedMax = v },
		},
		{
			Name: "stream_tangential", Path: "stream.tangential_speed", Min: 0, Max: 80,
			get: func(c *config.Config) float64 { return c.Stream.TangentialSpeed },
			set: func(c *config.Config, v float64) { c.Stream.TangentialSpeed = v },
		},
		{
			Name: "disk_capture_blend", Path: "disk.capture_blend", Min: 0, Max: 1,
			get: func(c *config.Config) float64 { return c.Disk.CaptureBlend },
			set: func(c *config.Config, v float64) { c.Disk.CaptureBlend = v },
		},
		{
			Name: "disk_circularize", Path: "disk.circularize", Min: 0.05, Max: 4,
			get: func(c *config.Config) float64 { return c.Disk.Circularize },
			set: func(c *config.Config, v float64) { c.Disk.Circularize = v },
		},
		{
			Name: "disk_decay_chance", Path: "disk.decay_chance", Min: 0.01, Max: 0.5,
			get: func(c *config.Config) float64 { return c.Disk.DecayChance },
			set: func(c *config.Config, v float64) { c.Disk.DecayChance = v },
		},
		{
			Name: "disrupt_emit_rate", Path: "phases.disrupt.emit_rate", Min: 50, Max: 600,
			get: func(c *config.Config) float64 { return c.Phases.Disrupt.EmitRate },
			set: func(c *config.Config, v float64) { c.Phases.Disrupt.EmitRate = v },
		},
	}

	pv := &ParamVector{Specs: specs}
	for i := range pv.Specs {
		pv.Specs[i].Default = pv.Specs[i].clamp(pv.Specs[i].get(base))
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = spec.clamp(v[i])
	}
	return clamped
}

func (s ParamSpec) clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// ApplyToConfig applies clamped parameter values to cfg. The inward speed
// range is kept ordered.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	if cfg.Stream.InwardSpeedMax < cfg.Stream.InwardSpeedMin {
		cfg.Stream.InwardSpeedMin, cfg.Stream.InwardSpeedMax = cfg.Stream.InwardSpeedMax, cfg.Stream.InwardSpeedMin
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
