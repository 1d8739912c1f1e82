package matching

import (
	"fmt"
	"math"
)

// Matcher names, in ascending priority order. The names are stable wire
// values: they appear in result metadata and in stored profiles.
const (
	MatcherTiming           = "timing"
	MatcherEarlyDeparture   = "early_departure"
	MatcherCapacity         = "capacity"
	MatcherRouteEfficiency  = "route_efficiency"
	MatcherDriverPreference = "driver_preference"
	MatcherDetour           = "detour"
	MatcherGender           = "gender"
	MatcherAge              = "age"
)

// DefaultPriorityOrder returns the matcher evaluation order used when a run
// does not override it.
func DefaultPriorityOrder() []string {
	return []string{
		MatcherTiming,
		MatcherEarlyDeparture,
		MatcherCapacity,
		MatcherRouteEfficiency,
		MatcherDriverPreference,
		MatcherDetour,
		MatcherGender,
		MatcherAge,
	}
}

// knownMatchers guards priority-order overrides against typos.
var knownMatchers = map[string]bool{
	MatcherTiming:           true,
	MatcherEarlyDeparture:   true,
	MatcherCapacity:         true,
	MatcherRouteEfficiency:  true,
	MatcherDriverPreference: true,
	MatcherDetour:           true,
	MatcherGender:           true,
	MatcherAge:              true,
}

// Weights blends the individual matcher scores into the composite score.
// EarlyDeparture carries weight 0 by default: the timing matcher already
// hard-partitions early leavers, so the separate matcher only contributes
// when explicitly weighted.
type Weights struct {
	RouteEfficiency  float64 `json:"routeEfficiency"`
	Detour           float64 `json:"detour"`
	GenderMatch      float64 `json:"genderMatch"`
	AgeMatch         float64 `json:"ageMatch"`
	DriverPreference float64 `json:"driverPreference"`
	EarlyDeparture   float64 `json:"earlyDeparture"`
}

// Sum returns the total of all weight fields.
func (w Weights) Sum() float64 {
	return w.RouteEfficiency + w.Detour + w.GenderMatch + w.AgeMatch +
		w.DriverPreference + w.EarlyDeparture
}

// TimingConfig tunes the travel-time model.
type TimingConfig struct {
	TrafficBufferMultiplier float64 `json:"trafficBufferMultiplier"`
	LoadTimeMinutes         float64 `json:"loadTimeMinutes"`
}

// MatchingConfig is the effective configuration of one matching run.
// MaxDetourMiles is a scoring signal for outbound runs and a hard cap for
// inbound runs.
type MatchingConfig struct {
	MaxDetourMiles          float64      `json:"maxDetourMiles"`
	EnforceGenderPreference bool         `json:"enforceGenderPreference"`
	GroupByAgeRange         int          `json:"groupByAgeRange"`
	Timing                  TimingConfig `json:"timing"`
	Weights                 Weights      `json:"weights"`
	PriorityOrder           []string     `json:"priorityOrder,omitempty"`
}

// DefaultMatchingConfig returns the tuned defaults.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		MaxDetourMiles:          5.0,
		EnforceGenderPreference: false,
		GroupByAgeRange:         10,
		Timing: TimingConfig{
			TrafficBufferMultiplier: 1.3,
			LoadTimeMinutes:         3,
		},
		Weights: Weights{
			RouteEfficiency:  0.30,
			Detour:           0.25,
			GenderMatch:      0.20,
			AgeMatch:         0.15,
			DriverPreference: 0.10,
			EarlyDeparture:   0.00,
		},
		PriorityOrder: DefaultPriorityOrder(),
	}
}

// weightSumTolerance is how far the weight sum may drift from 1.0 when a
// configuration is persisted.
const weightSumTolerance = 0.01

// Validate checks the invariants enforced when a configuration is saved.
// Per-run overrides are not re-validated against the sum constraint.
func (c MatchingConfig) Validate() error {
	if c.MaxDetourMiles <= 0 {
		return fmt.Errorf("maxDetourMiles must be positive, got %v", c.MaxDetourMiles)
	}
	if c.GroupByAgeRange <= 0 {
		return fmt.Errorf("groupByAgeRange must be positive, got %d", c.GroupByAgeRange)
	}
	if c.Timing.TrafficBufferMultiplier <= 0 {
		return fmt.Errorf("trafficBufferMultiplier must be positive, got %v", c.Timing.TrafficBufferMultiplier)
	}
	if c.Timing.LoadTimeMinutes < 0 {
		return fmt.Errorf("loadTimeMinutes must not be negative, got %v", c.Timing.LoadTimeMinutes)
	}
	for name, w := range map[string]float64{
		"routeEfficiency":  c.Weights.RouteEfficiency,
		"detour":           c.Weights.Detour,
		"genderMatch":      c.Weights.GenderMatch,
		"ageMatch":         c.Weights.AgeMatch,
		"driverPreference": c.Weights.DriverPreference,
		"earlyDeparture":   c.Weights.EarlyDeparture,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("weight %s must be within [0,1], got %v", name, w)
		}
	}
	if sum := c.Weights.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0 within %v, got %v", weightSumTolerance, sum)
	}
	for _, name := range c.PriorityOrder {
		if !knownMatchers[name] {
			return fmt.Errorf("unknown matcher %q in priority order", name)
		}
	}
	return nil
}

// WeightOverrides carries partial weight replacements. Nil fields keep the
// base value.
type WeightOverrides struct {
	RouteEfficiency  *float64 `json:"routeEfficiency,omitempty"`
	Detour           *float64 `json:"detour,omitempty"`
	GenderMatch      *float64 `json:"genderMatch,omitempty"`
	AgeMatch         *float64 `json:"ageMatch,omitempty"`
	DriverPreference *float64 `json:"driverPreference,omitempty"`
	EarlyDeparture   *float64 `json:"earlyDeparture,omitempty"`
}

// TimingOverrides carries partial timing replacements.
type TimingOverrides struct {
	TrafficBufferMultiplier *float64 `json:"trafficBufferMultiplier,omitempty"`
	LoadTimeMinutes         *float64 `json:"loadTimeMinutes,omitempty"`
}

// ConfigOverrides is the per-request partial configuration. Weights merge
// field-wise, priority order replaces wholesale, scalar fields replace
// wholesale when present.
type ConfigOverrides struct {
	MaxDetourMiles          *float64         `json:"maxDetourMiles,omitempty"`
	EnforceGenderPreference *bool            `json:"enforceGenderPreference,omitempty"`
	GroupByAgeRange         *int             `json:"groupByAgeRange,omitempty"`
	Timing                  *TimingOverrides `json:"timing,omitempty"`
	Weights                 *WeightOverrides `json:"weights,omitempty"`
	PriorityOrder           []string         `json:"priorityOrder,omitempty"`
}

// Validate rejects override values the engine cannot work with.
func (o *ConfigOverrides) Validate() error {
	if o == nil {
		return nil
	}
	if o.MaxDetourMiles != nil && *o.MaxDetourMiles <= 0 {
		return fmt.Errorf("maxDetourMiles override must be positive, got %v", *o.MaxDetourMiles)
	}
	if o.GroupByAgeRange != nil && *o.GroupByAgeRange <= 0 {
		return fmt.Errorf("groupByAgeRange override must be positive, got %d", *o.GroupByAgeRange)
	}
	if o.Timing != nil {
		if o.Timing.TrafficBufferMultiplier != nil && *o.Timing.TrafficBufferMultiplier <= 0 {
			return fmt.Errorf("trafficBufferMultiplier override must be positive, got %v", *o.Timing.TrafficBufferMultiplier)
		}
		if o.Timing.LoadTimeMinutes != nil && *o.Timing.LoadTimeMinutes < 0 {
			return fmt.Errorf("loadTimeMinutes override must not be negative, got %v", *o.Timing.LoadTimeMinutes)
		}
	}
	if o.Weights != nil {
		for name, w := range map[string]*float64{
			"routeEfficiency":  o.Weights.RouteEfficiency,
			"detour":           o.Weights.Detour,
			"genderMatch":      o.Weights.GenderMatch,
			"ageMatch":         o.Weights.AgeMatch,
			"driverPreference": o.Weights.DriverPreference,
			"earlyDeparture":   o.Weights.EarlyDeparture,
		} {
			if w != nil && (*w < 0 || *w > 1) {
				return fmt.Errorf("weight override %s must be within [0,1], got %v", name, *w)
			}
		}
	}
	for _, name := range o.PriorityOrder {
		if !knownMatchers[name] {
			return fmt.Errorf("unknown matcher %q in priority order override", name)
		}
	}
	return nil
}

// Apply merges the overrides onto a copy of the base configuration and
// returns the effective run configuration.
func (o *ConfigOverrides) Apply(base MatchingConfig) MatchingConfig {
	cfg := base
	cfg.PriorityOrder = append([]string(nil), base.PriorityOrder...)
	if o == nil {
		return cfg
	}
	if o.MaxDetourMiles != nil {
		cfg.MaxDetourMiles = *o.MaxDetourMiles
	}
	if o.EnforceGenderPreference != nil {
		cfg.EnforceGenderPreference = *o.EnforceGenderPreference
	}
	if o.GroupByAgeRange != nil {
		cfg.GroupByAgeRange = *o.GroupByAgeRange
	}
	if o.Timing != nil {
		if o.Timing.TrafficBufferMultiplier != nil {
			cfg.Timing.TrafficBufferMultiplier = *o.Timing.TrafficBufferMultiplier
		}
		if o.Timing.LoadTimeMinutes != nil {
			cfg.Timing.LoadTimeMinutes = *o.Timing.LoadTimeMinutes
		}
	}
	if o.Weights != nil {
		if o.Weights.RouteEfficiency != nil {
			cfg.Weights.RouteEfficiency = *o.Weights.RouteEfficiency
		}
		if o.Weights.Detour != nil {
			cfg.Weights.Detour = *o.Weights.Detour
		}
		if o.Weights.GenderMatch != nil {
			cfg.Weights.GenderMatch = *o.Weights.GenderMatch
		}
		if o.Weights.AgeMatch != nil {
			cfg.Weights.AgeMatch = *o.Weights.AgeMatch
		}
		if o.Weights.DriverPreference != nil {
			cfg.Weights.DriverPreference = *o.Weights.DriverPreference
		}
		if o.Weights.EarlyDeparture != nil {
			cfg.Weights.EarlyDeparture = *o.Weights.EarlyDeparture
		}
	}
	if len(o.PriorityOrder) > 0 {
		cfg.PriorityOrder = append([]string(nil), o.PriorityOrder...)
	}
	return cfg
}
