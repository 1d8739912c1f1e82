package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchingConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultMatchingConfig().Validate())
}

func TestMatchingConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MatchingConfig)
		wantErr string
	}{
		{"negative detour", func(c *MatchingConfig) { c.MaxDetourMiles = -1 }, "maxDetourMiles"},
		{"zero age range", func(c *MatchingConfig) { c.GroupByAgeRange = 0 }, "groupByAgeRange"},
		{"zero traffic buffer", func(c *MatchingConfig) { c.Timing.TrafficBufferMultiplier = 0 }, "trafficBufferMultiplier"},
		{"negative load time", func(c *MatchingConfig) { c.Timing.LoadTimeMinutes = -1 }, "loadTimeMinutes"},
		{"weight out of range", func(c *MatchingConfig) { c.Weights.Detour = 1.5 }, "detour"},
		{"weights drift", func(c *MatchingConfig) { c.Weights.RouteEfficiency = 0.5 }, "sum"},
		{"unknown matcher", func(c *MatchingConfig) { c.PriorityOrder = []string{"astrology"} }, "astrology"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMatchingConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigOverridesApply(t *testing.T) {
	base := DefaultMatchingConfig()

	detour := 8.0
	enforce := true
	ageRange := 20
	buffer := 1.5
	re := 0.4

	o := &ConfigOverrides{
		MaxDetourMiles:          &detour,
		EnforceGenderPreference: &enforce,
		GroupByAgeRange:         &ageRange,
		Timing:                  &TimingOverrides{TrafficBufferMultiplier: &buffer},
		Weights:                 &WeightOverrides{RouteEfficiency: &re},
		PriorityOrder:           []string{MatcherGender, MatcherTiming},
	}
	require.NoError(t, o.Validate())

	cfg := o.Apply(base)
	assert.Equal(t, 8.0, cfg.MaxDetourMiles)
	assert.True(t, cfg.EnforceGenderPreference)
	assert.Equal(t, 20, cfg.GroupByAgeRange)
	assert.Equal(t, 1.5, cfg.Timing.TrafficBufferMultiplier)
	assert.Equal(t, 0.4, cfg.Weights.RouteEfficiency)
	assert.Equal(t, []string{MatcherGender, MatcherTiming}, cfg.PriorityOrder)

	// Untouched fields keep base values; the base itself is not mutated.
	assert.Equal(t, base.Timing.LoadTimeMinutes, cfg.Timing.LoadTimeMinutes)
	assert.Equal(t, 0.25, cfg.Weights.Detour)
	assert.Equal(t, 5.0, base.MaxDetourMiles)
	assert.Equal(t, DefaultPriorityOrder(), base.PriorityOrder)
}

func TestNilOverridesApplyCopiesBase(t *testing.T) {
	base := DefaultMatchingConfig()
	var o *ConfigOverrides

	require.NoError(t, o.Validate())
	cfg := o.Apply(base)
	assert.Equal(t, base, cfg)

	// The priority slice is a copy, not an alias.
	cfg.PriorityOrder[0] = MatcherAge
	assert.Equal(t, MatcherTiming, base.PriorityOrder[0])
}

func TestConfigOverridesValidate(t *testing.T) {
	bad := -1.0
	o := &ConfigOverrides{MaxDetourMiles: &bad}
	require.Error(t, o.Validate())

	badWeight := 1.2
	o = &ConfigOverrides{Weights: &WeightOverrides{GenderMatch: &badWeight}}
	require.Error(t, o.Validate())

	o = &ConfigOverrides{PriorityOrder: []string{"tarot"}}
	require.Error(t, o.Validate())
}
