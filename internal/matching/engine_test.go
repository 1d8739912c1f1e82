package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineSinglePairOutbound(t *testing.T) {
	p := testPassenger("p1", 37.78, -122.42)
	d := testDriver("d1", 37.79, -122.43, 3)
	ctx := outboundContext([]Passenger{p}, []Driver{d}, DefaultMatchingConfig())

	NewEngine(ctx).Run()

	assert.Equal(t, []string{"p1"}, ctx.Ledger.Assignments("d1"))
	assert.False(t, ctx.Ledger.Available("p1"))
	assert.Equal(t, 2, ctx.Ledger.RemainingSeats("d1"))
}

func TestEngineCapacityNeverExceeded(t *testing.T) {
	passengers := []Passenger{
		testPassenger("p1", 37.78, -122.42),
		testPassenger("p2", 37.77, -122.43),
		testPassenger("p3", 37.76, -122.41),
		testPassenger("p4", 37.785, -122.425),
		testPassenger("p5", 37.775, -122.415),
	}
	d := testDriver("d1", 37.79, -122.43, 3)
	ctx := outboundContext(passengers, []Driver{d}, DefaultMatchingConfig())

	NewEngine(ctx).Run()

	assert.Len(t, ctx.Ledger.Assignments("d1"), 3)
	assert.Equal(t, 0, ctx.Ledger.RemainingSeats("d1"))

	unmatched := 0
	for _, p := range passengers {
		if ctx.Ledger.Available(p.ID) {
			unmatched++
		}
	}
	assert.Equal(t, 2, unmatched)
}

func TestEngineEarlyDeparturePartition(t *testing.T) {
	a := testPassenger("a", 37.78, -122.42)
	a.LeavingEarly = true
	b := testPassenger("b", 37.78, -122.42)
	d := testDriver("d1", 37.79, -122.43, 3)

	ctx := outboundContext([]Passenger{a, b}, []Driver{d}, DefaultMatchingConfig())
	report := NewEngine(ctx).Run()

	assert.Equal(t, []string{"b"}, ctx.Ledger.Assignments("d1"))
	assert.True(t, ctx.Ledger.Available("a"))
	assert.Positive(t, report.Rejections["a"][MatcherTiming])
}

func TestEngineSweepSeatsEveryone(t *testing.T) {
	// The far passenger scores terribly for this driver but outbound has no
	// detour cap: the sweep must still seat them.
	far := testPassenger("far", 37.9, -122.6)
	near := testPassenger("near", 37.78, -122.42)
	d := testDriver("d1", 37.79, -122.43, 3)

	ctx := outboundContext([]Passenger{far, near}, []Driver{d}, DefaultMatchingConfig())
	NewEngine(ctx).Run()

	assigned := ctx.Ledger.Assignments("d1")
	assert.Len(t, assigned, 2)
	assert.False(t, ctx.Ledger.Available("far"))
	assert.False(t, ctx.Ledger.Available("near"))
}

func TestEngineFurthestDriverFirst(t *testing.T) {
	close := testDriver("d-close", 37.7750, -122.4195, 3)
	far := testDriver("d-far", 37.8044, -122.2712, 3)
	p := testPassenger("p", 37.79, -122.35)

	ctx := outboundContext([]Passenger{p}, []Driver{close, far}, DefaultMatchingConfig())
	NewEngine(ctx).Run()

	assert.Equal(t, []string{"p"}, ctx.Ledger.Assignments("d-far"))
	assert.Empty(t, ctx.Ledger.Assignments("d-close"))
}

func TestEngineInboundDetourCap(t *testing.T) {
	cfg := DefaultMatchingConfig()
	cfg.MaxDetourMiles = 1.0

	onRoute := testPassenger("on", 37.7800, -122.4250)
	offRoute := testPassenger("off", 37.7900, -122.3000)
	d := testDriver("d1", 37.7900, -122.4300, 3)
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	ctx := inboundContext([]Passenger{onRoute, offRoute}, []Driver{d}, start, cfg)
	report := NewEngine(ctx).Run()

	assert.Equal(t, []string{"on"}, ctx.Ledger.Assignments("d1"))
	assert.True(t, ctx.Ledger.Available("off"))
	assert.NotEmpty(t, report.Rejections["off"])
}

func TestEngineInboundNoSweep(t *testing.T) {
	// Inbound leaves capped-out passengers unmatched instead of force-seating
	// them the way the outbound sweep does.
	cfg := DefaultMatchingConfig()
	cfg.MaxDetourMiles = 0.5

	p := testPassenger("p", 37.7000, -122.2000)
	d := testDriver("d1", 37.7900, -122.4300, 3)
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	ctx := inboundContext([]Passenger{p}, []Driver{d}, start, cfg)
	NewEngine(ctx).Run()

	assert.True(t, ctx.Ledger.Available("p"))
	assert.Empty(t, ctx.Ledger.Assignments("d1"))
}

func TestEngineGenderPreferenceEnforced(t *testing.T) {
	cfg := DefaultMatchingConfig()
	cfg.EnforceGenderPreference = true

	p := testPassenger("p", 37.78, -122.42)
	p.Gender = GenderFemale
	p.GenderPreference = PreferenceSameGender

	male := testDriver("d-male", 37.79, -122.43, 3)
	male.Gender = GenderMale
	female := testDriver("d-female", 37.80, -122.45, 3)
	female.Gender = GenderFemale

	ctx := outboundContext([]Passenger{p}, []Driver{male, female}, cfg)
	NewEngine(ctx).Run()

	assert.Equal(t, []string{"p"}, ctx.Ledger.Assignments("d-female"))
	assert.Empty(t, ctx.Ledger.Assignments("d-male"))
}

func TestEngineSweepRespectsGenderEnforcement(t *testing.T) {
	// The sweep must not force-seat a passenger with a driver the gender
	// matcher hard-rejects, even when that driver is the only seat left.
	cfg := DefaultMatchingConfig()
	cfg.EnforceGenderPreference = true

	p := testPassenger("p", 37.78, -122.42)
	p.Gender = GenderFemale
	p.GenderPreference = PreferenceSameGender
	d := testDriver("d1", 37.79, -122.43, 3)
	d.Gender = GenderMale

	ctx := outboundContext([]Passenger{p}, []Driver{d}, cfg)
	report := NewEngine(ctx).Run()

	assert.True(t, ctx.Ledger.Available("p"))
	assert.Empty(t, ctx.Ledger.Assignments("d1"))
	assert.Positive(t, report.Rejections["p"][MatcherGender])
}

func TestEngineCoordinatelessDriverAssignsNothing(t *testing.T) {
	p := testPassenger("p", 37.78, -122.42)
	d := testDriver("d1", 0, 0, 3)
	d.HomeCoordinate = nil
	ctx := outboundContext([]Passenger{p}, []Driver{d}, DefaultMatchingConfig())

	NewEngine(ctx).Run()

	assert.Empty(t, ctx.Ledger.Assignments("d1"))
	assert.True(t, ctx.Ledger.Available("p"))
}

func TestEngineDeterminism(t *testing.T) {
	passengers := []Passenger{
		testPassenger("p1", 37.78, -122.42),
		testPassenger("p2", 37.77, -122.43),
		testPassenger("p3", 37.80, -122.40),
		testPassenger("p4", 37.75, -122.44),
	}
	drivers := []Driver{
		testDriver("d1", 37.79, -122.43, 2),
		testDriver("d2", 37.81, -122.39, 2),
	}

	run := func() map[string][]string {
		ctx := outboundContext(passengers, drivers, DefaultMatchingConfig())
		NewEngine(ctx).Run()
		out := map[string][]string{}
		for _, d := range drivers {
			out[d.ID] = append([]string(nil), ctx.Ledger.Assignments(d.ID)...)
		}
		return out
	}

	first := run()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, run())
	}
}

func TestRunReportRejectedOnlyBy(t *testing.T) {
	r := newRunReport()
	r.recordRejection("p1", MatcherTiming)
	r.recordRejection("p1", MatcherTiming)

	assert.True(t, r.RejectedOnlyBy("p1", MatcherTiming, 2))
	assert.False(t, r.RejectedOnlyBy("p1", MatcherTiming, 3))
	assert.False(t, r.RejectedOnlyBy("p1", MatcherDetour, 1))

	r.recordRejection("p1", MatcherGender)
	assert.False(t, r.RejectedOnlyBy("p1", MatcherTiming, 1))

	require.False(t, r.RejectedOnlyBy("unknown", MatcherTiming, 0))
}
