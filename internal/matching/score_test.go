package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePairBlendsWeights(t *testing.T) {
	p := testPassenger("p", 37.78, -122.42)
	d := testDriver("d", 37.79, -122.43, 3)
	ctx := outboundContext([]Passenger{p}, []Driver{d}, DefaultMatchingConfig())

	s := ScorePair(p, d, ctx)
	require.False(t, s.Rejected)
	assert.Greater(t, s.Score, 0.0)
	assert.LessOrEqual(t, s.Score, 1.0)

	// Three-decimal rounding.
	assert.Equal(t, s.Score, float64(int(s.Score*1000+0.5))/1000)
}

func TestScorePairShortCircuitsOnGate(t *testing.T) {
	p := testPassenger("p", 37.78, -122.42)
	p.LeavingEarly = true
	d := testDriver("d", 37.79, -122.43, 3)

	ctx := outboundContext([]Passenger{p}, []Driver{d}, DefaultMatchingConfig())
	s := ScorePair(p, d, ctx)

	require.True(t, s.Rejected)
	assert.Equal(t, MatcherTiming, s.RejectedBy)
}

func TestScorePairAttributesGenderRejection(t *testing.T) {
	cfg := DefaultMatchingConfig()
	cfg.EnforceGenderPreference = true

	p := testPassenger("p", 37.78, -122.42)
	p.Gender = GenderFemale
	p.GenderPreference = PreferenceSameGender
	d := testDriver("d", 37.79, -122.43, 3)
	d.Gender = GenderMale

	ctx := outboundContext([]Passenger{p}, []Driver{d}, cfg)
	s := ScorePair(p, d, ctx)

	require.True(t, s.Rejected)
	assert.Equal(t, MatcherGender, s.RejectedBy)
}

func TestScorePairUnreachableOutbound(t *testing.T) {
	// Outbound a no-result detour coerces to a floor score; the route
	// efficiency gate rejects first when the home is unknown.
	p := testPassenger("p", 0, 0)
	p.HomeCoordinate = nil
	d := testDriver("d", 37.79, -122.43, 3)

	ctx := outboundContext([]Passenger{p}, []Driver{d}, DefaultMatchingConfig())
	s := ScorePair(p, d, ctx)

	require.True(t, s.Rejected)
	assert.Equal(t, MatcherRouteEfficiency, s.RejectedBy)
}

func TestScorePairHigherWeightShiftsRanking(t *testing.T) {
	// Two candidates: one nearby with a gender mismatch, one further away
	// with a gender match. Shifting weight from route efficiency to gender
	// must flip their ranking.
	near := testPassenger("near", 37.785, -122.425)
	near.Gender = GenderMale
	far := testPassenger("far", 37.77, -122.40)
	far.Gender = GenderFemale

	d := testDriver("d", 37.79, -122.43, 3)
	d.Gender = GenderFemale

	routeHeavy := DefaultMatchingConfig()
	routeHeavy.Weights = Weights{RouteEfficiency: 0.9, GenderMatch: 0.1}

	genderHeavy := DefaultMatchingConfig()
	genderHeavy.Weights = Weights{RouteEfficiency: 0.1, GenderMatch: 0.9}

	ctxRoute := outboundContext([]Passenger{near, far}, []Driver{d}, routeHeavy)
	ctxGender := outboundContext([]Passenger{near, far}, []Driver{d}, genderHeavy)

	assert.Greater(t,
		ScorePair(near, d, ctxRoute).Score,
		ScorePair(far, d, ctxRoute).Score)
	assert.Greater(t,
		ScorePair(far, d, ctxGender).Score,
		ScorePair(near, d, ctxGender).Score)
}

func TestGateOrderFollowsPriorityOverride(t *testing.T) {
	order := gateOrder([]string{MatcherGender, MatcherTiming})
	assert.Equal(t, []string{MatcherGender, MatcherTiming, MatcherRouteEfficiency}, order)

	// Empty priority keeps the default order.
	assert.Equal(t, []string{MatcherTiming, MatcherRouteEfficiency, MatcherGender}, gateOrder(nil))
}
