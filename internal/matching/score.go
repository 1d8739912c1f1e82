package matching

import "math"

// PairScore is the aggregated judgement of one (passenger, driver) pair.
// RejectedBy names the matcher that excluded the pair, which later feeds
// unmatched-reason attribution.
type PairScore struct {
	Score      float64
	Rejected   bool
	RejectedBy string
}

// gateMatchers are the scorers allowed to exclude a pair outright, in
// default evaluation order. Capacity is enforced by the engine's seat
// ledger rather than the gate chain, and the detour matcher is handled
// separately because its no-result case is direction-dependent.
var gateMatchers = []string{MatcherTiming, MatcherRouteEfficiency, MatcherGender}

// gateOrder returns the gate matchers in the order the run's priority list
// puts them, falling back to the default order for any it omits.
func gateOrder(priority []string) []string {
	isGate := map[string]bool{}
	for _, g := range gateMatchers {
		isGate[g] = true
	}
	order := make([]string, 0, len(gateMatchers))
	seen := map[string]bool{}
	for _, name := range priority {
		if isGate[name] && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	for _, g := range gateMatchers {
		if !seen[g] {
			order = append(order, g)
		}
	}
	return order
}

// ScorePair runs the matcher chain for one pair and blends the individual
// scores into a composite in [0,1], rounded to three decimals. Evaluation
// stops at the first hard reject.
func ScorePair(p Passenger, d Driver, ctx *MatcherContext) PairScore {
	verdicts := make(map[string]Verdict, len(matcherRegistry))

	for _, name := range gateOrder(ctx.Config.PriorityOrder) {
		v := matcherRegistry[name](p, d, ctx)
		if v.Rejected() {
			return PairScore{Rejected: true, RejectedBy: name}
		}
		verdicts[name] = v
	}

	detour := DetourMatcher(p, d, ctx)
	switch detour.Outcome {
	case OutcomeHardReject:
		return PairScore{Rejected: true, RejectedBy: MatcherDetour}
	case OutcomeNoResult:
		if ctx.Direction.Inbound() {
			return PairScore{Rejected: true, RejectedBy: MatcherDetour}
		}
		detour.Score = 0.1
	}
	verdicts[MatcherDetour] = detour

	verdicts[MatcherAge] = AgeMatcher(p, d, ctx)
	verdicts[MatcherDriverPreference] = DriverPreferenceMatcher(p, d, ctx)
	verdicts[MatcherEarlyDeparture] = EarlyDepartureMatcher(p, d, ctx)

	w := ctx.Config.Weights
	score := w.RouteEfficiency*verdicts[MatcherRouteEfficiency].Score +
		w.Detour*verdicts[MatcherDetour].Score +
		w.GenderMatch*verdicts[MatcherGender].Score +
		w.AgeMatch*verdicts[MatcherAge].Score +
		w.DriverPreference*verdicts[MatcherDriverPreference].Score +
		w.EarlyDeparture*verdicts[MatcherEarlyDeparture].Score

	return PairScore{Score: math.Round(score*1000) / 1000}
}
