package matching

import (
	"math"
	"time"

	"github.com/ridealong/event-carpool/pkg/geo"
)

// Outcome classifies a matcher verdict. Hard rejects are ordinary control
// flow for the engine, never errors.
type Outcome int

const (
	// OutcomeAccept scores the pair normally.
	OutcomeAccept Outcome = iota
	// OutcomeSoftPenalty still allows assignment but flags a degraded
	// pairing (for example an unmet, unenforced gender preference).
	OutcomeSoftPenalty
	// OutcomeHardReject excludes the pair from this run.
	OutcomeHardReject
	// OutcomeNoResult means the matcher could not produce a finite score;
	// the aggregator decides how to coerce it per direction.
	OutcomeNoResult
)

// Verdict is one matcher's judgement of a (passenger, driver) pair.
// Scores live in [0,1]; the rejecting matcher's name travels with the
// verdict so unmatched reasons can be attributed.
type Verdict struct {
	Matcher string
	Score   float64
	Outcome Outcome
}

// Rejected reports whether the verdict excludes the pair.
func (v Verdict) Rejected() bool { return v.Outcome == OutcomeHardReject }

func accept(matcher string, score float64) Verdict {
	return Verdict{Matcher: matcher, Score: score, Outcome: OutcomeAccept}
}

func softPenalty(matcher string, score float64) Verdict {
	return Verdict{Matcher: matcher, Score: score, Outcome: OutcomeSoftPenalty}
}

func hardReject(matcher string) Verdict {
	return Verdict{Matcher: matcher, Outcome: OutcomeHardReject}
}

func noResult(matcher string) Verdict {
	return Verdict{Matcher: matcher, Outcome: OutcomeNoResult}
}

// MatcherFunc scores one (passenger, driver) pair. Matchers are pure: they
// read the context but never mutate the ledger.
type MatcherFunc func(p Passenger, d Driver, ctx *MatcherContext) Verdict

// matcherRegistry resolves priority-order names to implementations.
var matcherRegistry = map[string]MatcherFunc{
	MatcherTiming:           TimingMatcher,
	MatcherEarlyDeparture:   EarlyDepartureMatcher,
	MatcherCapacity:         CapacityMatcher,
	MatcherRouteEfficiency:  RouteEfficiencyMatcher,
	MatcherDriverPreference: DriverPreferenceMatcher,
	MatcherDetour:           DetourMatcher,
	MatcherGender:           GenderMatcher,
	MatcherAge:              AgeMatcher,
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// minutesBefore subtracts a fractional number of minutes from an instant.
func minutesBefore(t time.Time, minutes float64) time.Time {
	return t.Add(-time.Duration(minutes * float64(time.Minute)))
}

// TimingMatcher partitions outbound runs by the leaving-early flag and
// sanity-checks inbound pickup hours.
//
// Outbound: mismatched leaving-early flags can never share a car. When both
// leave early, the driver must be ready to go no later than the passenger.
// Inbound: a tentative pickup instant is computed from the passenger's own
// home→event distance; pickups that would fall in the small hours (UTC) are
// rejected outright.
func TimingMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	if ctx.Direction.Outbound() {
		if p.LeavingEarly != d.LeavingEarly {
			return hardReject(MatcherTiming)
		}
		if p.LeavingEarly {
			if p.EarlyDepartureTime != nil && d.EarlyDepartureTime != nil &&
				p.EarlyDepartureTime.Before(*d.EarlyDepartureTime) {
				return hardReject(MatcherTiming)
			}
			return accept(MatcherTiming, 1.0)
		}
		return accept(MatcherTiming, 0.5)
	}

	if ctx.EventStart == nil {
		return accept(MatcherTiming, 0.5)
	}

	travel := geo.TravelMinutes(ctx.DistanceToEvent(p.ID), ctx.Config.Timing.TrafficBufferMultiplier)
	if math.IsInf(travel, 1) {
		// Unreachable homes are the route matchers' concern.
		return accept(MatcherTiming, 0.7)
	}
	pickup := minutesBefore(*ctx.EventStart, travel+ctx.Config.Timing.LoadTimeMinutes)

	eventHour := ctx.EventStart.UTC().Hour()
	pickupHour := pickup.UTC().Hour()
	if eventHour < 12 && pickupHour < 5 {
		return hardReject(MatcherTiming)
	}
	if eventHour >= 12 && pickupHour < 6 {
		return hardReject(MatcherTiming)
	}
	return accept(MatcherTiming, 0.7)
}

// EarlyDepartureMatcher is vestigial: the timing matcher already
// hard-partitions early leavers, and the default weight for this score is
// zero. It is kept callable for configurations that weight it.
func EarlyDepartureMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	if ctx.Direction.Inbound() {
		return accept(MatcherEarlyDeparture, 0.5)
	}
	switch {
	case p.LeavingEarly && d.LeavingEarly:
		return accept(MatcherEarlyDeparture, 1.0)
	case !p.LeavingEarly && !d.LeavingEarly:
		return accept(MatcherEarlyDeparture, 0.5)
	default:
		return accept(MatcherEarlyDeparture, 0.1)
	}
}

// CapacityMatcher rejects full cars and biases toward filling
// partially-full ones, so groups consolidate instead of spreading thin.
func CapacityMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	remaining := ctx.Ledger.RemainingSeats(d.ID)
	if remaining <= 0 || d.AvailableSeats <= 0 {
		return hardReject(MatcherCapacity)
	}
	fillRatio := float64(d.AvailableSeats-remaining) / float64(d.AvailableSeats)
	return accept(MatcherCapacity, 0.5+0.5*fillRatio)
}

// RouteEfficiencyMatcher compares the driver's direct route against the
// route through the passenger. Efficiency 1.0 means the passenger is on the
// way; 0.5 or below means the trip doubles.
func RouteEfficiencyMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	direct := ctx.DriverDirectDistance(d.ID)
	through := ctx.Distance(ctx.routeOrigin(d.ID), p.ID) + ctx.Distance(p.ID, ctx.routeTerminus(d.ID))
	if math.IsInf(through, 1) {
		return hardReject(MatcherRouteEfficiency)
	}
	if ctx.Direction.Inbound() && through-direct > ctx.Config.MaxDetourMiles {
		return hardReject(MatcherRouteEfficiency)
	}
	if through == 0 {
		// Coincident coordinates: nothing to detour around.
		return accept(MatcherRouteEfficiency, 1.0)
	}
	efficiency := direct / through
	return accept(MatcherRouteEfficiency, clamp01((efficiency-0.5)*2))
}

// DriverPreferenceMatcher is reserved: drivers have no preference fields
// yet, so every pair scores neutral.
func DriverPreferenceMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	return accept(MatcherDriverPreference, 0.5)
}

// DetourMatcher measures the extra mileage of appending the passenger to
// the end of the driver's current route. Outbound the detour limit is a
// scoring knob only; inbound it is a hard cap on the group's total detour.
func DetourMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	incremental := ctx.IncrementalDetour(d.ID, p.ID)
	if math.IsInf(incremental, 0) || math.IsNaN(incremental) {
		return noResult(MatcherDetour)
	}

	if ctx.Direction.Inbound() {
		current := ctx.Ledger.Assignments(d.ID)
		with := make([]string, 0, len(current)+1)
		with = append(with, current...)
		with = append(with, p.ID)
		totalDetour := ctx.RouteDistance(d.ID, with) - ctx.DriverDirectDistance(d.ID)
		if totalDetour > ctx.Config.MaxDetourMiles {
			return hardReject(MatcherDetour)
		}
	}

	return accept(MatcherDetour, clamp01(1-incremental/ctx.Config.MaxDetourMiles))
}

// genderCompatible is the single compatibility test shared by the matcher
// and unmatched-reason attribution. An undeclared side counts as matched
// only through the explicit prefer_not_to_say value; an empty or unknown
// gender never matches anything, itself included.
func genderCompatible(p Passenger, d Driver) bool {
	if p.Gender == GenderPreferNotToSay || d.Gender == GenderPreferNotToSay {
		return true
	}
	if p.Gender == "" || d.Gender == "" {
		return false
	}
	return p.Gender == d.Gender
}

// GenderMatcher scores gender compatibility. A declared same-gender
// preference that cannot be met either hard-rejects (when enforcement is
// on) or keeps the pair assignable with a soft penalty.
func GenderMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	if genderCompatible(p, d) {
		return accept(MatcherGender, 1.0)
	}
	if p.GenderPreference == PreferenceSameGender {
		if ctx.Config.EnforceGenderPreference {
			return hardReject(MatcherGender)
		}
		return softPenalty(MatcherGender, 0.2)
	}
	return accept(MatcherGender, 0.6)
}

// AgeMatcher prefers riders of similar age. Inside the configured range the
// score falls linearly from 1.0 to 0.5; outside it keeps falling gently and
// floors at 0.1. It never rejects.
func AgeMatcher(p Passenger, d Driver, ctx *MatcherContext) Verdict {
	if p.Age <= 0 || d.Age <= 0 {
		return accept(MatcherAge, 0.5)
	}
	delta := math.Abs(float64(p.Age - d.Age))
	ageRange := float64(ctx.Config.GroupByAgeRange)
	if delta <= ageRange {
		return accept(MatcherAge, 1-0.5*delta/ageRange)
	}
	return accept(MatcherAge, math.Max(0.1, 0.5-(delta-ageRange)/50))
}
