package matching

import (
	"math"
	"sort"
)

// RunReport collects what the engine learned while assigning, beyond the
// ledger itself. Rejections feed unmatched-reason attribution: for each
// passenger it counts, per matcher, how many pair evaluations that matcher
// excluded.
type RunReport struct {
	Rejections map[string]map[string]int
}

func newRunReport() *RunReport {
	return &RunReport{Rejections: make(map[string]map[string]int)}
}

func (r *RunReport) recordRejection(passengerID, matcher string) {
	m := r.Rejections[passengerID]
	if m == nil {
		m = make(map[string]int)
		r.Rejections[passengerID] = m
	}
	m[matcher]++
}

// RejectedOnlyBy reports whether every recorded rejection of the passenger
// came from the given matcher, and there were at least n of them.
func (r *RunReport) RejectedOnlyBy(passengerID, matcher string, n int) bool {
	m := r.Rejections[passengerID]
	if len(m) != 1 {
		return false
	}
	return m[matcher] >= n
}

// Engine performs the greedy assignment over a prepared context. Drivers
// are processed furthest-first: a driver who lives far from the event
// sweeps a larger catchment of homes, so giving them first pick produces
// fuller, straighter routes.
type Engine struct {
	ctx    *MatcherContext
	report *RunReport
}

// NewEngine wraps a context for one assignment run.
func NewEngine(ctx *MatcherContext) *Engine {
	return &Engine{ctx: ctx, report: newRunReport()}
}

// Run mutates the context ledger until no more passengers can be seated
// and returns the run report.
func (e *Engine) Run() *RunReport {
	if e.ctx.Direction.Outbound() {
		e.runOutbound()
	} else {
		e.runInbound()
	}
	return e.report
}

// sortedDrivers returns the driver processing order: direct distance
// descending, then gender-affinity descending, then input order.
func (e *Engine) sortedDrivers() []Driver {
	drivers := make([]Driver, len(e.ctx.Drivers))
	copy(drivers, e.ctx.Drivers)
	sort.SliceStable(drivers, func(i, j int) bool {
		di := e.ctx.DriverDirectDistance(drivers[i].ID)
		dj := e.ctx.DriverDirectDistance(drivers[j].ID)
		if di != dj {
			// Inf sorts first, which is fine: coordinate-less drivers
			// reject every candidate anyway.
			return di > dj
		}
		return e.ctx.GenderAffinity(drivers[i].ID) > e.ctx.GenderAffinity(drivers[j].ID)
	})
	return drivers
}

func (e *Engine) runOutbound() {
	drivers := e.sortedDrivers()

	for _, d := range drivers {
		if d.LeavingEarly {
			e.assignGreedy(d, func(p Passenger) bool { return p.LeavingEarly })
		}
	}
	for _, d := range drivers {
		if !d.LeavingEarly {
			e.assignGreedy(d, func(p Passenger) bool { return !p.LeavingEarly })
		}
	}

	e.sweep(drivers)
}

func (e *Engine) runInbound() {
	for _, d := range e.sortedDrivers() {
		e.assignGreedy(d, func(Passenger) bool { return true })
	}
}

type scoredCandidate struct {
	passenger Passenger
	score     float64
}

// assignGreedy scores every available candidate for one driver, then
// appends them in descending score order while seats remain. Scores are a
// snapshot: appending changes the route, but the order was fixed when the
// driver's turn started. Inbound appends re-check the detour cap against
// the route as it actually grows.
//
// The include predicate is the outbound early/normal partition. A pair it
// excludes is exactly a pair the timing matcher would hard-reject, so the
// exclusion is recorded as a timing rejection to keep reason attribution
// consistent with the inbound path.
func (e *Engine) assignGreedy(d Driver, include func(Passenger) bool) {
	candidates := make([]scoredCandidate, 0, len(e.ctx.Passengers))
	for _, p := range e.ctx.Passengers {
		if !e.ctx.Ledger.Available(p.ID) {
			continue
		}
		if !include(p) {
			e.report.recordRejection(p.ID, MatcherTiming)
			continue
		}
		s := ScorePair(p, d, e.ctx)
		if s.Rejected {
			e.report.recordRejection(p.ID, s.RejectedBy)
			continue
		}
		candidates = append(candidates, scoredCandidate{passenger: p, score: s.Score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	for _, c := range candidates {
		if e.ctx.Ledger.RemainingSeats(d.ID) <= 0 {
			break
		}
		if e.ctx.Direction.Outbound() && c.score <= 0 {
			break
		}
		if e.ctx.Direction.Inbound() && e.wouldExceedDetourCap(d.ID, c.passenger.ID) {
			e.report.recordRejection(c.passenger.ID, MatcherDetour)
			continue
		}
		e.ctx.Ledger.Assign(d.ID, c.passenger.ID)
	}
}

// wouldExceedDetourCap checks the inbound hard cap against the driver's
// current route with the passenger appended.
func (e *Engine) wouldExceedDetourCap(driverID, passengerID string) bool {
	current := e.ctx.Ledger.Assignments(driverID)
	with := make([]string, 0, len(current)+1)
	with = append(with, current...)
	with = append(with, passengerID)
	detour := e.ctx.RouteDistance(driverID, with) - e.ctx.DriverDirectDistance(driverID)
	return detour > e.ctx.Config.MaxDetourMiles
}

// sweep hands every leftover non-early passenger to the non-early driver
// whose route grows the least. Detour is a minimization objective here, not
// a filter: outbound has no detour cap. Hard constraints still hold: a
// driver the timing or gender matcher rejects for the pair is never a sweep
// candidate. Early leavers are never swept because only an early driver may
// carry them.
func (e *Engine) sweep(drivers []Driver) {
	for _, p := range e.ctx.Passengers {
		if !e.ctx.Ledger.Available(p.ID) || p.LeavingEarly {
			continue
		}

		bestDetour := math.Inf(1)
		bestDriver := ""
		for _, d := range drivers {
			if d.LeavingEarly || e.ctx.Ledger.RemainingSeats(d.ID) <= 0 {
				continue
			}
			if TimingMatcher(p, d, e.ctx).Rejected() || GenderMatcher(p, d, e.ctx).Rejected() {
				continue
			}
			inc := e.ctx.IncrementalDetour(d.ID, p.ID)
			if math.IsInf(inc, 0) || math.IsNaN(inc) {
				continue
			}
			if inc < bestDetour {
				bestDetour = inc
				bestDriver = d.ID
			}
		}
		if bestDriver != "" {
			e.ctx.Ledger.Assign(bestDriver, p.ID)
		}
	}
}
