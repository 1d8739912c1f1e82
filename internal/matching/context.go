package matching

import (
	"math"
	"time"

	"github.com/ridealong/event-carpool/pkg/geo"
)

// AssignmentLedger is the only mutable state of a matching run. The
// assignment engine owns it; matchers read it through the context.
type AssignmentLedger struct {
	available   map[string]bool
	remaining   map[string]int
	assignments map[string][]string
}

// Available reports whether a passenger still needs a seat.
func (l *AssignmentLedger) Available(passengerID string) bool {
	return l.available[passengerID]
}

// RemainingSeats returns the seats a driver still has free.
func (l *AssignmentLedger) RemainingSeats(driverID string) int {
	return l.remaining[driverID]
}

// TotalRemainingSeats sums the free seats across all drivers.
func (l *AssignmentLedger) TotalRemainingSeats() int {
	total := 0
	for _, n := range l.remaining {
		total += n
	}
	return total
}

// Assignments returns the ordered passenger IDs assigned to a driver.
func (l *AssignmentLedger) Assignments(driverID string) []string {
	return l.assignments[driverID]
}

// Assign seats a passenger with a driver: the passenger leaves the
// available set, joins the driver's ordered assignment list and one seat is
// consumed.
func (l *AssignmentLedger) Assign(driverID, passengerID string) {
	delete(l.available, passengerID)
	l.assignments[driverID] = append(l.assignments[driverID], passengerID)
	l.remaining[driverID]--
}

// MatcherContext carries the per-run state: an immutable distance matrix
// over {event} ∪ passengers ∪ drivers plus the mutable assignment ledger.
// It is built once per call, mutated only by the assignment engine and
// discarded when the call returns.
type MatcherContext struct {
	Direction  TripDirection
	Config     MatchingConfig
	Event      Coordinate
	EventStart *time.Time

	// Filtered inputs in enumeration order. Candidate iteration and all
	// tie-breaking follow these slices, never map order.
	Passengers []Passenger
	Drivers    []Driver

	index  map[string]int
	matrix [][]float64

	direct         map[string]float64
	genderAffinity map[string]int

	passengerIdx map[string]int
	driverIdx    map[string]int

	Ledger *AssignmentLedger
}

// NewMatcherContext builds the run context from already-filtered inputs.
// Participants without coordinates keep +Inf rows in the matrix so the
// scorers reject them instead of failing the run.
func NewMatcherContext(passengers []Passenger, drivers []Driver, event EventContext, cfg MatchingConfig) *MatcherContext {
	ctx := &MatcherContext{
		Direction:      event.Direction,
		Config:         cfg,
		Event:          event.Coordinate,
		EventStart:     event.StartTime,
		Passengers:     passengers,
		Drivers:        drivers,
		index:          make(map[string]int, len(passengers)+len(drivers)+1),
		direct:         make(map[string]float64, len(drivers)),
		genderAffinity: make(map[string]int, len(drivers)),
		passengerIdx:   make(map[string]int, len(passengers)),
		driverIdx:      make(map[string]int, len(drivers)),
		Ledger: &AssignmentLedger{
			available:   make(map[string]bool, len(passengers)),
			remaining:   make(map[string]int, len(drivers)),
			assignments: make(map[string][]string, len(drivers)),
		},
	}

	coords := []*Coordinate{{Lat: event.Coordinate.Lat, Lng: event.Coordinate.Lng}}
	ctx.index[EventLocationID] = 0
	for i, p := range passengers {
		if _, seen := ctx.index[p.ID]; !seen {
			ctx.index[p.ID] = len(coords)
			coords = append(coords, p.HomeCoordinate)
		}
		ctx.passengerIdx[p.ID] = i
		ctx.Ledger.available[p.ID] = true
	}
	for i, d := range drivers {
		if _, seen := ctx.index[d.ID]; !seen {
			ctx.index[d.ID] = len(coords)
			coords = append(coords, d.HomeCoordinate)
		}
		ctx.driverIdx[d.ID] = i
		ctx.Ledger.remaining[d.ID] = d.AvailableSeats
	}

	n := len(coords)
	ctx.matrix = make([][]float64, n)
	for i := range ctx.matrix {
		ctx.matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Inf(1)
			if coords[i] != nil && coords[j] != nil {
				d = geo.RoadDistance(coords[i].Lat, coords[i].Lng, coords[j].Lat, coords[j].Lng)
			}
			ctx.matrix[i][j] = d
			ctx.matrix[j][i] = d
		}
	}

	for _, d := range drivers {
		ctx.direct[d.ID] = ctx.Distance(EventLocationID, d.ID)
		affinity := 0
		for _, p := range passengers {
			if p.GenderPreference == PreferenceSameGender && p.Gender == d.Gender {
				affinity++
			}
		}
		ctx.genderAffinity[d.ID] = affinity
	}

	return ctx
}

// Distance returns the road miles between two matrix identifiers, +Inf when
// either endpoint lacks coordinates or is unknown.
func (c *MatcherContext) Distance(fromID, toID string) float64 {
	i, ok := c.index[fromID]
	if !ok {
		return math.Inf(1)
	}
	j, ok := c.index[toID]
	if !ok {
		return math.Inf(1)
	}
	return c.matrix[i][j]
}

// DistanceToEvent returns the road miles between a participant's home and
// the event.
func (c *MatcherContext) DistanceToEvent(id string) float64 {
	return c.Distance(id, EventLocationID)
}

// DriverDirectDistance is the driver's route length with no passengers:
// event→home outbound, home→event inbound. Both read the same matrix cell.
func (c *MatcherContext) DriverDirectDistance(driverID string) float64 {
	return c.direct[driverID]
}

// GenderAffinity returns how many same-gender-preferring passengers match
// the driver's gender. Materialized once at build time; used only as a
// driver-ordering tiebreak.
func (c *MatcherContext) GenderAffinity(driverID string) int {
	return c.genderAffinity[driverID]
}

// PassengerByID returns the filtered passenger record, if present.
func (c *MatcherContext) PassengerByID(id string) (Passenger, bool) {
	i, ok := c.passengerIdx[id]
	if !ok {
		return Passenger{}, false
	}
	return c.Passengers[i], true
}

// DriverByID returns the filtered driver record, if present.
func (c *MatcherContext) DriverByID(id string) (Driver, bool) {
	i, ok := c.driverIdx[id]
	if !ok {
		return Driver{}, false
	}
	return c.Drivers[i], true
}

// routeOrigin and routeTerminus give the fixed endpoints of a driver's
// route for the run direction.
func (c *MatcherContext) routeOrigin(driverID string) string {
	if c.Direction.Outbound() {
		return EventLocationID
	}
	return driverID
}

func (c *MatcherContext) routeTerminus(driverID string) string {
	if c.Direction.Outbound() {
		return driverID
	}
	return EventLocationID
}

// RouteDistance computes the full route miles for a driver through the
// given ordered stops, including the final leg to the route terminus. With
// no stops it equals the driver's direct distance.
func (c *MatcherContext) RouteDistance(driverID string, stops []string) float64 {
	prev := c.routeOrigin(driverID)
	total := 0.0
	for _, stop := range stops {
		total += c.Distance(prev, stop)
		prev = stop
	}
	return total + c.Distance(prev, c.routeTerminus(driverID))
}

// RouteDetour is the extra mileage of the current route over the driver's
// direct route. Never negative for finite routes.
func (c *MatcherContext) RouteDetour(driverID string, stops []string) float64 {
	if len(stops) == 0 {
		return 0
	}
	return c.RouteDistance(driverID, stops) - c.direct[driverID]
}

// IncrementalDetour is the extra mileage caused by appending one passenger
// to the end of the driver's current assignment.
func (c *MatcherContext) IncrementalDetour(driverID, passengerID string) float64 {
	current := c.Ledger.Assignments(driverID)
	with := make([]string, 0, len(current)+1)
	with = append(with, current...)
	with = append(with, passengerID)
	return c.RouteDistance(driverID, with) - c.RouteDistance(driverID, current)
}
