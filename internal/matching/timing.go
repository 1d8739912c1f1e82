package matching

import "github.com/ridealong/event-carpool/pkg/geo"

// departureSafetyMinutes pads the driver's departure beyond the modelled
// travel and load time.
const departureSafetyMinutes = 10

// arrivalMarginMinutes is how far before the event start a group is planned
// to arrive.
const arrivalMarginMinutes = 5

// PlanSchedules attaches a timing plan to every inbound ride group with at
// least one pickup. Each passenger's ready-by instant works backward from
// the event start through the stops that still lie ahead of them; the
// driver's departure works backward through the whole route. Outbound runs
// and runs without a start time are left untouched.
func PlanSchedules(ctx *MatcherContext, groups []RideGroup) {
	if !ctx.Direction.Inbound() || ctx.EventStart == nil {
		return
	}
	start := ctx.EventStart.UTC()
	buffer := ctx.Config.Timing.TrafficBufferMultiplier
	loadTime := ctx.Config.Timing.LoadTimeMinutes

	for i := range groups {
		g := &groups[i]
		n := len(g.Stops)
		if n == 0 {
			continue
		}

		readyTimes := make([]PassengerReadyTime, 0, n)
		for k, stop := range g.Stops {
			distToEvent := remainingRouteMiles(ctx, g.Stops, k)
			travel := geo.TravelMinutes(distToEvent, buffer)
			loadBuf := float64(n-1-k) * loadTime
			readyTimes = append(readyTimes, PassengerReadyTime{
				PassengerID:     stop.PassengerID,
				ShouldBeReadyBy: minutesBefore(start, travel+loadBuf),
			})
		}

		routeTravel := geo.TravelMinutes(g.TotalRouteMiles, buffer)
		departure := minutesBefore(start, routeTravel+float64(n)*loadTime+departureSafetyMinutes)

		g.Schedule = &GroupSchedule{
			DriverDepartureTime:  departure,
			ReadyTimes:           readyTimes,
			EstimatedArrivalTime: minutesBefore(start, arrivalMarginMinutes),
		}
	}
}

// remainingRouteMiles sums the legs from stop k through the later stops and
// on to the event.
func remainingRouteMiles(ctx *MatcherContext, stops []RouteStop, k int) float64 {
	dist := 0.0
	prev := stops[k].PassengerID
	for j := k + 1; j < len(stops); j++ {
		dist += ctx.Distance(prev, stops[j].PassengerID)
		prev = stops[j].PassengerID
	}
	return dist + ctx.Distance(prev, EventLocationID)
}
