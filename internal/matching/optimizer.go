package matching

import (
	"math"

	"github.com/google/uuid"

	"github.com/ridealong/event-carpool/pkg/geo"
)

// nearestNeighborOrder re-orders assigned passenger IDs by repeatedly
// visiting the closest unvisited stop, starting from the route origin.
// Ties keep the earlier assignment, so the order is deterministic.
func nearestNeighborOrder(ctx *MatcherContext, driverID string, assigned []string) []string {
	remaining := make([]string, len(assigned))
	copy(remaining, assigned)

	ordered := make([]string, 0, len(assigned))
	current := ctx.routeOrigin(driverID)
	for len(remaining) > 0 {
		nearest := 0
		nearestDist := math.Inf(1)
		for i, id := range remaining {
			if d := ctx.Distance(current, id); d < nearestDist {
				nearest = i
				nearestDist = d
			}
		}
		current = remaining[nearest]
		ordered = append(ordered, current)
		remaining = append(remaining[:nearest], remaining[nearest+1:]...)
	}
	return ordered
}

// OptimizeRoutes turns the ledger's assignments into ride groups with
// ordered stops, one group per input driver. Drivers without passengers
// produce an empty group rather than disappearing from the result.
func OptimizeRoutes(ctx *MatcherContext) []RideGroup {
	groups := make([]RideGroup, 0, len(ctx.Drivers))
	for _, d := range ctx.Drivers {
		groups = append(groups, buildRideGroup(ctx, d))
	}
	return groups
}

func buildRideGroup(ctx *MatcherContext, d Driver) RideGroup {
	group := RideGroup{
		ID:         uuid.New(),
		Driver:     d,
		Direction:  ctx.Direction,
		Passengers: []Passenger{},
		Stops:      []RouteStop{},
	}

	assigned := ctx.Ledger.Assignments(d.ID)
	if len(assigned) == 0 {
		return group
	}

	ordered := nearestNeighborOrder(ctx, d.ID, assigned)

	prev := ctx.routeOrigin(d.ID)
	cumulative := 0.0
	for i, id := range ordered {
		p, ok := ctx.PassengerByID(id)
		if !ok {
			continue
		}
		leg := ctx.Distance(prev, id)
		cumulative += leg

		stop := RouteStop{
			PassengerID:        id,
			StopOrder:          i + 1,
			DetourAdded:        leg,
			DistanceFromOrigin: cumulative,
			Coordinate:         p.HomeCoordinate,
			Address:            p.Address,
		}
		order := i + 1
		if ctx.Direction.Outbound() {
			stop.DropOffOrder = &order
		} else {
			stop.PickupOrder = &order
		}

		group.Stops = append(group.Stops, stop)
		group.Passengers = append(group.Passengers, p)
		prev = id
	}

	total := cumulative + ctx.Distance(prev, ctx.routeTerminus(d.ID))
	group.TotalRouteMiles = total
	group.TotalDetourMiles = math.Max(0, total-ctx.DriverDirectDistance(d.ID))
	group.EstimatedDurationMinutes = geo.TravelMinutes(total, ctx.Config.Timing.TrafficBufferMultiplier) +
		float64(len(group.Stops))*ctx.Config.Timing.LoadTimeMinutes

	return group
}
