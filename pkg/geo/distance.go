package geo

import "math"

const (
	earthRadiusMiles = 3959.0

	// Straight-line distance understates real road routes, so every
	// great-circle result is scaled by a winding factor before it is
	// used for scoring or timing.
	roadWindingFactor = 1.4

	shortTripMiles  = 5.0
	mediumTripMiles = 15.0

	shortTripSpeedMPH  = 20.0
	mediumTripSpeedMPH = 35.0
	longTripSpeedMPH   = 55.0
)

// Haversine calculates the great-circle distance in statute miles between
// two coordinates given in decimal degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

// RoadDistance estimates the driving distance in miles between two
// coordinates by scaling the great-circle distance with the road winding
// factor.
func RoadDistance(lat1, lng1, lat2, lng2 float64) float64 {
	return Haversine(lat1, lng1, lat2, lng2) * roadWindingFactor
}

// DynamicSpeedMPH returns the assumed average speed for a trip of the given
// length. Short hops crawl through neighbourhood streets, medium trips mix
// arterials, and anything longer is assumed to reach highway speed.
func DynamicSpeedMPH(distanceMiles float64) float64 {
	switch {
	case distanceMiles < shortTripMiles:
		return shortTripSpeedMPH
	case distanceMiles < mediumTripMiles:
		return mediumTripSpeedMPH
	default:
		return longTripSpeedMPH
	}
}

// TravelMinutes estimates the driving time in minutes for a road distance,
// inflated by the traffic buffer multiplier. Infinite distances stay
// infinite so callers can treat unreachable stops uniformly.
func TravelMinutes(distanceMiles, trafficBuffer float64) float64 {
	if math.IsInf(distanceMiles, 1) {
		return math.Inf(1)
	}
	speed := DynamicSpeedMPH(distanceMiles)
	return (distanceMiles / speed) * 60.0 * trafficBuffer
}
