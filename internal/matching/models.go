package matching

import (
	"time"

	"github.com/google/uuid"
)

// EventLocationID is the reserved identifier the distance matrix uses for
// the event coordinate. Participant IDs must never collide with it.
const EventLocationID = "event"

// AlgorithmVersion is reported in result metadata so stored results can be
// traced back to the matching rules that produced them.
const AlgorithmVersion = "2.0.0"

// TripDirection indicates which way a matching run routes its groups.
type TripDirection string

const (
	// DirectionFromEvent routes drivers from the event toward passenger
	// homes (outbound).
	DirectionFromEvent TripDirection = "FROM_EVENT"
	// DirectionToEvent routes drivers from their homes, through pickups,
	// to the event (inbound).
	DirectionToEvent TripDirection = "TO_EVENT"
)

// Valid reports whether the direction is one of the two wire values.
func (d TripDirection) Valid() bool {
	return d == DirectionFromEvent || d == DirectionToEvent
}

// Outbound reports whether the trip departs from the event.
func (d TripDirection) Outbound() bool { return d == DirectionFromEvent }

// Inbound reports whether the trip arrives at the event.
func (d TripDirection) Inbound() bool { return d == DirectionToEvent }

// Gender values carried on participants.
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderNonBinary      Gender = "non_binary"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

// GenderPreference expresses a passenger's constraint on the driver.
type GenderPreference string

const (
	PreferenceSameGender GenderPreference = "same_gender"
	PreferenceAny        GenderPreference = "any"
)

// Coordinate is a WGS84 point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Person holds the attributes passengers and drivers share.
type Person struct {
	ID                 string      `json:"id" binding:"required"`
	Name               string      `json:"name"`
	Gender             Gender      `json:"gender"`
	Age                int         `json:"age"`
	HomeCoordinate     *Coordinate `json:"homeCoordinate,omitempty"`
	Address            string      `json:"address,omitempty"`
	LeavingEarly       bool        `json:"leavingEarly"`
	EarlyDepartureTime *time.Time  `json:"earlyDepartureTime,omitempty"`
}

// Passenger is a person who may need a seat.
type Passenger struct {
	Person
	NeedsRide        bool             `json:"needsRide"`
	GenderPreference GenderPreference `json:"genderPreference,omitempty"`
}

// Driver is a person who may offer seats.
type Driver struct {
	Person
	CanDrive       bool `json:"canDrive"`
	AvailableSeats int  `json:"availableSeats"`
}

// EventContext carries the event-side inputs of a matching run.
type EventContext struct {
	Coordinate Coordinate    `json:"coordinate"`
	StartTime  *time.Time    `json:"startTime,omitempty"`
	EndTime    *time.Time    `json:"endTime,omitempty"`
	Direction  TripDirection `json:"direction"`
}

// RouteStop is one waypoint of an optimized ride group route. Exactly one
// of DropOffOrder and PickupOrder is set, depending on direction.
type RouteStop struct {
	PassengerID        string      `json:"passengerId"`
	StopOrder          int         `json:"stopOrder"`
	DropOffOrder       *int        `json:"dropOffOrder,omitempty"`
	PickupOrder        *int        `json:"pickupOrder,omitempty"`
	DetourAdded        float64     `json:"detourAddedMiles"`
	DistanceFromOrigin float64     `json:"distanceFromOriginMiles"`
	Coordinate         *Coordinate `json:"coordinate,omitempty"`
	Address            string      `json:"address,omitempty"`
}

// PassengerReadyTime pairs a passenger with the instant they must be ready
// for pickup.
type PassengerReadyTime struct {
	PassengerID     string    `json:"passengerId"`
	ShouldBeReadyBy time.Time `json:"shouldBeReadyBy"`
}

// GroupSchedule is the inbound timing plan for one ride group.
type GroupSchedule struct {
	DriverDepartureTime  time.Time            `json:"driverDepartureTime"`
	ReadyTimes           []PassengerReadyTime `json:"readyTimes"`
	EstimatedArrivalTime time.Time            `json:"estimatedArrivalTime"`
}

// RideGroup is one driver's assignment: ordered passengers, waypoints and,
// for inbound runs, a schedule. Drivers that received no passengers still
// produce a group with empty passenger and stop lists.
type RideGroup struct {
	ID                       uuid.UUID      `json:"id"`
	Driver                   Driver         `json:"driver"`
	Direction                TripDirection  `json:"direction"`
	Passengers               []Passenger    `json:"passengers"`
	Stops                    []RouteStop    `json:"stops"`
	TotalRouteMiles          float64        `json:"totalRouteMiles"`
	TotalDetourMiles         float64        `json:"totalDetourMiles"`
	EstimatedDurationMinutes float64        `json:"estimatedDurationMinutes"`
	Schedule                 *GroupSchedule `json:"schedule,omitempty"`
}

// UnmatchedReason explains why a passenger could not be seated.
type UnmatchedReason string

const (
	ReasonNoAvailableDrivers     UnmatchedReason = "no_available_drivers"
	ReasonExceedsDetourLimit     UnmatchedReason = "exceeds_detour_limit"
	ReasonGenderPreferenceUnmet  UnmatchedReason = "gender_preference_unmet"
	ReasonNoSeatsAvailable       UnmatchedReason = "no_seats_available"
	ReasonCheckedInTooLate       UnmatchedReason = "checked_in_too_late"
	ReasonEarlyDepartureMismatch UnmatchedReason = "early_departure_mismatch"
	ReasonCannotArriveOnTime     UnmatchedReason = "cannot_arrive_on_time"
)

// suggestedActions maps each unmatched reason to a short operator hint.
var suggestedActions = map[UnmatchedReason]string{
	ReasonNoAvailableDrivers:     "Recruit more drivers or arrange alternative transport.",
	ReasonExceedsDetourLimit:     "Increase the detour limit or find a closer driver.",
	ReasonGenderPreferenceUnmet:  "Add drivers matching the requested gender or relax enforcement.",
	ReasonNoSeatsAvailable:       "Add drivers or larger vehicles.",
	ReasonCheckedInTooLate:       "Ask the passenger to check in earlier next time.",
	ReasonEarlyDepartureMismatch: "Find a driver who is also leaving early.",
	ReasonCannotArriveOnTime:     "Move the passenger closer to the route or adjust the event start.",
}

// SuggestedActionFor returns the operator hint for an unmatched reason.
func SuggestedActionFor(reason UnmatchedReason) string {
	return suggestedActions[reason]
}

// UnmatchedPassenger is a passenger the run could not seat, with the reason.
type UnmatchedPassenger struct {
	Passenger       Passenger       `json:"passenger"`
	Reason          UnmatchedReason `json:"reason"`
	SuggestedAction string          `json:"suggestedAction"`
}

// ResultMetadata summarizes a matching run. Totals count only the filtered
// participants (needsRide passengers, seat-offering drivers).
type ResultMetadata struct {
	TotalPassengers    int           `json:"totalPassengers"`
	TotalDrivers       int           `json:"totalDrivers"`
	MatchedPassengers  int           `json:"matchedPassengers"`
	MatchedDrivers     int           `json:"matchedDrivers"`
	MatchingDurationMs int64         `json:"matchingDurationMs"`
	AlgorithmVersion   string        `json:"algorithmVersion"`
	PriorityOrder      []string      `json:"priorityOrder"`
	TripDirection      TripDirection `json:"tripDirection"`
}

// MatchResult is the full outcome of one matching run.
type MatchResult struct {
	ID                  uuid.UUID            `json:"id"`
	TripDirection       TripDirection        `json:"tripDirection"`
	StartLocation       Coordinate           `json:"startLocation"`
	EventStartTime      *time.Time           `json:"eventStartTime,omitempty"`
	RideGroups          []RideGroup          `json:"rideGroups"`
	UnmatchedPassengers []UnmatchedPassenger `json:"unmatchedPassengers"`
	UnmatchedDrivers    []Driver             `json:"unmatchedDrivers"`
	Metadata            ResultMetadata       `json:"metadata"`
	CreatedAt           time.Time            `json:"createdAt"`
}

// MatchRequest is the transport-level input of a matching run.
type MatchRequest struct {
	TripDirection   TripDirection    `json:"tripDirection" binding:"required"`
	EventLocation   Coordinate       `json:"eventLocation" binding:"required"`
	EventStartTime  *time.Time       `json:"eventStartTime,omitempty"`
	EventEndTime    *time.Time       `json:"eventEndTime,omitempty"`
	Passengers      []Passenger      `json:"passengers"`
	Drivers         []Driver         `json:"drivers"`
	ConfigProfile   string           `json:"configProfile,omitempty"`
	ConfigOverrides *ConfigOverrides `json:"configOverrides,omitempty"`
}
