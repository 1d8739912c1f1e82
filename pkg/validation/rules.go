package validation

import "time"

// Common validation rules and request structs

// PersonInput carries the shared participant fields of a match request.
type PersonInput struct {
	ID           string     `json:"id" validate:"required,min=1,max=100"`
	Name         string     `json:"name" validate:"omitempty,max=200"`
	Gender       string     `json:"gender" validate:"omitempty,gender"`
	Age          int        `json:"age" validate:"omitempty,adult_age"`
	Address      string     `json:"address" validate:"omitempty,max=500"`
	LeavingEarly bool       `json:"leaving_early"`
	EarlyLeaveAt *time.Time `json:"early_departure_time" validate:"omitempty"`
}

// CoordinateInput is a raw coordinate pair on the wire.
type CoordinateInput struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// GeocodeRequest asks the geocoding collaborator to resolve an address.
type GeocodeRequest struct {
	Address string `json:"address" validate:"required,min=3,max=500"`
}

// ReverseGeocodeRequest asks for the address at a coordinate.
type ReverseGeocodeRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// PaginationRequest represents common pagination parameters
type PaginationRequest struct {
	Limit   int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
	Offset  int    `json:"offset" validate:"omitempty,gte=0"`
	SortBy  string `json:"sort_by" validate:"omitempty,alpha"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

// ValidateDateRange validates that end date is after start date
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return &ValidationError{
			Errors: map[string]string{
				"date_range": "End date must be after start date",
			},
		}
	}
	return nil
}
