package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// ValidateCoordinates
// ---------------------------------------------------------------------------

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		wantErr  bool
	}{
		{"valid san francisco", 37.7749, -122.4194, false},
		{"valid equator meridian", 0, 0, false},
		{"valid extremes", 90, 180, false},
		{"valid negative extremes", -90, -180, false},
		{"latitude too high", 90.01, 0, true},
		{"latitude too low", -90.01, 0, true},
		{"longitude too high", 0, 180.01, true},
		{"longitude too low", 0, -180.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Custom struct rules
// ---------------------------------------------------------------------------

type directionProbe struct {
	Direction string `validate:"trip_direction"`
}

func TestTripDirectionRule(t *testing.T) {
	assert.NoError(t, ValidateStruct(directionProbe{Direction: "TO_EVENT"}))
	assert.NoError(t, ValidateStruct(directionProbe{Direction: "FROM_EVENT"}))
	assert.Error(t, ValidateStruct(directionProbe{Direction: "SIDEWAYS"}))
	assert.Error(t, ValidateStruct(directionProbe{Direction: ""}))
}

type genderProbe struct {
	Gender     string `validate:"gender"`
	Preference string `validate:"gender_preference"`
}

func TestGenderRules(t *testing.T) {
	valid := genderProbe{Gender: "non_binary", Preference: "same_gender"}
	assert.NoError(t, ValidateStruct(valid))

	assert.Error(t, ValidateStruct(genderProbe{Gender: "other", Preference: "any"}))
	assert.Error(t, ValidateStruct(genderProbe{Gender: "male", Preference: "same"}))
}

type ageProbe struct {
	Age int `validate:"adult_age"`
}

func TestAdultAgeRule(t *testing.T) {
	assert.NoError(t, ValidateStruct(ageProbe{Age: 18}))
	assert.NoError(t, ValidateStruct(ageProbe{Age: 80}))
	assert.Error(t, ValidateStruct(ageProbe{Age: 17}))
}

func TestLatitudeLongitudeRules(t *testing.T) {
	assert.NoError(t, ValidateStruct(CoordinateInput{Lat: 37.78, Lng: -122.42}))
	assert.Error(t, ValidateStruct(CoordinateInput{Lat: 91, Lng: 0}))
	assert.Error(t, ValidateStruct(CoordinateInput{Lat: 0, Lng: -181}))
}

// ---------------------------------------------------------------------------
// ValidationError
// ---------------------------------------------------------------------------

func TestValidationErrorAggregation(t *testing.T) {
	ve := &ValidationError{}
	assert.False(t, ve.HasErrors())

	ve.AddError("age", "must be at least 18")
	require.True(t, ve.HasErrors())
	assert.Contains(t, ve.Error(), "age")
}

func TestValidateStructReturnsValidationError(t *testing.T) {
	err := ValidateStruct(GeocodeRequest{Address: ""})
	require.Error(t, err)

	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.True(t, ve.HasErrors())
}

// ---------------------------------------------------------------------------
// Misc helpers
// ---------------------------------------------------------------------------

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateDateRange(start, start.Add(time.Hour)))
	assert.Error(t, ValidateDateRange(start, start.Add(-time.Hour)))
}

func TestValidateStringLength(t *testing.T) {
	assert.NoError(t, ValidateStringLength("hello", 1, 10))
	assert.Error(t, ValidateStringLength("  ", 1, 10))
	assert.Error(t, ValidateStringLength("toolongvalue", 1, 5))
}

func TestValidateUUID(t *testing.T) {
	assert.True(t, ValidateUUID("a2f6f7d0-4c8e-4c0a-9b1d-1f2e3d4c5b6a"))
	assert.False(t, ValidateUUID("not-a-uuid"))
}

func TestValidateDistance(t *testing.T) {
	assert.NoError(t, ValidateDistance(12.5))
	assert.Error(t, ValidateDistance(-0.1))
	assert.Error(t, ValidateDistance(20000))
}
