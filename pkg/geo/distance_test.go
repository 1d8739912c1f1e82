package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
	}{
		{
			name: "midtown to downtown manhattan",
			lat1: 40.7580, lng1: -73.9855,
			lat2: 40.7128, lng2: -74.0060,
			want: 3.302495,
		},
		{
			name: "san francisco to los angeles",
			lat1: 37.7749, lng1: -122.4194,
			lat2: 34.0522, lng2: -118.2437,
			want: 347.442845,
		},
		{
			name: "one degree of latitude",
			lat1: 40.0, lng1: -74.0,
			lat2: 41.0, lng2: -74.0,
			want: 69.097585,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

func TestHaversineIdenticalPoints(t *testing.T) {
	got := Haversine(40.7580, -73.9855, 40.7580, -73.9855)
	assert.Zero(t, got)
}

func TestHaversineSymmetry(t *testing.T) {
	ab := Haversine(40.7580, -73.9855, 34.0522, -118.2437)
	ba := Haversine(34.0522, -118.2437, 40.7580, -73.9855)
	assert.InDelta(t, ab, ba, 1e-9)
}

func TestHaversineAntipodalIsFinite(t *testing.T) {
	got := Haversine(0, 0, 0, 180)
	assert.False(t, math.IsInf(got, 1))
	assert.InDelta(t, 12437.565315, got, 0.001)
}

func TestRoadDistanceAppliesWindingFactor(t *testing.T) {
	straight := Haversine(40.7580, -73.9855, 40.7128, -74.0060)
	road := RoadDistance(40.7580, -73.9855, 40.7128, -74.0060)
	assert.InDelta(t, straight*1.4, road, 1e-9)
}

func TestDynamicSpeedMPH(t *testing.T) {
	tests := []struct {
		name  string
		miles float64
		want  float64
	}{
		{"short trip uses local speed", 2.0, 20.0},
		{"just under short boundary", 4.999, 20.0},
		{"short boundary moves to arterial speed", 5.0, 35.0},
		{"medium trip", 10.0, 35.0},
		{"just under medium boundary", 14.999, 35.0},
		{"medium boundary moves to highway speed", 15.0, 55.0},
		{"long trip", 100.0, 55.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DynamicSpeedMPH(tt.miles))
		})
	}
}

func TestTravelMinutes(t *testing.T) {
	// 4.623494 road miles at 20 mph with a 1.3 traffic buffer.
	road := RoadDistance(40.7580, -73.9855, 40.7128, -74.0060)
	got := TravelMinutes(road, 1.3)
	assert.InDelta(t, 18.031625, got, 0.001)

	// Zero distance takes zero time regardless of buffer.
	assert.Zero(t, TravelMinutes(0, 1.3))
}

func TestTravelMinutesUnbuffered(t *testing.T) {
	// 10 miles at 35 mph is ~17.14 minutes with no buffer.
	got := TravelMinutes(10.0, 1.0)
	assert.InDelta(t, 17.142857, got, 0.0001)
}

func TestTravelMinutesInfiniteDistance(t *testing.T) {
	got := TravelMinutes(math.Inf(1), 1.3)
	assert.True(t, math.IsInf(got, 1))
}
