package geo

import (
	"github.com/uber/h3-go/v4"
)

// H3 resolution levels.
// See: https://h3geo.org/docs/core-library/restable
const (
	// H3ResolutionMatching tags geocoded stops for spatial grouping (~175m edge).
	H3ResolutionMatching = 9

	// H3ResolutionNeighborhood is used for neighborhood-level aggregation (~1.2 km edge).
	H3ResolutionNeighborhood = 7
)

// LatLngToCell converts latitude/longitude to an H3 cell index at the given
// resolution. Returns 0 on invalid input.
func LatLngToCell(lat, lng float64, resolution int) h3.Cell {
	latLng := h3.NewLatLng(lat, lng)
	cell, err := h3.LatLngToCell(latLng, resolution)
	if err != nil {
		return 0
	}
	return cell
}

// CellString returns the hex string of the H3 cell containing the point, or
// empty when the point cannot be indexed.
func CellString(lat, lng float64, resolution int) string {
	cell := LatLngToCell(lat, lng, resolution)
	if cell == 0 {
		return ""
	}
	return cell.String()
}

// SameCell reports whether two points fall in the same H3 cell at the given
// resolution.
func SameCell(lat1, lng1, lat2, lng2 float64, resolution int) bool {
	a := LatLngToCell(lat1, lng1, resolution)
	b := LatLngToCell(lat2, lng2, resolution)
	return a != 0 && a == b
}
