// Package lod picks the active level of detail for a viewer distance.
package lod

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyThresholds    = errors.New("threshold list is empty")
	ErrNegativeThreshold  = errors.New("threshold is negative")
	ErrNonFiniteThreshold = errors.New("threshold is not finite")
	ErrUnsortedThresholds = errors.New("thresholds are not in non-decreasing order")
)

// Select returns the largest index i with thresholds[i] <= distance. Distances
// below thresholds[0] select index 0. Among equal thresholds the later index wins.
//
// ok is false when no decision can be made: the list is empty or the distance
// is NaN or infinite. Callers keep their previous state in that case.
func Select(thresholds []float64, distance float64) (index int, ok bool) {
	if len(thresholds) == 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return 0, false
	}
	// first index whose threshold exceeds the distance
	upper := sort.Search(len(thresholds), func(i int) bool {
		return thresholds[i] > distance
	})
	if upper == 0 {
		return 0, true
	}
	return upper - 1, true
}

// Validate reports whether thresholds form a usable LOD table.
func Validate(thresholds []float64) error {
	if len(thresholds) == 0 {
		return ErrEmptyThresholds
	}
	for i, t := range thresholds {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("index %d: %w", i, ErrNonFiniteThreshold)
		}
		if t < 0 {
			return fmt.Errorf("index %d (%g): %w", i, t, ErrNegativeThreshold)
		}
		if i > 0 && t < thresholds[i-1] {
			return fmt.Errorf("index %d (%g < %g): %w", i, t, thresholds[i-1], ErrUnsortedThresholds)
		}
	}
	return nil
}
