package engine

import (
	"cat-hotel-backend/internal/interval"
)

// Allocation is one reservation's claim on room capacity over its stay.
// The working set of allocations per room is private to a single rebalance
// and discarded when it returns.
type Allocation struct {
	ReservationID int64
	CustomerID    int64
	Span          interval.Span
	Occupants     int
	AllowSharing  bool
}

// FitResult is the outcome of evaluating a candidate against one room.
// Wasted is only meaningful when Fits is true; a non-fit never wins a
// best-fit comparison.
type FitResult struct {
	Fits   bool
	Wasted int
}

// CanFit decides whether the candidate can occupy a room of the given
// capacity alongside the already committed allocations, and how much
// capacity would be left unused at the candidate's peak overlap.
func CanFit(capacity int, committed []Allocation, cand Allocation) FitResult {
	var overlapping []Allocation
	for _, a := range committed {
		if interval.Overlaps(a.Span, cand.Span) {
			overlapping = append(overlapping, a)
		}
	}

	// An exclusive candidate tolerates no temporal co-occupants at all.
	if !cand.AllowSharing {
		if len(overlapping) > 0 {
			return FitResult{}
		}
		return FitResult{Fits: true, Wasted: clampWaste(capacity - cand.Occupants)}
	}

	// A sharing candidate is still blocked by any concurrent exclusive guest.
	for _, a := range overlapping {
		if !a.AllowSharing {
			return FitResult{}
		}
	}

	// Occupancy only changes at interval endpoints, so sampling the summed
	// load at each breakpoint inside the candidate's window is exact.
	spans := make([]interval.Span, len(overlapping))
	for i, a := range overlapping {
		spans[i] = a.Span
	}

	peak := 0
	for _, bp := range interval.Breakpoints(cand.Span, spans) {
		load := cand.Occupants
		for _, a := range overlapping {
			if a.Span.Covers(bp) {
				load += a.Occupants
			}
		}
		if load > peak {
			peak = load
		}
	}

	if peak > capacity {
		return FitResult{}
	}
	return FitResult{Fits: true, Wasted: clampWaste(capacity - peak)}
}

// BestFit returns the room, among roomIDs in order, where the candidate
// fits with the least wasted capacity. Ties go to the room encountered
// first. The bool result is false when no room fits.
func BestFit(roomIDs []int64, capacity int, committed map[int64][]Allocation, cand Allocation) (int64, FitResult, bool) {
	var (
		bestID int64
		best   FitResult
		found  bool
	)
	for _, id := range roomIDs {
		fit := CanFit(capacity, committed[id], cand)
		if !fit.Fits {
			continue
		}
		if !found || fit.Wasted < best.Wasted {
			bestID, best, found = id, fit, true
		}
	}
	return bestID, best, found
}

func clampWaste(w int) int {
	if w < 0 {
		return 0
	}
	return w
}
