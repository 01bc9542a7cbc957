// Package engine implements the room assignment engine: per-category
// best-fit placement of reservations onto physical rooms under capacity,
// sharing, and check-in lock constraints.
package engine

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"cat-hotel-backend/internal/interval"
	"cat-hotel-backend/internal/model"
)

// Engine computes and persists room assignments for one room category at a
// time. It holds no state across calls; callers must not run two rebalances
// for the same category concurrently against the same storage.
type Engine struct {
	repo Repository
	now  func() time.Time
}

// New creates an engine over the given repository. Pass a store bound to an
// existing transaction to compose a rebalance with other writes.
func New(repo Repository) *Engine {
	return &Engine{repo: repo, now: time.Now}
}

// Rebalance recomputes the assignment of every movable reservation in the
// category and writes the deltas. It is all-or-nothing: a placement failure
// leaves the stored assignments untouched.
func (e *Engine) Rebalance(ctx context.Context, roomTypeID int64) error {
	rt, err := e.repo.GetRoomType(ctx, roomTypeID)
	if err != nil {
		return fmt.Errorf("failed to load room type %d: %w", roomTypeID, err)
	}
	if rt == nil || !rt.Active {
		log.Printf("rebalance: room type %d is missing or inactive, skipping", roomTypeID)
		return nil
	}

	roomIDs, roomSet := activeRooms(rt)
	if len(roomIDs) == 0 {
		log.Printf("rebalance: room type %d has no active rooms, skipping", roomTypeID)
		return nil
	}

	reservations, err := e.repo.ListInScopeReservations(ctx, roomTypeID)
	if err != nil {
		return fmt.Errorf("failed to load reservations for room type %d: %w", roomTypeID, err)
	}

	// Partition into pinned allocations and movable candidates. Movable
	// reservations always get a fresh assignment row, so any existing row
	// of theirs is queued for deletion up front.
	committed := make(map[int64][]Allocation, len(roomIDs))
	var candidates []Allocation
	var staleReservationIDs []int64

	for i := range reservations {
		res := &reservations[i]
		alloc := Allocation{
			ReservationID: res.ID,
			CustomerID:    res.CustomerID,
			Span:          interval.Span{Start: res.CheckIn, End: res.CheckOut},
			Occupants:     res.OccupantCount(),
			AllowSharing:  res.AllowSharing,
		}

		if res.Locked() && res.Assignment != nil {
			if roomSet[res.Assignment.RoomID] {
				committed[res.Assignment.RoomID] = append(committed[res.Assignment.RoomID], alloc)
				continue
			}
			// A locked assignment pointing at a room that left the
			// category is a capacity-planning fault. Repair by demoting
			// the reservation to a movable candidate.
			log.Printf("rebalance: reservation %d is locked to room %d which is no longer in category %d, reassigning",
				res.ID, res.Assignment.RoomID, roomTypeID)
			staleReservationIDs = append(staleReservationIDs, res.ID)
		} else if res.Assignment != nil {
			staleReservationIDs = append(staleReservationIDs, res.ID)
		}
		candidates = append(candidates, alloc)
	}

	// A party larger than the room capacity can never be placed; report it
	// before attempting placement rather than as a generic no-fit.
	for _, cand := range candidates {
		if cand.Occupants > rt.Capacity {
			return &CapacityExceededError{
				ReservationID: cand.ReservationID,
				Occupants:     cand.Occupants,
				Capacity:      rt.Capacity,
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return lessByPlacementPriority(candidates[i], candidates[j])
	})

	plan := make([]model.RoomAssignment, 0, len(candidates))
	for _, cand := range candidates {
		// Rooms already hosting this customer's overlapping stays are tried
		// first so a returning or extending customer's cats stay together.
		roomID, _, ok := BestFit(preferredRooms(roomIDs, committed, cand), rt.Capacity, committed, cand)
		if !ok {
			roomID, _, ok = BestFit(roomIDs, rt.Capacity, committed, cand)
		}
		if !ok {
			return &NoRoomAvailableError{ReservationID: cand.ReservationID, RoomTypeID: roomTypeID}
		}
		committed[roomID] = append(committed[roomID], cand)
		plan = append(plan, planned(cand, roomID))
	}

	// Commit: all deletions and creations land in one transaction, only
	// after every candidate has a room.
	return e.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.DeleteTerminalAssignments(ctx, roomTypeID); err != nil {
			return fmt.Errorf("failed to clear terminal assignments for room type %d: %w", roomTypeID, err)
		}
		if err := tx.DeleteAssignments(ctx, staleReservationIDs); err != nil {
			return fmt.Errorf("failed to clear superseded assignments for room type %d: %w", roomTypeID, err)
		}
		if len(plan) == 0 {
			return nil
		}
		if err := tx.CreateAssignments(ctx, plan); err != nil {
			return fmt.Errorf("failed to create assignments for room type %d: %w", roomTypeID, err)
		}
		return nil
	})
}

// LockAssignmentsForReservation pins the reservation's current assignment
// so later rebalances never move it. Called by whatever drives the status
// transition to checked-in. Idempotent; a reservation without an
// assignment is a no-op.
func (e *Engine) LockAssignmentsForReservation(ctx context.Context, reservationID int64) error {
	if err := e.repo.LockAssignments(ctx, reservationID, e.now().UTC()); err != nil {
		return fmt.Errorf("failed to lock assignments for reservation %d: %w", reservationID, err)
	}
	return nil
}

// activeRooms returns the category's active rooms in their stored order,
// plus a membership set for lock validation.
func activeRooms(rt *model.RoomType) ([]int64, map[int64]bool) {
	ids := make([]int64, 0, len(rt.Rooms))
	set := make(map[int64]bool, len(rt.Rooms))
	for _, room := range rt.Rooms {
		if !room.Active {
			continue
		}
		ids = append(ids, room.ID)
		set[room.ID] = true
	}
	return ids, set
}

// preferredRooms returns, in category order, the rooms already hosting an
// allocation for the candidate's customer that overlaps the candidate.
func preferredRooms(roomIDs []int64, committed map[int64][]Allocation, cand Allocation) []int64 {
	var preferred []int64
	for _, id := range roomIDs {
		for _, a := range committed[id] {
			if a.CustomerID == cand.CustomerID && interval.Overlaps(a.Span, cand.Span) {
				preferred = append(preferred, id)
				break
			}
		}
	}
	return preferred
}

func planned(cand Allocation, roomID int64) model.RoomAssignment {
	return model.RoomAssignment{
		ReservationID: cand.ReservationID,
		RoomID:        roomID,
		CheckIn:       cand.Span.Start,
		CheckOut:      cand.Span.End,
		Occupants:     cand.Occupants,
		AllowSharing:  cand.AllowSharing,
	}
}
