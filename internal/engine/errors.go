package engine

import "fmt"

// CapacityExceededError means a single reservation brings more cats than
// any room in its category can hold. Adding rooms or shrinking the party
// is the only way out; retrying the rebalance will not help.
type CapacityExceededError struct {
	ReservationID int64
	Occupants     int
	Capacity      int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("reservation %d needs capacity for %d cats but rooms in this category hold at most %d",
		e.ReservationID, e.Occupants, e.Capacity)
}

// NoRoomAvailableError means every reservation fits some room individually,
// but no feasible placement exists under current demand and sharing
// constraints. Retryable once other reservations change or capacity grows.
type NoRoomAvailableError struct {
	ReservationID int64
	RoomTypeID    int64
}

func (e *NoRoomAvailableError) Error() string {
	return fmt.Sprintf("no room in category %d can host reservation %d under current occupancy",
		e.RoomTypeID, e.ReservationID)
}
