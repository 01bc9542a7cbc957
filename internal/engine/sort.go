package engine

// lessByPlacementPriority orders movable candidates for the greedy pass:
// exclusive requests first (they are the hardest to place and must be tried
// while more rooms are free), then larger parties, then earlier check-in.
// Used with a stable sort so equal candidates keep their load order.
func lessByPlacementPriority(a, b Allocation) bool {
	if a.AllowSharing != b.AllowSharing {
		return !a.AllowSharing
	}
	if a.Occupants != b.Occupants {
		return a.Occupants > b.Occupants
	}
	return a.Span.Start.Before(b.Span.Start)
}
