package combat

// TurnOrder returns (a, b) when a.Speed() >= b.Speed(), otherwise (b, a).
// Ties favour a. The order is decided once and holds for the whole battle.
func TurnOrder[T interface{ Speed() int }](a, b T) (first, second T) {
	if a.Speed() >= b.Speed() {
		return a, b
	}
	return b, a
}
