// Package condition implements the persistent status conditions a battler can
// carry: infliction from move effect text, end-of-turn damage, and the
// one-status-per-side rule.
package condition

import (
	"fmt"
	"strings"
)

// Status is a persistent battle condition. At most one is active per side.
type Status int

const (
	None Status = iota
	Paralysis
	Burn
	Poison
)

// Fixed probabilities and damage divisors.
const (
	// InflictChance is the probability that a keyword-matched effect lands.
	InflictChance = 0.2
	// ParalysisSkipChance is the probability a paralyzed battler loses its attack.
	ParalysisSkipChance = 0.25
	// BurnDivisor and PoisonDivisor scale end-of-turn damage from current health.
	BurnDivisor   = 16
	PoisonDivisor = 8
)

// Def is the static description of one Status.
type Def struct {
	Status Status
	// ID is the stable identifier used in configuration and scripts.
	ID string
	// Keyword is matched case-insensitively against move effect text.
	Keyword string
	// Adjective completes "X is now ..." and "X is ...".
	Adjective string
	// Divisor is the end-of-turn damage divisor; 0 means no end-of-turn damage.
	Divisor int
}

// defs is ordered by keyword priority: the first matching keyword wins.
var defs = []Def{
	{Status: Paralysis, ID: "paralysis", Keyword: "paralyze", Adjective: "paralyzed"},
	{Status: Burn, ID: "burn", Keyword: "burn", Adjective: "burned", Divisor: BurnDivisor},
	{Status: Poison, ID: "poison", Keyword: "poison", Adjective: "poisoned", Divisor: PoisonDivisor},
}

// Defs returns the status definitions in keyword-priority order.
func Defs() []Def {
	out := make([]Def, len(defs))
	copy(out, defs)
	return out
}

// Lookup returns the Def for s, or (Def{}, false) for None or unknown values.
func Lookup(s Status) (Def, bool) {
	for _, d := range defs {
		if d.Status == s {
			return d, true
		}
	}
	return Def{}, false
}

// String returns the status ID, or "none".
func (s Status) String() string {
	if d, ok := Lookup(s); ok {
		return d.ID
	}
	return "none"
}

// Parse converts an ID ("paralysis", "burn", "poison", "none" or "") to a Status.
// Matching is case-insensitive.
func Parse(id string) (Status, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || id == "none" {
		return None, nil
	}
	for _, d := range defs {
		if d.ID == id {
			return d.Status, nil
		}
	}
	return None, fmt.Errorf("unknown status %q", id)
}
