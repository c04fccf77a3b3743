// Package dice provides the randomness abstraction used by the battle engine.
// Every probabilistic branch draws a uniform value in [0, 1) from a Source and
// compares it against a fixed threshold.
package dice

import "fmt"

// Source is the randomness provider for battle rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// ChanceResult holds the audit trail for a single threshold check.
//
// Postcondition: Success == (Draw < Threshold).
type ChanceResult struct {
	Label     string  // what the roll decides, e.g. "paralysis"
	Threshold float64 // probability of success
	Draw      float64 // value drawn from the Source
	Success   bool
}

// String returns a human-readable audit string in the format:
//
//	"paralysis 0.25 → 0.1300 = success"
//
// Precondition: r.Label is non-empty.
func (r ChanceResult) String() string {
	if r.Label == "" {
		panic("dice: ChanceResult.String() precondition violated: Label must be non-empty")
	}
	outcome := "failure"
	if r.Success {
		outcome = "success"
	}
	return fmt.Sprintf("%s %.2f → %.4f = %s", r.Label, r.Threshold, r.Draw, outcome)
}

// Chance draws once from src and reports whether the draw fell below p.
//
// Precondition: src must be non-nil; 0 <= p <= 1.
// Postcondition: Exactly one value is drawn from src.
func Chance(src Source, label string, p float64) ChanceResult {
	draw := src.Float64()
	return ChanceResult{
		Label:     label,
		Threshold: p,
		Draw:      draw,
		Success:   draw < p,
	}
}
