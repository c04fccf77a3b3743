package condition

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/game/dice"
)

// Engine applies status infliction and end-of-turn effects.
// It holds no per-battle state.
type Engine struct {
	classifier Classifier
	src        dice.Source
	logger     *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: src must be non-nil. A nil classifier selects KeywordClassifier;
// a nil logger discards roll logs.
func NewEngine(classifier Classifier, src dice.Source, logger *zap.Logger) *Engine {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{classifier: classifier, src: src, logger: logger}
}

// roll draws once through dice.Chance and logs the audit trail at debug.
func (e *Engine) roll(label string, p float64) bool {
	r := dice.Chance(e.src, label, p)
	e.logger.Debug("chance roll",
		zap.String("label", r.Label),
		zap.Float64("threshold", r.Threshold),
		zap.Float64("draw", r.Draw),
		zap.Bool("success", r.Success),
	)
	return r.Success
}

// AttemptInflict classifies effect and, on a match, rolls InflictChance.
// A nil effect or a non-matching one returns None without drawing.
//
// Postcondition: At most one value is drawn from the Source.
func (e *Engine) AttemptInflict(effect *string) Status {
	if effect == nil {
		return None
	}
	candidate := e.classifier.Classify(*effect)
	if candidate == None {
		return None
	}
	if e.roll("inflict:"+candidate.String(), InflictChance) {
		return candidate
	}
	return None
}

// SkipsTurn rolls ParalysisSkipChance for a paralyzed battler. Any other status
// returns false without drawing.
func (e *Engine) SkipsTurn(s Status) bool {
	if s != Paralysis {
		return false
	}
	return e.roll("paralysis", ParalysisSkipChance)
}

// EndOfTurnDamage returns the damage s deals at the end of a turn for the given
// current health: max(1, health/Divisor) for damaging statuses, else 0.
//
// Postcondition: Returns 0 for None and Paralysis; >= 1 for Burn and Poison.
func EndOfTurnDamage(s Status, health int) int {
	d, ok := Lookup(s)
	if !ok || d.Divisor == 0 {
		return 0
	}
	dmg := floorDiv(health, d.Divisor)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// ApplyEndOfTurn subtracts the status's end-of-turn damage from health and
// returns the new health with a narration fragment that reports the exact
// damage. Statuses without end-of-turn damage return health unchanged and an
// empty fragment.
func ApplyEndOfTurn(s Status, health int) (int, string) {
	dmg := EndOfTurnDamage(s, health)
	if dmg == 0 {
		return health, ""
	}
	return health - dmg, fmt.Sprintf("is hurt by its %s and loses %d HP", s, dmg)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
