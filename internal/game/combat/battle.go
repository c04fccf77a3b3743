package combat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/pokemcp/internal/game/condition"
	"github.com/cory-johannsen/pokemcp/internal/game/dice"
	"github.com/cory-johannsen/pokemcp/internal/game/typechart"
)

// Phase is the battle state machine position.
type Phase int

const (
	Ongoing Phase = iota
	Fainted
	Complete
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case Ongoing:
		return "ongoing"
	case Fainted:
		return "fainted"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// Side is one battler's mutable state for the duration of a battle.
type Side struct {
	Combatant
	// Health starts at Combatant.HP() and may go negative before the faint check.
	Health int
	slot   condition.Slot
}

// Status returns the side's current status.
func (s *Side) Status() condition.Status { return s.slot.Status() }

// Result is the terminal output of a battle.
type Result struct {
	Pokemon1  string         `json:"pokemon1"`
	Pokemon2  string         `json:"pokemon2"`
	InitialHP map[string]int `json:"initial_hp"`
	Log       []string       `json:"battle_log"`
	Winner    string         `json:"winner"`
	// Turns is shown by the CLI and left out of the tool payload.
	Turns int `json:"-"`
}

// Option configures a Battle.
type Option func(*Battle)

// WithSource sets the randomness source. The default is a crypto source.
func WithSource(src dice.Source) Option {
	return func(b *Battle) { b.src = src }
}

// WithClassifier sets the status classifier. The default matches keywords.
func WithClassifier(c condition.Classifier) Option {
	return func(b *Battle) { b.classifier = c }
}

// WithChart sets the type chart. The default is typechart.Default().
func WithChart(c *typechart.Chart) Option {
	return func(b *Battle) { b.chart = c }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// Battle owns the state of one simulation. It is single-use and not safe for
// concurrent use.
//
// Simultaneous fainting cannot happen: the round stops at the first faint check
// that finds a side at or below zero, before the other side acts again.
type Battle struct {
	ID string

	sides         [2]*Side
	first, second *Side
	turn          int
	phase         Phase
	fainted       *Side
	log           []string

	src        dice.Source
	classifier condition.Classifier
	chart      *typechart.Chart
	status     *condition.Engine
	logger     *zap.Logger
}

// NewBattle prepares a battle between c1 and c2 and fixes the turn order.
//
// Postcondition: Phase() == Ongoing; Turn() == 1; the log is empty.
func NewBattle(c1, c2 Combatant, opts ...Option) *Battle {
	b := &Battle{
		ID:     uuid.NewString(),
		sides:  [2]*Side{{Combatant: c1, Health: c1.HP()}, {Combatant: c2, Health: c2.HP()}},
		turn:   1,
		phase:  Ongoing,
		logger: zap.NewNop(),
		chart:  typechart.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.src == nil {
		b.src = dice.NewCryptoSource()
	}
	b.logger = b.logger.With(zap.String("battle_id", b.ID))
	b.status = condition.NewEngine(b.classifier, b.src, b.logger)
	b.first, b.second = TurnOrder(b.sides[0], b.sides[1])

	b.logger.Debug("battle created",
		zap.String("first", b.first.Name),
		zap.Int("first_speed", b.first.Speed()),
		zap.String("second", b.second.Name),
		zap.Int("second_speed", b.second.Speed()),
	)
	return b
}

// Phase returns the current state machine phase.
func (b *Battle) Phase() Phase { return b.phase }

// Turn returns the current turn number, starting at 1.
func (b *Battle) Turn() int { return b.turn }

// Order returns the sides in acting order.
func (b *Battle) Order() (first, second *Side) { return b.first, b.second }

// Log returns a copy of the narration so far.
func (b *Battle) Log() []string {
	out := make([]string, len(b.log))
	copy(out, b.log)
	return out
}

// Step plays one full round. It returns true once a side has fainted.
//
// Precondition: Phase() == Ongoing.
// Postcondition: Either Phase() is still Ongoing and Turn() advanced by one,
// or Phase() == Fainted and the fainted side is recorded.
func (b *Battle) Step() bool {
	if b.phase != Ongoing {
		return true
	}
	b.emit("Turn %d:", b.turn)

	b.act(b.first, b.second)
	if b.endOfTurn(b.second) {
		return true
	}

	b.act(b.second, b.first)
	if b.endOfTurn(b.first) {
		return true
	}

	b.turn++
	return false
}

// Run plays rounds until a side faints and returns the result.
//
// Postcondition: Phase() == Complete; Result.Winner names the side left standing.
func (b *Battle) Run() Result {
	done := false
	for !done {
		done = b.Step()
	}
	winner := b.first
	if b.fainted == b.first {
		winner = b.second
	}
	b.emit("%s wins!", display(winner.Name))
	b.phase = Complete

	b.logger.Info("battle complete",
		zap.String("winner", winner.Name),
		zap.Int("turns", b.turn),
	)
	return Result{
		Pokemon1: b.sides[0].Name,
		Pokemon2: b.sides[1].Name,
		InitialHP: map[string]int{
			b.sides[0].Name: b.sides[0].HP(),
			b.sides[1].Name: b.sides[1].HP(),
		},
		Log:    b.Log(),
		Winner: winner.Name,
		Turns:  b.turn,
	}
}

// act resolves attacker's move against defender: the paralysis check, damage,
// and the infliction attempt.
func (b *Battle) act(attacker, defender *Side) {
	if b.status.SkipsTurn(attacker.Status()) {
		b.logger.Debug("turn skipped", zap.String("side", attacker.Name), zap.Int("turn", b.turn))
		b.emit("%s is paralyzed! It can't move!", display(attacker.Name))
		return
	}

	dmg := DamageWithChart(b.chart, attacker.Combatant, defender.Combatant, attacker.Status())
	defender.Health -= dmg
	b.emit("%s used %s! %s%s takes %d damage and has %d HP left.",
		display(attacker.Name), display(attacker.Move.Name),
		effectiveness(b.chart.Multiplier(attacker.Move.EffectiveType(), defender.Types)),
		display(defender.Name), dmg, max(defender.Health, 0))

	// An afflicted defender keeps its status for the rest of the battle.
	if defender.slot.Afflicted() {
		return
	}
	st := b.status.AttemptInflict(attacker.Move.Effect)
	if defender.slot.Apply(st) {
		def, _ := condition.Lookup(st)
		b.logger.Debug("status inflicted", zap.String("side", defender.Name), zap.Stringer("status", st))
		b.emit("%s is now %s!", display(defender.Name), def.Adjective)
	}
}

// endOfTurn applies side's end-of-turn status damage and then performs the
// faint check. It returns true when side has fainted.
func (b *Battle) endOfTurn(side *Side) bool {
	health, frag := condition.ApplyEndOfTurn(side.Status(), side.Health)
	side.Health = health
	if frag != "" {
		b.emit("%s %s and has %d HP left.", display(side.Name), frag, max(side.Health, 0))
	}
	if side.Health > 0 {
		return false
	}
	b.emit("%s fainted!", display(side.Name))
	b.phase = Fainted
	b.fainted = side
	return true
}

func (b *Battle) emit(format string, args ...any) {
	b.log = append(b.log, fmt.Sprintf(format, args...))
}

// Simulate runs a complete battle between c1 and c2.
func Simulate(c1, c2 Combatant, opts ...Option) Result {
	return NewBattle(c1, c2, opts...).Run()
}

func effectiveness(mult float64) string {
	switch {
	case mult == 0:
		return "It barely has an effect... "
	case mult > 1:
		return "It's super effective! "
	case mult < 1:
		return "It's not very effective... "
	default:
		return ""
	}
}

// display turns an API identifier like "mr-mime" into "Mr Mime".
func display(name string) string {
	if name == "" {
		return "???"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "-", " "))
}
