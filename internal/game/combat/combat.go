// Package combat implements the two-battler battle engine: the combatant
// descriptor, the damage formula, speed-based turn order and the turn loop.
package combat

// Fallback values used when a descriptor leaves a field absent.
const (
	DefaultAttack  = 50
	DefaultDefense = 50
	DefaultSpeed   = 50
	DefaultHP      = 100
	DefaultPower   = 50
	DefaultType    = "normal"
	// DefaultMoveName is used when a battler has no moves at all.
	DefaultMoveName = "struggle"
)

// Stat names read from BaseStats.
const (
	StatHP      = "hp"
	StatAttack  = "attack"
	StatDefense = "defense"
	StatSpeed   = "speed"
)

// Level is the fixed battler level baked into the damage formula.
const Level = 50

// Move is the single attack a battler uses every turn.
type Move struct {
	Name string
	// Power is nil for status moves; nil and 0 both fall back to DefaultPower.
	Power *int
	Type  string
	// Effect is the free-text effect description, nil when unknown.
	Effect *string
}

// EffectivePower returns Power, or DefaultPower when Power is nil or zero.
//
// Postcondition: Returns > 0 unless Power is negative.
func (m Move) EffectivePower() int {
	if m.Power == nil || *m.Power == 0 {
		return DefaultPower
	}
	return *m.Power
}

// EffectiveType returns Type, or DefaultType when empty.
func (m Move) EffectiveType() string {
	if m.Type == "" {
		return DefaultType
	}
	return m.Type
}

// Combatant is the immutable descriptor of one battler.
type Combatant struct {
	Name      string
	BaseStats map[string]int
	Types     []string
	Move      Move
}

// Stat returns BaseStats[name], or fallback when the entry is absent.
func (c Combatant) Stat(name string, fallback int) int {
	if v, ok := c.BaseStats[name]; ok {
		return v
	}
	return fallback
}

// Attack returns the attack stat, defaulting to DefaultAttack.
func (c Combatant) Attack() int { return c.Stat(StatAttack, DefaultAttack) }

// Defense returns the defense stat, defaulting to DefaultDefense.
func (c Combatant) Defense() int { return c.Stat(StatDefense, DefaultDefense) }

// Speed returns the speed stat, defaulting to DefaultSpeed.
func (c Combatant) Speed() int { return c.Stat(StatSpeed, DefaultSpeed) }

// HP returns the starting health, defaulting to DefaultHP.
func (c Combatant) HP() int { return c.Stat(StatHP, DefaultHP) }
