package combat

import (
	"github.com/cory-johannsen/pokemcp/internal/game/condition"
	"github.com/cory-johannsen/pokemcp/internal/game/typechart"
)

// levelFactor is 2*Level/5 + 2 for the fixed Level.
const levelFactor = 2.0*Level/5 + 2

// Damage computes the damage attacker's move deals to defender using the
// default type chart.
func Damage(attacker, defender Combatant, attackerStatus condition.Status) int {
	return DamageWithChart(typechart.Default(), attacker, defender, attackerStatus)
}

// DamageWithChart computes
//
//	((levelFactor * power * attack / defense) / 50 + 2) * typeMultiplier
//
// truncated toward zero, with a floor of 1. A burned attacker's attack is
// halved (floor) before use. A defense below 1 is treated as 1.
//
// Precondition: chart must be non-nil.
// Postcondition: Returns >= 1.
func DamageWithChart(chart *typechart.Chart, attacker, defender Combatant, attackerStatus condition.Status) int {
	attack := attacker.Attack()
	if attackerStatus == condition.Burn {
		attack /= 2
	}
	defense := defender.Defense()
	if defense < 1 {
		defense = 1
	}
	power := attacker.Move.EffectivePower()
	mult := chart.Multiplier(attacker.Move.EffectiveType(), defender.Types)

	raw := ((levelFactor*float64(power)*float64(attack)/float64(defense))/50 + 2) * mult
	dmg := int(raw)
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}
