package pokeapi

import (
	"context"

	"github.com/cory-johannsen/pokemcp/internal/game/combat"
)

// FetchCombatant resolves name into a battle descriptor: base stats, types
// and the first listed move with its power, type and English effect text.
// A Pokémon with no moves battles with the default move.
//
// Precondition: name must be non-blank.
// Postcondition: Returns a populated Combatant or a non-nil error; a 404 from
// the data source satisfies errors.Is(err, ErrNotFound).
func (c *Client) FetchCombatant(ctx context.Context, name string) (combat.Combatant, error) {
	p, err := c.fetchPokemon(ctx, name)
	if err != nil {
		return combat.Combatant{}, err
	}

	out := combat.Combatant{
		Name:      p.Name,
		BaseStats: p.baseStats(),
		Types:     p.typeNames(),
		Move:      combat.Move{Name: combat.DefaultMoveName},
	}
	if len(p.Moves) == 0 {
		return out, nil
	}

	first := p.Moves[0].Move
	var mv moveResource
	if err := c.get(ctx, first.URL, &mv); err != nil {
		return combat.Combatant{}, err
	}
	out.Move = combat.Move{
		Name:   first.Name,
		Power:  mv.Power,
		Type:   mv.Type.Name,
		Effect: englishEffect(mv.EffectEntries),
	}
	return out, nil
}
