package pokeapi

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// GetPokemonInfo assembles the get_pokemon_info payload for name: base stats,
// types, every ability and the first MoveLimit moves with their English
// effect text, and the first-branch evolution chain.
//
// Ability and move lookups run with at most Concurrency requests in flight;
// the output keeps the data source's ordering. Any failed lookup fails the
// whole call.
//
// Precondition: name must be non-blank.
// Postcondition: Returns a fully populated Info or a non-nil error.
func (c *Client) GetPokemonInfo(ctx context.Context, name string) (Info, error) {
	p, err := c.fetchPokemon(ctx, name)
	if err != nil {
		return Info{}, err
	}

	moves := p.Moves[:min(len(p.Moves), c.moveLimit)]
	info := Info{
		Name:      p.Name,
		ID:        p.ID,
		BaseStats: p.baseStats(),
		Types:     p.typeNames(),
		Abilities: make([]Described, len(p.Abilities)),
		Moves:     make([]Described, len(moves)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, a := range p.Abilities {
		g.Go(func() error {
			var res abilityResource
			if err := c.get(gctx, a.Ability.URL, &res); err != nil {
				return err
			}
			info.Abilities[i] = Described{Name: a.Ability.Name, Effect: englishEffect(res.EffectEntries)}
			return nil
		})
	}
	for i, m := range moves {
		g.Go(func() error {
			var res moveResource
			if err := c.get(gctx, m.Move.URL, &res); err != nil {
				return err
			}
			info.Moves[i] = Described{Name: m.Move.Name, Effect: englishEffect(res.EffectEntries)}
			return nil
		})
	}
	g.Go(func() error {
		chain, err := c.evolutionChain(gctx, p.Species.URL)
		if err != nil {
			return err
		}
		info.EvolutionChain = chain
		return nil
	})

	if err := g.Wait(); err != nil {
		return Info{}, err
	}
	return info, nil
}

// evolutionChain follows species → evolution_chain and flattens it.
func (c *Client) evolutionChain(ctx context.Context, speciesURL string) ([]string, error) {
	var species speciesResource
	if err := c.get(ctx, speciesURL, &species); err != nil {
		return nil, err
	}
	if species.EvolutionChain.URL == "" {
		return nil, fmt.Errorf("%w: species %q has no evolution chain", ErrMalformed, species.Name)
	}
	var chain evolutionChainResource
	if err := c.get(ctx, species.EvolutionChain.URL, &chain); err != nil {
		return nil, err
	}
	return ParseEvolutionChain(chain.Chain), nil
}

// ParseEvolutionChain walks link taking only the first branch at each level,
// so branching lines collapse to their first listed evolution.
//
// Postcondition: Returns species names from base form onward; terminates at
// the first link with no evolutions.
func ParseEvolutionChain(link ChainLink) []string {
	names := []string{link.Species.Name}
	for len(link.EvolvesTo) > 0 {
		link = link.EvolvesTo[0]
		names = append(names, link.Species.Name)
	}
	return names
}
