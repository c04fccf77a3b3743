package pokeapi

import "github.com/samber/lo"

// NamedResource is PokeAPI's {name, url} reference.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type effectEntry struct {
	Effect   string        `json:"effect"`
	Language NamedResource `json:"language"`
}

type statEntry struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

type typeEntry struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type abilityEntry struct {
	Ability NamedResource `json:"ability"`
}

type moveEntry struct {
	Move NamedResource `json:"move"`
}

type pokemonResource struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	Stats     []statEntry    `json:"stats"`
	Types     []typeEntry    `json:"types"`
	Abilities []abilityEntry `json:"abilities"`
	Moves     []moveEntry    `json:"moves"`
	Species   NamedResource  `json:"species"`
}

type abilityResource struct {
	Name          string        `json:"name"`
	EffectEntries []effectEntry `json:"effect_entries"`
}

type moveResource struct {
	Name          string        `json:"name"`
	Power         *int          `json:"power"`
	Type          NamedResource `json:"type"`
	EffectEntries []effectEntry `json:"effect_entries"`
}

type speciesResource struct {
	Name           string `json:"name"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// ChainLink is one node of an evolution chain.
type ChainLink struct {
	Species   NamedResource `json:"species"`
	EvolvesTo []ChainLink   `json:"evolves_to"`
}

type evolutionChainResource struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}

// Described is a named ability or move with its English effect text, or nil
// when the data source carries none.
type Described struct {
	Name   string  `json:"name"`
	Effect *string `json:"effect"`
}

// Info is the get_pokemon_info payload.
type Info struct {
	Name           string         `json:"name"`
	ID             int            `json:"id"`
	BaseStats      map[string]int `json:"base_stats"`
	Types          []string       `json:"types"`
	Abilities      []Described    `json:"abilities"`
	Moves          []Described    `json:"moves"`
	EvolutionChain []string       `json:"evolution_chain"`
}

// englishEffect returns the first English effect entry, or nil.
func englishEffect(entries []effectEntry) *string {
	e, ok := lo.Find(entries, func(e effectEntry) bool { return e.Language.Name == "en" })
	if !ok {
		return nil
	}
	return &e.Effect
}

func (p pokemonResource) baseStats() map[string]int {
	return lo.SliceToMap(p.Stats, func(s statEntry) (string, int) {
		return s.Stat.Name, s.BaseStat
	})
}

func (p pokemonResource) typeNames() []string {
	return lo.Map(p.Types, func(t typeEntry, _ int) string {
		return t.Type.Name
	})
}
