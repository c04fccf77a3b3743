package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// FakePokemon is a /pokemon/{name} fixture.
type FakePokemon struct {
	ID        int
	Stats     map[string]int
	Types     []string
	Abilities []string
	Moves     []string
	Species   string
}

// FakeMove is a /move/{name} fixture. An empty Effect omits the English entry.
type FakeMove struct {
	Power  *int
	Type   string
	Effect string
}

// FakeChain is one node of an evolution chain fixture.
type FakeChain struct {
	Species   string
	EvolvesTo []FakeChain
}

// FakePokeAPI is an in-process PokeAPI serving a fixed data set. Fixture maps
// may be edited before the first request.
type FakePokeAPI struct {
	Server *httptest.Server

	Pokemon   map[string]FakePokemon
	Moves     map[string]FakeMove
	Abilities map[string]string
	// Species maps a species name to its evolution chain id.
	Species map[string]int
	Chains  map[int]FakeChain

	mu       sync.Mutex
	hits     map[string]int
	failures map[string]int
}

func intp(v int) *int { return &v }

// NewFakePokeAPI starts a fake seeded with pikachu, charmander, eevee and a
// moveless ditto. The server is closed on test cleanup.
//
// Postcondition: BaseURL() serves /pokemon, /ability, /move, /pokemon-species
// and /evolution-chain.
func NewFakePokeAPI(t testing.TB) *FakePokeAPI {
	t.Helper()
	f := &FakePokeAPI{
		Pokemon: map[string]FakePokemon{
			"pikachu": {
				ID:        25,
				Stats:     map[string]int{"hp": 35, "attack": 55, "defense": 40, "special-attack": 50, "special-defense": 50, "speed": 90},
				Types:     []string{"electric"},
				Abilities: []string{"static", "lightning-rod"},
				Moves:     []string{"thunder-shock", "quick-attack", "tail-whip"},
				Species:   "pikachu",
			},
			"charmander": {
				ID:        4,
				Stats:     map[string]int{"hp": 39, "attack": 52, "defense": 43, "special-attack": 60, "special-defense": 50, "speed": 65},
				Types:     []string{"fire"},
				Abilities: []string{"blaze"},
				Moves:     []string{"ember", "scratch"},
				Species:   "charmander",
			},
			"eevee": {
				ID:        133,
				Stats:     map[string]int{"hp": 55, "attack": 55, "defense": 50, "special-attack": 45, "special-defense": 65, "speed": 55},
				Types:     []string{"normal"},
				Abilities: []string{"run-away"},
				Moves:     []string{"tackle"},
				Species:   "eevee",
			},
			"ditto": {
				ID:      132,
				Stats:   map[string]int{"hp": 48, "attack": 48, "defense": 48, "speed": 48},
				Types:   []string{"normal"},
				Species: "ditto",
			},
		},
		Moves: map[string]FakeMove{
			"thunder-shock": {Power: intp(40), Type: "electric", Effect: "Has a $effect_chance% chance to paralyze the target."},
			"quick-attack":  {Power: intp(40), Type: "normal", Effect: "Inflicts regular damage. User attacks first."},
			"tail-whip":     {Type: "normal", Effect: "Lowers the target's Defense by one stage."},
			"ember":         {Power: intp(40), Type: "fire", Effect: "Has a $effect_chance% chance to burn the target."},
			"scratch":       {Power: intp(40), Type: "normal", Effect: "Inflicts regular damage with no additional effect."},
			"tackle":        {Power: intp(40), Type: "normal", Effect: "Inflicts regular damage with no additional effect."},
		},
		Abilities: map[string]string{
			"static":        "Whenever a move makes contact with this Pokémon, the move's user has a 30% chance of being paralyzed.",
			"lightning-rod": "Redirects single-target electric moves to this Pokémon.",
			"blaze":         "Strengthens fire moves to 1.5× their power when this Pokémon has 1/3 or less of its max HP.",
			"run-away":      "",
		},
		Species: map[string]int{"pikachu": 10, "charmander": 2, "eevee": 67, "ditto": 66},
		Chains: map[int]FakeChain{
			10: {Species: "pichu", EvolvesTo: []FakeChain{{Species: "pikachu", EvolvesTo: []FakeChain{{Species: "raichu"}}}}},
			2:  {Species: "charmander", EvolvesTo: []FakeChain{{Species: "charmeleon", EvolvesTo: []FakeChain{{Species: "charizard"}}}}},
			67: {Species: "eevee", EvolvesTo: []FakeChain{{Species: "vaporeon"}, {Species: "jolteon"}, {Species: "flareon"}}},
			66: {Species: "ditto"},
		},
		hits:     make(map[string]int),
		failures: make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(f.count)
	api := r.PathPrefix("/api/v2").Subrouter()
	api.HandleFunc("/pokemon/{name}", f.pokemon).Methods(http.MethodGet)
	api.HandleFunc("/ability/{name}", f.ability).Methods(http.MethodGet)
	api.HandleFunc("/move/{name}", f.move).Methods(http.MethodGet)
	api.HandleFunc("/pokemon-species/{name}", f.species).Methods(http.MethodGet)
	api.HandleFunc("/evolution-chain/{id:[0-9]+}", f.chain).Methods(http.MethodGet)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL returns the API root, e.g. http://127.0.0.1:1234/api/v2.
func (f *FakePokeAPI) BaseURL() string { return f.Server.URL + "/api/v2" }

// Hits returns how many requests were made for path (e.g. "/api/v2/pokemon/pikachu").
func (f *FakePokeAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// TotalHits returns the number of requests received.
func (f *FakePokeAPI) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.hits {
		n += h
	}
	return n
}

// Fail makes every request for path answer with status.
func (f *FakePokeAPI) Fail(path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[path] = status
}

func (f *FakePokeAPI) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		status := f.failures[r.URL.Path]
		f.mu.Unlock()
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakePokeAPI) ref(kind, name string) map[string]any {
	return map[string]any{"name": name, "url": fmt.Sprintf("%s/%s/%s", f.BaseURL(), kind, name)}
}

func effectEntries(effect string) []map[string]any {
	entries := []map[string]any{
		{"effect": "Nur auf Deutsch.", "language": map[string]any{"name": "de"}},
	}
	if effect != "" {
		entries = append(entries, map[string]any{"effect": effect, "language": map[string]any{"name": "en"}})
	}
	return entries
}

func (f *FakePokeAPI) pokemon(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	p, ok := f.Pokemon[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	var stats, types, abilities, moves []map[string]any
	for _, s := range []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"} {
		if v, ok := p.Stats[s]; ok {
			stats = append(stats, map[string]any{"base_stat": v, "effort": 0, "stat": f.ref("stat", s)})
		}
	}
	for i, tn := range p.Types {
		types = append(types, map[string]any{"slot": i + 1, "type": f.ref("type", tn)})
	}
	for i, a := range p.Abilities {
		abilities = append(abilities, map[string]any{"ability": f.ref("ability", a), "is_hidden": false, "slot": i + 1})
	}
	for _, m := range p.Moves {
		moves = append(moves, map[string]any{"move": f.ref("move", m)})
	}
	writeJSON(w, map[string]any{
		"id":        p.ID,
		"name":      name,
		"stats":     stats,
		"types":     types,
		"abilities": abilities,
		"moves":     moves,
		"species":   f.ref("pokemon-species", p.Species),
	})
}

func (f *FakePokeAPI) ability(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	effect, ok := f.Abilities[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{"name": name, "effect_entries": effectEntries(effect)})
}

func (f *FakePokeAPI) move(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	m, ok := f.Moves[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"name":           name,
		"power":          m.Power,
		"type":           f.ref("type", m.Type),
		"effect_entries": effectEntries(m.Effect),
	})
}

func (f *FakePokeAPI) species(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	id, ok := f.Species[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{
		"name":            name,
		"evolution_chain": map[string]any{"url": fmt.Sprintf("%s/evolution-chain/%d", f.BaseURL(), id)},
	})
}

func (f *FakePokeAPI) chain(w http.ResponseWriter, r *http.Request) {
	var id int
	if _, err := fmt.Sscanf(mux.Vars(r)["id"], "%d", &id); err != nil {
		http.NotFound(w, r)
		return
	}
	c, ok := f.Chains[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{"id": id, "chain": f.link(c)})
}

func (f *FakePokeAPI) link(c FakeChain) map[string]any {
	next := make([]map[string]any, 0, len(c.EvolvesTo))
	for _, e := range c.EvolvesTo {
		next = append(next, f.link(e))
	}
	return map[string]any{"species": f.ref("pokemon-species", c.Species), "evolves_to": next}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, strings.TrimSpace(err.Error()), http.StatusInternalServerError)
	}
}
