// Package tools implements the get_pokemon_info and simulate_battle tool
// operations. Every failure is returned as an ErrorResult; nothing here
// returns a Go error to the transport.
package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/game/combat"
	"github.com/cory-johannsen/pokemcp/internal/game/condition"
	"github.com/cory-johannsen/pokemcp/internal/game/dice"
	"github.com/cory-johannsen/pokemcp/internal/pokeapi"
)

// Source resolves Pokémon from the upstream data source.
type Source interface {
	GetPokemonInfo(ctx context.Context, name string) (pokeapi.Info, error)
	FetchCombatant(ctx context.Context, name string) (combat.Combatant, error)
}

// ErrorResult is the structured failure payload.
type ErrorResult struct {
	Error string `json:"error"`
}

// Option configures a Service.
type Option func(*Service)

// WithClassifier sets the status classifier used by every battle.
func WithClassifier(c condition.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithSeed makes every battle draw from a fresh source seeded with seed.
// Zero keeps crypto randomness.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		if seed != 0 {
			s.newSource = func() dice.Source { return dice.NewSeededSource(seed) }
		}
	}
}

// WithSourceFactory sets the per-battle randomness constructor.
func WithSourceFactory(f func() dice.Source) Option {
	return func(s *Service) { s.newSource = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service implements the tool operations. It is safe for concurrent use;
// each battle owns its own state.
type Service struct {
	src        Source
	classifier condition.Classifier
	newSource  func() dice.Source
	logger     *zap.Logger
}

// NewService creates a Service over src.
//
// Precondition: src must be non-nil.
func NewService(src Source, opts ...Option) *Service {
	crypto := dice.NewCryptoSource()
	s := &Service{
		src:        src,
		classifier: condition.KeywordClassifier{},
		newSource:  func() dice.Source { return crypto },
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPokemonInfo returns pokeapi.Info, or ErrorResult when name is blank or
// the lookup fails.
func (s *Service) GetPokemonInfo(ctx context.Context, name string) any {
	if strings.TrimSpace(name) == "" {
		return ErrorResult{Error: "pokemon_name must not be empty"}
	}
	info, err := s.src.GetPokemonInfo(ctx, name)
	if err != nil {
		s.logger.Warn("get_pokemon_info failed", zap.String("pokemon", name), zap.Error(err))
		return ErrorResult{Error: err.Error()}
	}
	return info
}

// SimulateBattle resolves both Pokémon, pokemon1 first, and runs one battle.
// If either lookup fails the result names the Pokémon that failed and no
// battle is run; pokemon2 is not requested when pokemon1 fails.
//
// Postcondition: Returns combat.Result or ErrorResult.
func (s *Service) SimulateBattle(ctx context.Context, pokemon1, pokemon2 string) any {
	c1, errRes := s.fetch(ctx, pokemon1)
	if errRes != nil {
		return *errRes
	}
	c2, errRes := s.fetch(ctx, pokemon2)
	if errRes != nil {
		return *errRes
	}

	return combat.Simulate(c1, c2,
		combat.WithSource(s.newSource()),
		combat.WithClassifier(s.classifier),
		combat.WithLogger(s.logger),
	)
}

func (s *Service) fetch(ctx context.Context, name string) (combat.Combatant, *ErrorResult) {
	if strings.TrimSpace(name) == "" {
		return combat.Combatant{}, &ErrorResult{Error: fmt.Sprintf("Could not fetch data for %s.", name)}
	}
	c, err := s.src.FetchCombatant(ctx, name)
	if err != nil {
		s.logger.Warn("simulate_battle fetch failed", zap.String("pokemon", name), zap.Error(err))
		return combat.Combatant{}, &ErrorResult{Error: fmt.Sprintf("Could not fetch data for %s.", name)}
	}
	return c, nil
}
