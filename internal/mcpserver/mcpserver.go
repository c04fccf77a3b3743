// Package mcpserver exposes the tool operations over the Model Context
// Protocol using mark3labs/mcp-go.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/config"
	"github.com/cory-johannsen/pokemcp/internal/tools"
)

// Tool and argument names.
const (
	ToolGetPokemonInfo = "get_pokemon_info"
	ToolSimulateBattle = "simulate_battle"

	ArgPokemonName = "pokemon_name"
	ArgPokemon1    = "pokemon1"
	ArgPokemon2    = "pokemon2"
)

// ToolService is the tool implementation the server dispatches to.
type ToolService interface {
	GetPokemonInfo(ctx context.Context, name string) any
	SimulateBattle(ctx context.Context, pokemon1, pokemon2 string) any
}

// New builds an MCP server advertising cfg's name and version with both
// tools registered.
//
// Precondition: svc and logger must be non-nil.
func New(cfg config.ServerConfig, svc ToolService, logger *zap.Logger) *server.MCPServer {
	s := server.NewMCPServer(cfg.Name, cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	Register(s, svc, logger)
	return s
}

// Register adds get_pokemon_info and simulate_battle to s.
func Register(s *server.MCPServer, svc ToolService, logger *zap.Logger) {
	h := &handlers{svc: svc, logger: logger}

	s.AddTool(mcp.NewTool(ToolGetPokemonInfo,
		mcp.WithDescription("Get comprehensive information about a Pokémon, including base stats, "+
			"types, abilities, moves (with effects), and evolution information."),
		mcp.WithString(ArgPokemonName,
			mcp.Required(),
			mcp.Description("The name of the Pokémon to get information about"),
		),
	), h.getPokemonInfo)

	s.AddTool(mcp.NewTool(ToolSimulateBattle,
		mcp.WithDescription("Simulate a battle between two Pokémon using their first move, "+
			"type effectiveness, speed-based turn order and status effects (paralysis, burn, poison)."),
		mcp.WithString(ArgPokemon1,
			mcp.Required(),
			mcp.Description("Name of the first Pokémon"),
		),
		mcp.WithString(ArgPokemon2,
			mcp.Required(),
			mcp.Description("Name of the second Pokémon"),
		),
	), h.simulateBattle)
}

type handlers struct {
	svc    ToolService
	logger *zap.Logger
}

func (h *handlers) getPokemonInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString(ArgPokemonName)
	if err != nil {
		return toResult(tools.ErrorResult{Error: err.Error()})
	}
	h.logger.Info("tool call", zap.String("tool", ToolGetPokemonInfo), zap.String("pokemon", name))
	return toResult(h.svc.GetPokemonInfo(ctx, name))
}

func (h *handlers) simulateBattle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p1, err := req.RequireString(ArgPokemon1)
	if err != nil {
		return toResult(tools.ErrorResult{Error: err.Error()})
	}
	p2, err := req.RequireString(ArgPokemon2)
	if err != nil {
		return toResult(tools.ErrorResult{Error: err.Error()})
	}
	h.logger.Info("tool call",
		zap.String("tool", ToolSimulateBattle),
		zap.String("pokemon1", p1),
		zap.String("pokemon2", p2),
	)
	return toResult(h.svc.SimulateBattle(ctx, p1, p2))
}

// toResult renders v as a JSON text result, flagging ErrorResult payloads.
func toResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	res := mcp.NewToolResultText(string(b))
	if _, ok := v.(tools.ErrorResult); ok {
		res.IsError = true
	}
	return res, nil
}
