package mcpserver_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/config"
	"github.com/cory-johannsen/pokemcp/internal/mcpserver"
	"github.com/cory-johannsen/pokemcp/internal/testutil"
	"github.com/cory-johannsen/pokemcp/internal/tools"
)

type fakeSvc struct {
	infoCalls   []string
	battleCalls [][2]string
}

func (f *fakeSvc) GetPokemonInfo(_ context.Context, name string) any {
	f.infoCalls = append(f.infoCalls, name)
	if name == "missingno" {
		return tools.ErrorResult{Error: "Pokémon 'missingno' not found."}
	}
	return map[string]any{"name": name, "id": 25}
}

func (f *fakeSvc) SimulateBattle(_ context.Context, p1, p2 string) any {
	f.battleCalls = append(f.battleCalls, [2]string{p1, p2})
	return map[string]any{"pokemon1": p1, "pokemon2": p2, "winner": p1}
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{Name: "poke-mcp", Version: "0.1.0", Transport: "sse", Host: "127.0.0.1", Port: 0}
}

// call sends one JSON-RPC request through s and returns the decoded response.
func call(t *testing.T, s *server.MCPServer, method string, params any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)
	msg := s.HandleMessage(context.Background(), raw)
	require.NotNil(t, msg)
	out, err := json.Marshal(msg)
	require.NoError(t, err)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

func toolText(t *testing.T, resp map[string]any) (string, bool) {
	t.Helper()
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok, "response has no result: %v", resp)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	first := content[0].(map[string]any)
	assert.Equal(t, "text", first["type"])
	isErr, _ := result["isError"].(bool)
	return first["text"].(string), isErr
}

func TestNew_ListsBothTools(t *testing.T) {
	s := mcpserver.New(testConfig(), &fakeSvc{}, zap.NewNop())
	resp := call(t, s, "tools/list", map[string]any{})

	result := resp["result"].(map[string]any)
	list := result["tools"].([]any)
	schemas := map[string]map[string]any{}
	for _, item := range list {
		tool := item.(map[string]any)
		schemas[tool["name"].(string)] = tool["inputSchema"].(map[string]any)
	}
	require.Contains(t, schemas, mcpserver.ToolGetPokemonInfo)
	require.Contains(t, schemas, mcpserver.ToolSimulateBattle)
	assert.ElementsMatch(t, []any{"pokemon_name"}, schemas[mcpserver.ToolGetPokemonInfo]["required"])
	assert.ElementsMatch(t, []any{"pokemon1", "pokemon2"}, schemas[mcpserver.ToolSimulateBattle]["required"])
}

func TestGetPokemonInfo_ReturnsJSONText(t *testing.T) {
	svc := &fakeSvc{}
	s := mcpserver.New(testConfig(), svc, zap.NewNop())
	resp := call(t, s, "tools/call", map[string]any{
		"name":      mcpserver.ToolGetPokemonInfo,
		"arguments": map[string]any{"pokemon_name": "pikachu"},
	})

	text, isErr := toolText(t, resp)
	assert.False(t, isErr)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(text), &body))
	assert.Equal(t, "pikachu", body["name"])
	assert.Equal(t, []string{"pikachu"}, svc.infoCalls)
}

func TestGetPokemonInfo_ErrorResultIsFlagged(t *testing.T) {
	s := mcpserver.New(testConfig(), &fakeSvc{}, zap.NewNop())
	resp := call(t, s, "tools/call", map[string]any{
		"name":      mcpserver.ToolGetPokemonInfo,
		"arguments": map[string]any{"pokemon_name": "missingno"},
	})

	text, isErr := toolText(t, resp)
	assert.True(t, isErr)
	var body tools.ErrorResult
	require.NoError(t, json.Unmarshal([]byte(text), &body))
	assert.Equal(t, "Pokémon 'missingno' not found.", body.Error)
}

func TestGetPokemonInfo_MissingArgument(t *testing.T) {
	svc := &fakeSvc{}
	s := mcpserver.New(testConfig(), svc, zap.NewNop())
	resp := call(t, s, "tools/call", map[string]any{
		"name":      mcpserver.ToolGetPokemonInfo,
		"arguments": map[string]any{},
	})

	text, isErr := toolText(t, resp)
	assert.True(t, isErr)
	assert.Contains(t, text, "pokemon_name")
	assert.Empty(t, svc.infoCalls)
}

func TestSimulateBattle_PassesBothNames(t *testing.T) {
	svc := &fakeSvc{}
	s := mcpserver.New(testConfig(), svc, zap.NewNop())
	resp := call(t, s, "tools/call", map[string]any{
		"name":      mcpserver.ToolSimulateBattle,
		"arguments": map[string]any{"pokemon1": "pikachu", "pokemon2": "charmander"},
	})

	text, isErr := toolText(t, resp)
	assert.False(t, isErr)
	assert.Contains(t, text, `"winner": "pikachu"`)
	assert.Equal(t, [][2]string{{"pikachu", "charmander"}}, svc.battleCalls)
}

func TestSimulateBattle_MissingSecondArgument(t *testing.T) {
	svc := &fakeSvc{}
	s := mcpserver.New(testConfig(), svc, zap.NewNop())
	resp := call(t, s, "tools/call", map[string]any{
		"name":      mcpserver.ToolSimulateBattle,
		"arguments": map[string]any{"pokemon1": "pikachu"},
	})

	text, isErr := toolText(t, resp)
	assert.True(t, isErr)
	assert.Contains(t, text, "pokemon2")
	assert.Empty(t, svc.battleCalls)
}

func getHealth(t *testing.T, checks map[string]mcpserver.HealthCheck) (int, map[string]any) {
	t.Helper()
	cfg := testConfig()
	s := mcpserver.New(cfg, &fakeSvc{}, zap.NewNop())
	ts := httptest.NewServer(mcpserver.NewRouter(cfg, server.NewSSEServer(s), checks))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRouter_Healthz(t *testing.T) {
	code, body := getHealth(t, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "poke-mcp", body["name"])
	assert.Empty(t, body["checks"])
}

func TestRouter_HealthzReportsChecks(t *testing.T) {
	code, body := getHealth(t, map[string]mcpserver.HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"database": "ok"}, body["checks"])
}

func TestRouter_HealthzDegradedOnFailingCheck(t *testing.T) {
	code, body := getHealth(t, map[string]mcpserver.HealthCheck{
		"database": func(context.Context) error { return errors.New("database at db unreachable: closed pool") },
		"other":    func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, map[string]any{
		"database": "database at db unreachable: closed pool",
		"other":    "ok",
	}, body["checks"])
}

func TestRouter_SSEAnnouncesMessageEndpoint(t *testing.T) {
	cfg := testConfig()
	s := mcpserver.New(cfg, &fakeSvc{}, zap.NewNop())
	ts := httptest.NewServer(mcpserver.NewRouter(cfg, server.NewSSEServer(s, server.WithBaseURL("http://example.test")), nil))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: endpoint", strings.TrimSpace(line))
}

func TestRouter_RejectsWrongMethod(t *testing.T) {
	cfg := testConfig()
	s := mcpserver.New(cfg, &fakeSvc{}, zap.NewNop())
	ts := httptest.NewServer(mcpserver.NewRouter(cfg, server.NewSSEServer(s), nil))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/healthz", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStdioService_ReturnsOnEOF(t *testing.T) {
	s := mcpserver.New(testConfig(), &fakeSvc{}, zap.NewNop())
	var out strings.Builder
	svc := mcpserver.NewStdioService(s, strings.NewReader(""), &out, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- svc.Start(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stdio service did not return on EOF")
	}
	svc.Stop()
}

func TestRouter_HealthzWithDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in -short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	checks := map[string]mcpserver.HealthCheck{"database": pc.Pool.Check}

	code, body := getHealth(t, checks)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"database": "ok"}, body["checks"])

	pc.Pool.Close()
	code, body = getHealth(t, checks)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
}
