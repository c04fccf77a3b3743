package scripting

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/game/condition"
)

// ClassifyHook is the Lua global a classifier script must define. It receives
// the effect text and returns a status ID ("paralysis", "burn", "poison") or
// "none"/nil.
const ClassifyHook = "classify"

//go:embed classify.lua
var defaultScript string

// DefaultScript returns the built-in classifier script, which reproduces
// keyword matching in Lua.
func DefaultScript() string { return defaultScript }

// StatusClassifier runs a Lua classify hook in a sandboxed VM.
//
// StatusClassifier is safe for concurrent use; calls are serialized because an
// LState is single-threaded. A script error, an exhausted instruction budget,
// or an unknown return value falls back to the keyword classifier and is
// logged at Warn level.
type StatusClassifier struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
	fallback  condition.Classifier
	logger    *zap.Logger
}

// NewStatusClassifier loads src into a fresh sandbox.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns an error if src fails to load or does not define the
// classify hook.
func NewStatusClassifier(src string, instLimit int, logger *zap.Logger) (*StatusClassifier, error) {
	L, cancel := NewSandboxedState(instLimit)
	defer cancel()
	RegisterModules(L, logger)

	err := withBudget(L, instLimit, func() error { return L.DoString(src) })
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading classifier: %w", err)
	}
	if fn := L.GetGlobal(ClassifyHook); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("scripting: classifier script does not define %s()", ClassifyHook)
	}
	return &StatusClassifier{
		L:         L,
		instLimit: instLimit,
		fallback:  condition.KeywordClassifier{},
		logger:    logger,
	}, nil
}

// LoadStatusClassifier reads the script at path, or uses DefaultScript when
// path is empty.
func LoadStatusClassifier(path string, instLimit int, logger *zap.Logger) (*StatusClassifier, error) {
	src := defaultScript
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("scripting: reading classifier %q: %w", path, err)
		}
		src = string(b)
	}
	return NewStatusClassifier(src, instLimit, logger)
}

// Classify implements condition.Classifier.
func (c *StatusClassifier) Classify(effect string) condition.Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ret lua.LValue = lua.LNil
	err := withBudget(c.L, c.instLimit, func() error {
		if err := c.L.CallByParam(lua.P{
			Fn:      c.L.GetGlobal(ClassifyHook),
			NRet:    1,
			Protect: true,
		}, lua.LString(effect)); err != nil {
			return err
		}
		ret = c.L.Get(-1)
		c.L.Pop(1)
		return nil
	})
	if err != nil {
		c.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", ClassifyHook),
			zap.Error(err),
		)
		return c.fallback.Classify(effect)
	}
	if ret == lua.LNil {
		return condition.None
	}

	st, err := condition.Parse(ret.String())
	if err != nil {
		c.logger.Warn("scripting: classifier returned unknown status",
			zap.String("value", ret.String()),
		)
		return c.fallback.Classify(effect)
	}
	return st
}

// Close releases the Lua VM.
func (c *StatusClassifier) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.L.Close()
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
