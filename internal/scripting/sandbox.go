// Package scripting provides a sandboxed GopherLua execution environment for
// operator-supplied battle scripts. It depends on the condition package only
// for the Status values scripts may return.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// effectiveLimit maps non-positive limits to DefaultInstructionLimit.
func effectiveLimit(instLimit int) int {
	if instLimit <= 0 {
		return DefaultInstructionLimit
	}
	return instLimit
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Execution limited to at most instLimit Lua opcodes
//
// The returned cancel releases the instruction budget context. Callers that
// run several chunks on one state should install a fresh budget per chunk with
// withBudget.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the LState and must call L.Close() when done.
func NewSandboxedState(instLimit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	ctx, cancel := newCountingContext(effectiveLimit(instLimit))
	L.SetContext(ctx)
	return L, cancel
}

// withBudget installs a fresh instruction budget on L for the duration of fn.
func withBudget(L *lua.LState, instLimit int, fn func() error) error {
	ctx, cancel := newCountingContext(effectiveLimit(instLimit))
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()
	return fn()
}
