package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pokemcp/internal/game/condition"
)

// RegisterModules registers the engine table into L:
//
//	engine.statuses          array of status IDs in keyword-priority order
//	engine.keywords          map of status ID to its effect keyword
//	engine.log(msg)          writes msg at debug level
//	engine.contains(s, sub)  case-insensitive substring test
//
// Precondition: L must be from NewSandboxedState; logger must be non-nil.
// Postcondition: engine global is defined in L.
func RegisterModules(L *lua.LState, logger *zap.Logger) {
	engine := L.NewTable()

	statuses := L.NewTable()
	keywords := L.NewTable()
	for _, d := range condition.Defs() {
		statuses.Append(lua.LString(d.ID))
		keywords.RawSetString(d.ID, lua.LString(d.Keyword))
	}
	engine.RawSetString("statuses", statuses)
	engine.RawSetString("keywords", keywords)

	engine.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		logger.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	engine.RawSetString("contains", L.NewFunction(func(L *lua.LState) int {
		s := L.CheckString(1)
		sub := L.CheckString(2)
		L.Push(lua.LBool(containsFold(s, sub)))
		return 1
	}))

	L.SetGlobal("engine", engine)
}
