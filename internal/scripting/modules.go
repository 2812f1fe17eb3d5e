package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the engine table into L:
//
//	engine.roll(expr) -> total   rolls a dice expression such as "2d6+1"
//	engine.log(msg)               writes msg to the structured log at info
//
// Precondition: L must come from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, questID string) {
	engine := L.NewTable()
	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.RaiseError("engine.roll: %s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(res.Total()))
		return 1
	}))
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("quest script", zap.String("quest_id", questID), zap.String("message", L.CheckString(1)))
		return 0
	}))
	L.SetGlobal("engine", engine)
}
