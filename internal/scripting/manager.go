package scripting

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/herobound/internal/game/dice"
	"github.com/cory-johannsen/herobound/internal/game/quest"
)

// EncounterMessageHook is the Lua global a quest script defines to replace
// encounter log messages. It receives the encounter type and board position
// and returns a string, or nil to keep the default.
const EncounterMessageHook = "encounter_message"

// vm is one quest's Lua state. A LState is single-threaded, so every call
// holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed VM per quest and dispatches hooks to it.
// It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*vm),
		roller: roller,
		logger: logger,
	}
}

// LoadQuest creates a VM for questID and executes the script at path in it,
// replacing any VM previously loaded for the quest.
//
// Precondition: questID must be non-empty; instLimit >= 0 where 0 means DefaultInstructionLimit.
// Postcondition: Returns an error when the file cannot be read or fails to run.
func (m *Manager) LoadQuest(questID, path string, instLimit int) error {
	L := NewSandboxedState()
	m.RegisterModules(L, questID)

	done := limitInstructions(L, instLimit)
	err := L.DoFile(path)
	done()
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q for quest %q: %w", path, questID, err)
	}

	m.mu.Lock()
	if old, ok := m.vms[questID]; ok {
		old.close()
	}
	m.vms[questID] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	m.logger.Debug("quest script loaded", zap.String("quest_id", questID), zap.String("path", path))
	return nil
}

// LoadQuests loads the script of every quest that names one.
//
// Postcondition: Returns the first load error.
func (m *Manager) LoadQuests(quests []*quest.Quest, instLimit int) error {
	for _, q := range quests {
		if q.Script == "" {
			continue
		}
		if err := m.LoadQuest(q.ID, q.Script, instLimit); err != nil {
			return err
		}
	}
	return nil
}

// CallHook calls the named Lua global in questID's VM. It returns LNil when
// the quest has no VM or does not define the hook. Lua runtime errors are
// logged at warn and never propagated.
//
// Postcondition: Returns the hook's first return value, or LNil.
func (m *Manager) CallHook(questID, hook string, args ...lua.LValue) lua.LValue {
	m.mu.RLock()
	v := m.vms[questID]
	m.mu.RUnlock()
	if v == nil {
		return lua.LNil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.L == nil {
		return lua.LNil
	}
	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil
	}

	done := limitInstructions(v.L, v.limit)
	defer done()
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("quest_id", questID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil
	}
	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret
}

// EncounterMessage implements quest.Narrator through the encounter_message hook.
func (m *Manager) EncounterMessage(questID string, typ quest.EncounterType, position int) (string, bool) {
	ret := m.CallHook(questID, EncounterMessageHook, lua.LString(typ), lua.LNumber(position))
	s, ok := ret.(lua.LString)
	if !ok || s == "" {
		return "", false
	}
	return string(s), true
}

// Close releases every VM. Hooks called afterwards return LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, v := range m.vms {
		v.close()
		delete(m.vms, id)
	}
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.L.Close()
	v.L = nil
}
