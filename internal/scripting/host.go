package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/runehall/internal/game/dice"
)

// Host owns one sandboxed LState loaded with operator policy scripts and
// exposes hook dispatch.
//
// Host is safe for concurrent Call after Load completes; the LState is
// single-threaded so calls serialize on an internal mutex.
type Host struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel func()
	src    dice.Source
	logger *zap.Logger
}

// NewHost creates a Host. Scripts reach randomness only through src via the
// rules.roll builtin.
//
// Precondition: src and logger must be non-nil.
func NewHost(src dice.Source, logger *zap.Logger) *Host {
	return &Host{src: src, logger: logger}
}

// Load creates a sandboxed VM, registers the rules.* builtins, then executes
// every *.lua file in scriptDir in lexicographic order. Reloading replaces
// the previous VM.
//
// Precondition: scriptDir must be a readable directory.
func (h *Host) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	h.registerBuiltins(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	h.mu.Lock()
	if h.state != nil {
		h.state.Close()
	}
	h.state = L
	h.mu.Unlock()
	return nil
}

// registerBuiltins registers the rules.* table: roll(n) draws a uniform
// integer in [1,n] from the host's dice source.
func (h *Host) registerBuiltins(L *lua.LState) {
	rules := L.NewTable()
	L.SetFuncs(rules, map[string]lua.LGFunction{
		"roll": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n < 1 {
				L.ArgError(1, "roll size must be >= 1")
				return 0
			}
			L.Push(lua.LNumber(h.src.Intn(n) + 1))
			return 1
		},
	})
	L.SetGlobal("rules", rules)
}

// Call invokes the named Lua global function. Returns (LNil, nil) when no
// scripts are loaded or the hook is not defined. Lua runtime errors are
// logged at Warn level and never propagated, so a broken operator script
// degrades to the built-in behavior.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (h *Host) Call(hook string, args ...lua.LValue) (lua.LValue, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == nil {
		return lua.LNil, nil
	}
	fn := h.state.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := h.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		h.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := h.state.Get(-1)
	h.state.Pop(1)
	return ret, nil
}

// Close releases the VM.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != nil {
		h.state.Close()
		h.state = nil
	}
}
