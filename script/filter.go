// Package script runs collision predicates written in Lua.
//
// A script defines a global function process(a, b) that receives one table
// per node and returns true to accept the pair. It may also define
// notify(a, b), which runs for every accepted pair. Each node table carries
// id, name, x, y, width, height, vx, vy, immovable and touching (a string
// such as "left|down").
package script

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/phanxgames/arcade"
)

// Filter wraps a single gopher-lua VM holding one predicate script.
// Single-goroutine access only (game loop).
type Filter struct {
	vm     *lua.LState
	log    *zap.Logger
	name   string
	proc   lua.LValue
	notify lua.LValue
}

// NewFilter compiles src. name labels log lines and errors. A nil log
// discards output.
func NewFilter(name, src string, log *zap.Logger) (*Filter, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	if err := vm.DoString(src); err != nil {
		vm.Close()
		return nil, fmt.Errorf("script %s: %w", name, err)
	}
	f := &Filter{vm: vm, log: log, name: name}
	f.proc = vm.GetGlobal("process")
	if f.proc.Type() != lua.LTFunction {
		vm.Close()
		return nil, fmt.Errorf("script %s: global function process(a, b) not defined", name)
	}
	if fn := vm.GetGlobal("notify"); fn.Type() == lua.LTFunction {
		f.notify = fn
	}
	log.Debug("loaded lua filter", zap.String("script", name), zap.Bool("notify", f.notify != nil))
	return f, nil
}

// LoadFilter reads and compiles the script at path.
func LoadFilter(path string, log *zap.Logger) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return NewFilter(path, string(data), log)
}

// Process calls the script's process function. It satisfies
// arcade.ProcessFunc. Script errors and non-boolean results are logged and
// the pair is accepted.
func (f *Filter) Process(a, b *arcade.Node) bool {
	if err := f.vm.CallByParam(lua.P{
		Fn:      f.proc,
		NRet:    1,
		Protect: true,
	}, f.nodeTable(a), f.nodeTable(b)); err != nil {
		f.log.Error("lua process error", zap.String("script", f.name), zap.Error(err))
		return true
	}

	result := f.vm.Get(-1)
	f.vm.Pop(1)

	if result.Type() != lua.LTBool {
		f.log.Error("lua process returned non-boolean",
			zap.String("script", f.name), zap.String("type", result.Type().String()))
		return true
	}
	return lua.LVAsBool(result)
}

// Notify calls the script's notify function when it defines one. It
// satisfies arcade.NotifyFunc.
func (f *Filter) Notify(a, b *arcade.Node) {
	if f.notify == nil {
		return
	}
	if err := f.vm.CallByParam(lua.P{
		Fn:      f.notify,
		NRet:    0,
		Protect: true,
	}, f.nodeTable(a), f.nodeTable(b)); err != nil {
		f.log.Error("lua notify error", zap.String("script", f.name), zap.Error(err))
	}
}

// HasNotify reports whether the script defines notify(a, b).
func (f *Filter) HasNotify() bool {
	return f.notify != nil
}

// Close releases the VM.
func (f *Filter) Close() {
	f.vm.Close()
}

func (f *Filter) nodeTable(n *arcade.Node) *lua.LTable {
	t := f.vm.NewTable()
	t.RawSetString("id", lua.LNumber(n.ID))
	t.RawSetString("name", lua.LString(n.Name))
	t.RawSetString("x", lua.LNumber(n.X))
	t.RawSetString("y", lua.LNumber(n.Y))
	t.RawSetString("width", lua.LNumber(n.Width))
	t.RawSetString("height", lua.LNumber(n.Height))
	t.RawSetString("vx", lua.LNumber(n.Velocity.X))
	t.RawSetString("vy", lua.LNumber(n.Velocity.Y))
	t.RawSetString("immovable", lua.LBool(n.Immovable))
	t.RawSetString("touching", lua.LString(n.Touching.String()))
	return t
}
