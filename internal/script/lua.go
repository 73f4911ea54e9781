package script

import (
	"context"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/keychord/internal/input/key"
)

// RunLuaFile runs the Lua script at path as a scenario called name.
func (r *Runner) RunLuaFile(ctx context.Context, name, path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.RunLua(ctx, name, string(src))
}

// RunLua runs a Lua script against a fresh recorder. Runtime errors in
// the script abort it and are returned; expect() failures are collected
// in the result.
func (r *Runner) RunLua(ctx context.Context, name, src string) (res *Result, err error) {
	sess := r.newSession(name, r.mods)
	defer sess.close()

	L := newSandbox()
	defer L.Close()
	L.SetContext(ctx)

	var opErr error
	op := func(opName string, takesArg bool) lua.LGFunction {
		return func(L *lua.LState) int {
			arg := ""
			if takesArg {
				arg = L.CheckString(1)
			}
			if _, err := sess.apply(opName, arg); err != nil {
				opErr = err
				L.RaiseError("%s: %v", opName, err)
			}
			return 0
		}
	}

	funcs := map[string]lua.LGFunction{
		"keydown": op("down", true),
		"keyup":   op("up", true),
		"press":   op("press", true),
		"blur":    op("blur", false),
		"write":   op("write", true),
		"reset":   op("reset", false),
		"modifiers": func(L *lua.LState) int {
			names := make([]string, 0, L.GetTop())
			for i := 1; i <= L.GetTop(); i++ {
				names = append(names, L.CheckString(i))
			}
			mods, err := key.ParseModifierSet(names)
			if err != nil {
				L.ArgError(1, err.Error())
				return 0
			}
			sess.setModifiers(mods)
			return 0
		},
		"display": func(L *lua.LState) int {
			L.Push(stringTable(L, sess.rec.State().Display))
			return 1
		},
		"emitted": func(L *lua.LState) int {
			L.Push(stringTable(L, sess.emitted))
			return 1
		},
		"value": func(L *lua.LState) int {
			L.Push(lua.LString(sess.rec.Value()))
			return 1
		},
		"valid": func(L *lua.LState) int {
			L.Push(lua.LBool(sess.rec.State().Status.Valid))
			return 1
		},
		"progress": func(L *lua.LState) int {
			L.Push(lua.LBool(sess.rec.State().Status.InProgress))
			return 1
		},
		"committed": func(L *lua.LState) int {
			L.Push(lua.LBool(sess.rec.State().Status.Committed))
			return 1
		},
		"expect": func(L *lua.LState) int {
			ok := L.ToBool(1)
			msg := L.OptString(2, "expectation failed")
			if !ok {
				sess.fail(&StepError{Field: "expect", Got: false, Want: msg})
			}
			return 0
		},
	}
	for fname, fn := range funcs {
		L.SetGlobal(fname, L.NewFunction(fn))
	}

	defer func() {
		if p := recover(); p != nil {
			res, err = sess.result(), fmt.Errorf("%s: lua panic: %v", name, p)
		}
	}()

	if err := L.DoString(src); err != nil {
		if opErr != nil {
			return sess.result(), opErr
		}
		return sess.result(), fmt.Errorf("%s: %w", name, err)
	}

	res = sess.result()
	r.logger.Debug("script %q: %d steps, %d failures", name, res.Steps, len(res.Failures))
	return res, nil
}

// newSandbox creates a Lua state with only the base, table, string and
// math libraries. io, os, debug and package stay closed, and the loaders
// that read files or compile strings are removed.
func newSandbox() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func stringTable(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for _, s := range items {
		t.Append(lua.LString(s))
	}
	return t
}
