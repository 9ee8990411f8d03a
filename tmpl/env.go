package tmpl

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/jstmpl/js"
)

// Environment is an [Evaluator] that evaluates placeholders as expr-lang
// expressions over a set of variables and the builtin functions.
//
// Compiled programs are cached, so an Environment should be reused across
// renderings. It is safe for concurrent use.
type Environment struct {
	vars     map[string]any
	programs sync.Map // uint64 -> program
}

type program struct {
	source string
	*vm.Program
}

// Env returns an [Environment] over vars. Variables shadow builtins of the
// same name. The map is copied; later changes to vars are not observed.
func Env(vars map[string]any) *Environment {
	env := makeBuiltins()
	maps.Copy(env, vars)

	return &Environment{vars: env}
}

// Evaluate compiles and runs source.
func (e *Environment) Evaluate(ctx context.Context, source string) (any, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	prog, err := e.compile(source)
	if err != nil {
		return nil, err
	}

	out, err := expr.Run(prog, e.vars)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).
			With(slog.String("expression", source))
	}

	return out, nil
}

func (e *Environment) compile(source string) (*vm.Program, error) {
	key := xxh3.HashString(source)

	if cached, ok := e.programs.Load(key); ok {
		if p, ok := cached.(program); ok && p.source == source {
			return p.Program, nil
		}
	}

	prog, err := expr.Compile(source, expr.Env(e.vars))
	if err != nil {
		return nil, ErrCompile.Wrap(err).
			With(slog.String("expression", source))
	}

	e.programs.LoadOrStore(key, program{source: source, Program: prog})

	return prog, nil
}

// Names returns the sorted names available at the dot-separated path,
// or the top-level names if path is empty. It returns nil if path does not
// name a map.
func (e *Environment) Names(path string) []string {
	v, ok := e.Lookup(path)
	if !ok {
		return nil
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(m))
}

// Lookup returns the value at the dot-separated path. The empty path names
// the whole variable map.
func (e *Environment) Lookup(path string) (any, bool) {
	var current any = e.vars

	if path == "" {
		return current, true
	}

	for seg := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// With returns a new Environment with name bound to value. The receiver is
// not modified and its compiled programs are not shared, since a new binding
// may change how expressions type-check.
func (e *Environment) With(name string, value any) *Environment {
	vars := maps.Clone(e.vars)
	vars[name] = value

	return &Environment{vars: vars}
}

func rawFunc(code string) js.Raw { return js.Raw(code) }

func jsonFunc(v any) (js.Raw, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return js.Raw(data), nil
}
