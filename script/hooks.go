// Package script runs per-enemy-type tengo hooks on state transitions.
//
// A hook script defines
//
//	on_enter := func(engine, state, prev, next) { ... }
//
// where state is a map private to one agent that survives between calls and
// engine exposes cue(name) and health_percent().
package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

const dispatchScript = `
if __phase == "enter" {
	on_enter(__engine, __state, __prev, __next)
}
`

// Program is a compiled hook script shared by every agent of one type.
type Program struct {
	name     string
	compiled *tengo.Compiled
}

// Compile builds a hook program from source. name is only used in errors.
func Compile(name string, src []byte) (*Program, error) {
	script := tengo.NewScript([]byte(string(src) + "\n" + dispatchScript))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__prev", "")
	_ = script.Add("__next", "")
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Program{name: name, compiled: compiled}, nil
}

func (p *Program) Name() string { return p.name }

// Instance returns hooks with their own globals and state map.
func (p *Program) Instance() *Hooks {
	return &Hooks{
		name:     p.name,
		compiled: p.compiled.Clone(),
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

// Hooks is one agent's view of a Program. Not safe for concurrent use.
type Hooks struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	cues     []string

	// HealthPercent backs engine.health_percent(); nil reports 1.
	HealthPercent func() float64
}

func (h *Hooks) Name() string { return h.name }

// OnEnter runs the script for a transition and returns the cues it asked for.
func (h *Hooks) OnEnter(prev, next string) ([]string, error) {
	if h == nil || h.compiled == nil {
		return nil, nil
	}
	h.cues = h.cues[:0]
	if err := h.run("enter", prev, next); err != nil {
		return nil, fmt.Errorf("script: %s on_enter %s->%s: %w", h.name, prev, next, err)
	}
	if len(h.cues) == 0 {
		return nil, nil
	}
	return append([]string(nil), h.cues...), nil
}

// State exposes the script-side state map as plain Go values.
func (h *Hooks) State() map[string]any {
	out, _ := objectToAny(h.state).(map[string]any)
	return out
}

// SetState replaces the script-side state map. Whole float64 values become
// ints again, since JSON decoding turns every number into a float.
func (h *Hooks) SetState(state map[string]any) error {
	if state == nil {
		h.state = &tengo.Map{Value: map[string]tengo.Object{}}
		return nil
	}
	obj, err := tengo.FromInterface(normalizeNumbers(state))
	if err != nil {
		return fmt.Errorf("script: %s state: %w", h.name, err)
	}
	m, ok := obj.(*tengo.Map)
	if !ok {
		return fmt.Errorf("script: %s state: not a map", h.name)
	}
	h.state = m
	return nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeNumbers(item)
		}
		return out
	}
	return v
}

func (h *Hooks) run(phase, prev, next string) error {
	if err := h.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := h.compiled.Set("__engine", h.engine()); err != nil {
		return err
	}
	if err := h.compiled.Set("__state", h.state); err != nil {
		return err
	}
	if err := h.compiled.Set("__prev", prev); err != nil {
		return err
	}
	if err := h.compiled.Set("__next", next); err != nil {
		return err
	}
	return h.compiled.Run()
}

func (h *Hooks) engine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["cue"] = &tengo.UserFunction{Name: "cue", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		h.cues = append(h.cues, name)
		return tengo.TrueValue, nil
	}}

	values["health_percent"] = &tengo.UserFunction{Name: "health_percent", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if h.HealthPercent == nil {
			return &tengo.Float{Value: 1}, nil
		}
		return &tengo.Float{Value: h.HealthPercent()}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
