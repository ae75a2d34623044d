package dagger

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
)

// Scriptable is implemented by values that want to appear in a session as
// an object of session-bound functions instead of a raw value. The driver
// facade implements it so its blocking operations can be called from the
// shell without threading a context by hand.
type Scriptable interface {
	ScriptObject(ctx context.Context) map[string]any
}

// evaluator owns the session's JavaScript runtime. Goja is single-threaded;
// the session honors that by evaluating one expression at a time on the
// calling goroutine.
type evaluator struct {
	vm    *goja.Runtime
	names []string
}

// newEvaluator builds a runtime seeded with the bindings. Scriptable values
// are expanded via ScriptObject; everything else is set as-is, preserving
// identity of the underlying Go value. console.log output goes to out.
func newEvaluator(ctx context.Context, bindings map[string]any, out io.Writer) (*evaluator, error) {
	vm := goja.New()

	reg := require.NewRegistry()
	reg.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer{out: out}))
	reg.Enable(vm)
	console.Enable(vm)

	names := make([]string, 0, len(bindings))

	for name, value := range bindings {
		bound := value
		if s, ok := value.(Scriptable); ok {
			bound = s.ScriptObject(ctx)
		}

		if err := vm.Set(name, bound); err != nil {
			return nil, fmt.Errorf("bind %q: %w", name, err)
		}

		names = append(names, name)
	}

	sort.Strings(names)

	return &evaluator{vm: vm, names: names}, nil
}

// Eval runs one expression or statement and returns its value. Errors from
// Go functions bound into the runtime surface as evaluation errors.
func (e *evaluator) Eval(src string) (goja.Value, error) {
	return e.vm.RunString(src)
}

// Render formats a result value for display. Plain objects, maps, and
// arrays render as JSON rather than "[object Object]"; undefined and null
// render as nothing.
func (e *evaluator) Render(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}

	if obj, ok := v.(*goja.Object); ok {
		if _, isFunc := goja.AssertFunction(obj); !isFunc {
			if b, err := obj.MarshalJSON(); err == nil {
				return string(b)
			}
		}
	}

	return v.String()
}

// printer routes console output to the session's writer.
type printer struct {
	out io.Writer
}

func (p printer) Log(s string)   { fmt.Fprintln(p.out, s) }
func (p printer) Warn(s string)  { fmt.Fprintln(p.out, s) }
func (p printer) Error(s string) { fmt.Fprintln(p.out, s) }
