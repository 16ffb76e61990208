package resolve

import (
	"sort"
	"sync"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

// Func resolves two candidate values into one. Returning an error, or
// panicking, aborts the enclosing layer.
type Func func(left, right interface{}) (interface{}, error)

// Registry holds named custom resolvers
type Registry struct {
	funcs map[string]Func
	mu    sync.RWMutex
}

// Global registry instance
var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Default returns the process-wide registry holding the built-in resolvers
// and any registered at startup.
func Default() *Registry {
	return defaultRegistry
}

// Register adds fn under name. Registering a name twice is a config error.
func (r *Registry) Register(name string, fn Func) error {
	if name == "" || fn == nil {
		return errors.New(errors.ErrorTypeConfig, "custom resolver needs a name and a function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "custom resolver %s already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Lookup returns the resolver registered under name.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "custom resolver %s not found", name).
			WithDetail("resolver", name)
	}
	return fn, nil
}

// Names lists registered resolvers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for n := range r.funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Register adds fn to the default registry.
func Register(name string, fn Func) error {
	return defaultRegistry.Register(name, fn)
}

func init() {
	_ = Register("longest", longest)
	_ = Register("sum", sum)
}

// longest keeps the value with the longer text form, preferring left on ties.
func longest(left, right interface{}) (interface{}, error) {
	switch {
	case models.IsNull(left):
		return right, nil
	case models.IsNull(right):
		return left, nil
	case len(models.Stringify(right)) > len(models.Stringify(left)):
		return right, nil
	default:
		return left, nil
	}
}

// sum adds two numeric values. Non-numeric input is a resolver error.
func sum(left, right interface{}) (interface{}, error) {
	if models.IsNull(left) {
		return right, nil
	}
	if models.IsNull(right) {
		return left, nil
	}
	l, lok := models.NormalizeValue(left).(int64)
	r, rok := models.NormalizeValue(right).(int64)
	if lok && rok {
		return l + r, nil
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, errors.Newf(errors.ErrorTypeData, "sum: cannot add %T and %T", left, right)
	}
	return lf + rf, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := models.NormalizeValue(v).(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
