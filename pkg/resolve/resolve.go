package resolve

import (
	"fmt"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

// DefaultSeparator joins concatenated values when no separator is configured
const DefaultSeparator = " | "

// Spec configures how one column is resolved
type Spec struct {
	Strategy Strategy
	// PreferredSource is required by PreferSource
	PreferredSource string
	// Separator is used by Concatenate; empty means DefaultSeparator
	Separator string
	// CustomName names the registered resolver used by Custom
	CustomName string
	// Custom is bound from CustomName by Bind, or set directly
	Custom Func
}

// Validate checks that the strategy carries the fields it needs.
func (s Spec) Validate() error {
	switch s.Strategy {
	case First, Last, Concatenate, Max, Min:
		return nil
	case PreferSource:
		if s.PreferredSource == "" {
			return errors.New(errors.ErrorTypeConfig, "preferSource strategy requires preferred_source")
		}
		return nil
	case Custom:
		if s.Custom == nil {
			return errors.Newf(errors.ErrorTypeConfig, "custom strategy has no resolver bound (name %q)", s.CustomName)
		}
		return nil
	default:
		return errors.Newf(errors.ErrorTypeUnknownStrategy, "unknown conflict resolution strategy %d", int(s.Strategy))
	}
}

// Bind looks up CustomName in reg when the spec uses the Custom strategy and
// no function is set yet.
func (s Spec) Bind(reg *Registry) (Spec, error) {
	if s.Strategy != Custom || s.Custom != nil {
		return s, nil
	}
	if reg == nil {
		reg = Default()
	}
	fn, err := reg.Lookup(s.CustomName)
	if err != nil {
		return s, err
	}
	s.Custom = fn
	return s, nil
}

func (s Spec) separator() string {
	if s.Separator == "" {
		return DefaultSeparator
	}
	return s.Separator
}

// Sides records which sources feed each side of a pairwise merge. Left holds
// every source folded into the accumulator so far; Right is the source being
// merged in.
type Sides struct {
	Left  []string
	Right string
}

// Resolve collapses left and right according to spec.
func Resolve(left, right interface{}, spec Spec, sides Sides) (interface{}, error) {
	switch spec.Strategy {
	case First:
		return first(left, right), nil
	case Last:
		return first(right, left), nil
	case PreferSource:
		// A preferred source not yet folded in leaves the accumulated side
		// in charge. Layers reject preferred sources they never merge.
		if spec.PreferredSource == sides.Right {
			return first(right, left), nil
		}
		return first(left, right), nil
	case Concatenate:
		return concatenate(left, right, spec.separator()), nil
	case Max:
		return extreme(left, right, 1), nil
	case Min:
		return extreme(left, right, -1), nil
	case Custom:
		return callCustom(spec, left, right)
	default:
		return nil, errors.Newf(errors.ErrorTypeUnknownStrategy, "unknown conflict resolution strategy %d", int(spec.Strategy))
	}
}

func first(a, b interface{}) interface{} {
	if models.IsNull(a) {
		if models.IsNull(b) {
			return nil
		}
		return b
	}
	return a
}

func concatenate(left, right interface{}, sep string) interface{} {
	ln, rn := models.IsNull(left), models.IsNull(right)
	switch {
	case ln && rn:
		return nil
	case ln:
		return models.Stringify(right)
	case rn:
		return models.Stringify(left)
	}
	ls, rs := models.Stringify(left), models.Stringify(right)
	if ls == rs {
		return ls
	}
	return ls + sep + rs
}

// extreme returns the greater value when sign is 1 and the lesser when -1.
// Left wins ties.
func extreme(left, right interface{}, sign int) interface{} {
	ln, rn := models.IsNull(left), models.IsNull(right)
	switch {
	case ln && rn:
		return nil
	case ln:
		return right
	case rn:
		return left
	}
	if models.Compare(right, left)*sign > 0 {
		return right
	}
	return left
}

func callCustom(spec Spec, left, right interface{}) (result interface{}, err error) {
	if spec.Custom == nil {
		return nil, errors.Newf(errors.ErrorTypeConfig, "custom resolver %q is not bound", spec.CustomName)
	}
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.Newf(errors.ErrorTypeCustomResolver, "custom resolver %q panicked: %v", spec.CustomName, r)
		}
	}()
	result, err = spec.Custom(left, right)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeCustomResolver,
			fmt.Sprintf("custom resolver %q failed", spec.CustomName))
	}
	return models.NormalizeValue(result), nil
}
