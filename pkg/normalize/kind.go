package normalize

import (
	"sort"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Func maps one scalar to its normalized form
type Func func(interface{}) interface{}

// Kind names one member of the closed set of field normalizers that
// configuration may reference.
type Kind string

const (
	KindPhone Kind = "phone"
	KindEmail Kind = "email"
	KindTrim  Kind = "trim"
	KindLower Kind = "lower"
	KindUpper Kind = "upper"
)

var kinds = map[Kind]Func{
	KindPhone: Phone,
	KindEmail: Email,
	KindTrim:  Trim,
	KindLower: Lower,
	KindUpper: Upper,
}

// Lookup returns the normalizer for kind.
func Lookup(kind Kind) (Func, error) {
	fn, ok := kinds[kind]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown normalizer %q (available: %v)", kind, Kinds())
	}
	return fn, nil
}

// Kinds lists the available normalizer kinds in sorted order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// StandardFields is the default field to normalizer assignment applied to
// staged sources that do not declare their own.
func StandardFields() map[string]Kind {
	return map[string]Kind{
		"phone_number": KindPhone,
		"email":        KindEmail,
	}
}
