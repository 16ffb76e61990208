// Package resolve collapses two candidate values for one column into one.
//
// A Spec names a Strategy plus the fields that strategy needs. Strategies
// form a closed set; arbitrary behaviour is plugged in through the Custom
// strategy and a name-keyed Registry of resolver functions populated at
// startup.
//
// The left value always belongs to the accumulated side of a merge (the
// sources folded so far) and the right value to the source being merged in.
package resolve

import (
	"strings"

	"github.com/ajitpratap0/strata/pkg/errors"
)

// Strategy identifies a conflict resolution rule
type Strategy int

const (
	// First takes the left value, falling back to the right one
	First Strategy = iota
	// Last takes the right value, falling back to the left one
	Last
	// PreferSource behaves as First or Last depending on which side the
	// preferred source sits on
	PreferSource
	// Concatenate joins both stringified values with a separator
	Concatenate
	// Max keeps the greater value
	Max
	// Min keeps the lesser value
	Min
	// Custom delegates to a registered resolver function
	Custom
)

var strategyNames = [...]string{
	First:        "first",
	Last:         "last",
	PreferSource: "preferSource",
	Concatenate:  "concatenate",
	Max:          "max",
	Min:          "min",
	Custom:       "custom",
}

// aliases accepted by ParseStrategy in addition to the canonical names
var strategyAliases = map[string]Strategy{
	"prefer_source": PreferSource,
	"prefersource":  PreferSource,
	"concat":        Concatenate,
}

// String returns the canonical strategy name.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "unknown"
	}
	return strategyNames[s]
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{First, Last, PreferSource, Concatenate, Max, Min, Custom}
}

// ParseStrategy maps a configured name to a Strategy. Names are matched case
// insensitively; unrecognised names yield an unknown_strategy error.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.TrimSpace(name)
	for i, canonical := range strategyNames {
		if strings.EqualFold(n, canonical) {
			return Strategy(i), nil
		}
	}
	if s, ok := strategyAliases[strings.ToLower(n)]; ok {
		return s, nil
	}
	return First, errors.Newf(errors.ErrorTypeUnknownStrategy, "unknown conflict resolution strategy %q", name).
		WithDetail("strategy", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(b []byte) error {
	parsed, err := ParseStrategy(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
