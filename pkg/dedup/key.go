package dedup

import (
	"strings"

	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/normalize"
)

// KeySeparator separates the positional parts of a composite key
const KeySeparator = "|"

// CompositeKey joins already-normalized identifier values positionally.
// A missing part contributes an empty segment, so for (email, phone):
//
//	both present -> "email|phone"
//	email only   -> "email|"
//	phone only   -> "|phone"
//
// ok is false when every part is null; such records are never grouped.
func CompositeKey(parts ...interface{}) (key string, ok bool) {
	segments := make([]string, len(parts))
	for i, p := range parts {
		if models.IsNull(p) {
			continue
		}
		segments[i] = models.Stringify(p)
		ok = true
	}
	if !ok {
		return "", false
	}
	return strings.Join(segments, KeySeparator), true
}

// KeyColumns names the identifying columns a composite key is derived from
type KeyColumns struct {
	Email string `yaml:"email_column" json:"email_column"`
	Phone string `yaml:"phone_column" json:"phone_column"`
}

// DefaultKeyColumns returns the columns used when none are configured.
func DefaultKeyColumns() KeyColumns {
	return KeyColumns{Email: "email", Phone: "phone_number"}
}

func (k KeyColumns) withDefaults() KeyColumns {
	d := DefaultKeyColumns()
	if k.Email == "" {
		k.Email = d.Email
	}
	if k.Phone == "" {
		k.Phone = d.Phone
	}
	return k
}

// Normalized returns the normalized email and phone of row. A column that
// the row (or its table) lacks reads as null.
func (k KeyColumns) Normalized(row models.Row) (email, phone interface{}) {
	k = k.withDefaults()
	return normalize.Email(row[k.Email]), normalize.Phone(row[k.Phone])
}

// KeyFor derives the composite key of row.
func (k KeyColumns) KeyFor(row models.Row) (string, bool) {
	email, phone := k.Normalized(row)
	return CompositeKey(email, phone)
}
