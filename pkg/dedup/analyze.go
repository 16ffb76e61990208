package dedup

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/strata/pkg/models"
)

// IdentifierStats counts how often one identifier repeats across a table
type IdentifierStats struct {
	Present    int `json:"present"`
	Unique     int `json:"unique"`
	Duplicated int `json:"duplicated"` // rows sharing their value with an earlier row
}

// Analysis reports identifier coverage and duplication of a table before
// any deduplication happens.
type Analysis struct {
	TotalRows    int             `json:"total_rows"`
	WithEmail    int             `json:"with_email"`
	WithPhone    int             `json:"with_phone"`
	WithBoth     int             `json:"with_both"`
	WithNeither  int             `json:"with_neither"`
	Email        IdentifierStats `json:"email"`
	Phone        IdentifierStats `json:"phone"`
	CompositeKey IdentifierStats `json:"composite_key"`
}

// Analyze inspects t using the normalized identifiers named by keys.
func Analyze(t *models.Table, keys KeyColumns) Analysis {
	keys = keys.withDefaults()
	a := Analysis{TotalRows: t.Len()}
	emails := newCounter()
	phones := newCounter()
	composite := newCounter()

	for _, r := range t.Rows() {
		email, phone := keys.Normalized(r)
		hasEmail, hasPhone := email != nil, phone != nil
		switch {
		case hasEmail && hasPhone:
			a.WithBoth++
		case !hasEmail && !hasPhone:
			a.WithNeither++
		}
		if hasEmail {
			a.WithEmail++
			emails.add(email.(string))
		}
		if hasPhone {
			a.WithPhone++
			phones.add(phone.(string))
		}
		if k, ok := CompositeKey(email, phone); ok {
			composite.add(k)
		}
	}

	a.Email = emails.stats()
	a.Phone = phones.stats()
	a.CompositeKey = composite.stats()
	return a
}

// String renders a short human readable report.
func (a Analysis) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "rows: %d\n", a.TotalRows)
	fmt.Fprintf(&b, "with email: %d, with phone: %d, with both: %d, with neither: %d\n",
		a.WithEmail, a.WithPhone, a.WithBoth, a.WithNeither)
	fmt.Fprintf(&b, "email: %d unique, %d duplicated\n", a.Email.Unique, a.Email.Duplicated)
	fmt.Fprintf(&b, "phone: %d unique, %d duplicated\n", a.Phone.Unique, a.Phone.Duplicated)
	fmt.Fprintf(&b, "composite key: %d unique, %d duplicated\n",
		a.CompositeKey.Unique, a.CompositeKey.Duplicated)
	return b.String()
}

type counter struct {
	seen    map[string]struct{}
	present int
}

func newCounter() *counter {
	return &counter{seen: make(map[string]struct{})}
}

func (c *counter) add(v string) {
	c.present++
	c.seen[v] = struct{}{}
}

func (c *counter) stats() IdentifierStats {
	return IdentifierStats{
		Present:    c.present,
		Unique:     len(c.seen),
		Duplicated: c.present - len(c.seen),
	}
}
