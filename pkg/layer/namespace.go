package layer

import (
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
)

// Reader gives processors read access to materialised tables
type Reader interface {
	Get(name string) (*models.Table, bool)
}

// Namespace maps names to materialised tables for one run. Each name is
// written once; a run is single-threaded, so no locking is done.
type Namespace struct {
	tables map[string]*models.Table
	order  []string
}

// NewNamespace creates an empty namespace
func NewNamespace() *Namespace {
	return &Namespace{tables: make(map[string]*models.Table)}
}

// Put stores t under name. Writing a name twice is a config error.
func (n *Namespace) Put(name string, t *models.Table) error {
	if _, exists := n.tables[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "name %s is already materialised", name)
	}
	if t == nil {
		t = models.NewTable(name)
	}
	n.tables[name] = t
	n.order = append(n.order, name)
	return nil
}

// Get returns the table stored under name.
func (n *Namespace) Get(name string) (*models.Table, bool) {
	t, ok := n.tables[name]
	return t, ok
}

// Has reports whether name is materialised.
func (n *Namespace) Has(name string) bool {
	_, ok := n.tables[name]
	return ok
}

// Names lists materialised names in insertion order.
func (n *Namespace) Names() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Len returns the number of materialised names.
func (n *Namespace) Len() int {
	return len(n.order)
}
