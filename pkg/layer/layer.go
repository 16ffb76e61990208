// Package layer combines named tables into new named tables.
//
// A Layer is either a UnionLayer, which stacks its sources vertically, or a
// MergeLayer, which folds its sources left to right through key-based joins
// and resolves columns present on both sides of each join. Layers are
// materialised in declaration order by an Executor into a Namespace, so a
// layer may only reference staged sources and layers declared before it.
//
// # Basic Usage
//
//	ns := layer.NewNamespace()
//	_ = ns.Put("crm", crm)
//	_ = ns.Put("sheet", sheet)
//
//	exec := layer.NewExecutor(logger)
//	err := exec.Run(ctx, ns, []layer.Layer{
//		&layer.MergeLayer{
//			LayerName:   "contacts",
//			SourceNames: []string{"crm", "sheet"},
//			MergeKeys:   []string{"email"},
//			MergeType:   layer.JoinOuter,
//		},
//	})
//	contacts, _ := ns.Get("contacts")
//
// Processors never modify their inputs; every layer output is a fresh table.
package layer

import (
	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/resolve"
)

// Kind distinguishes layer variants
type Kind string

const (
	KindUnion Kind = "union"
	KindMerge Kind = "merge"
)

// Layer is a declared combination step. The set of implementations is
// closed: *UnionLayer and *MergeLayer.
type Layer interface {
	Name() string
	Kind() Kind
	Sources() []string
	Transformations() []Transformation
	Validate() error
	sealed()
}

// UnionLayer stacks its sources vertically
type UnionLayer struct {
	LayerName   string
	SourceNames []string
	// AddSourceColumn tags every row with its source under _source unless
	// the source already carries that column
	AddSourceColumn bool
	Transforms      []Transformation
}

func (l *UnionLayer) Name() string                      { return l.LayerName }
func (l *UnionLayer) Kind() Kind                        { return KindUnion }
func (l *UnionLayer) Sources() []string                 { return l.SourceNames }
func (l *UnionLayer) Transformations() []Transformation { return l.Transforms }
func (l *UnionLayer) sealed()                           {}

// Validate checks the declaration on its own, without a namespace.
func (l *UnionLayer) Validate() error {
	if l.LayerName == "" {
		return errors.New(errors.ErrorTypeConfig, "union layer needs a name")
	}
	if len(l.SourceNames) == 0 {
		return errors.Newf(errors.ErrorTypeConfig, "union layer %s declares no sources", l.LayerName)
	}
	return nil
}

// JoinType selects the relational join performed by each merge step
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinOuter JoinType = "outer"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
)

// ParseJoinType validates a configured join type. Empty means outer.
func ParseJoinType(s string) (JoinType, error) {
	switch JoinType(s) {
	case "":
		return JoinOuter, nil
	case JoinInner, JoinOuter, JoinLeft, JoinRight:
		return JoinType(s), nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unknown merge type %q", s)
}

// MismatchPolicy decides what a merge step does when merge keys are missing
// from one side
type MismatchPolicy string

const (
	// MismatchFallback returns the left side for left joins and the union of
	// both sides otherwise, logging a warning
	MismatchFallback MismatchPolicy = "fallback"
	// MismatchFail aborts the layer with a key_mismatch error
	MismatchFail MismatchPolicy = "fail"
)

// MergeLayer folds its sources through pairwise key-based joins
type MergeLayer struct {
	LayerName   string
	SourceNames []string
	MergeKeys   []string
	MergeType   JoinType
	// MergeableColumns are never suffixed, even when listed as exclusive
	MergeableColumns []string
	// ExclusiveColumns get a _<source> suffix so each source keeps its own
	ExclusiveColumns []string
	// ConflictResolutions maps a column to its resolution; columns not
	// listed use DefaultResolution
	ConflictResolutions map[string]resolve.Spec
	DefaultResolution   resolve.Spec
	OnKeyMismatch       MismatchPolicy
	Transforms          []Transformation
}

func (l *MergeLayer) Name() string                      { return l.LayerName }
func (l *MergeLayer) Kind() Kind                        { return KindMerge }
func (l *MergeLayer) Sources() []string                 { return l.SourceNames }
func (l *MergeLayer) Transformations() []Transformation { return l.Transforms }
func (l *MergeLayer) sealed()                           {}

// Validate checks the declaration on its own, without a namespace.
func (l *MergeLayer) Validate() error {
	if l.LayerName == "" {
		return errors.New(errors.ErrorTypeConfig, "merge layer needs a name")
	}
	if len(l.SourceNames) < 2 {
		return errors.Newf(errors.ErrorTypeConfig,
			"merge layer %s requires at least 2 sources, got %d", l.LayerName, len(l.SourceNames))
	}
	if len(l.MergeKeys) == 0 {
		return errors.Newf(errors.ErrorTypeConfig, "merge layer %s declares no merge keys", l.LayerName)
	}
	if _, err := ParseJoinType(string(l.MergeType)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "merge layer "+l.LayerName)
	}
	switch l.OnKeyMismatch {
	case "", MismatchFallback, MismatchFail:
	default:
		return errors.Newf(errors.ErrorTypeConfig, "merge layer %s: unknown on_key_mismatch %q", l.LayerName, l.OnKeyMismatch)
	}
	if err := l.DefaultResolution.Validate(); err != nil {
		return errors.Wrap(err, errors.TypeOf(err), "merge layer "+l.LayerName+" default resolution")
	}
	if err := l.checkPreferred("default resolution", l.DefaultResolution); err != nil {
		return err
	}
	for col, spec := range l.ConflictResolutions {
		if err := spec.Validate(); err != nil {
			return errors.Wrap(err, errors.TypeOf(err), "merge layer "+l.LayerName+" column "+col)
		}
		if err := l.checkPreferred("column "+col, spec); err != nil {
			return err
		}
	}
	return nil
}

// checkPreferred rejects a preferSource resolution naming a source the layer
// does not merge.
func (l *MergeLayer) checkPreferred(what string, spec resolve.Spec) error {
	if spec.Strategy != resolve.PreferSource {
		return nil
	}
	for _, src := range l.SourceNames {
		if src == spec.PreferredSource {
			return nil
		}
	}
	return errors.Newf(errors.ErrorTypeConfig,
		"merge layer %s %s: preferred source %q is not one of %v",
		l.LayerName, what, spec.PreferredSource, l.SourceNames)
}

func (l *MergeLayer) joinType() JoinType {
	if l.MergeType == "" {
		return JoinOuter
	}
	return l.MergeType
}

func (l *MergeLayer) mismatchPolicy() MismatchPolicy {
	if l.OnKeyMismatch == "" {
		return MismatchFallback
	}
	return l.OnKeyMismatch
}

func (l *MergeLayer) resolution(column string) resolve.Spec {
	if spec, ok := l.ConflictResolutions[column]; ok {
		return spec
	}
	return l.DefaultResolution
}
