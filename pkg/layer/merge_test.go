package layer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/errors"
	"github.com/ajitpratap0/strata/pkg/models"
	"github.com/ajitpratap0/strata/pkg/resolve"
	"github.com/ajitpratap0/strata/pkg/testutil"
)

func nsWith(t *testing.T, tables ...*models.Table) *Namespace {
	t.Helper()
	ns := NewNamespace()
	for _, tbl := range tables {
		require.NoError(t, ns.Put(tbl.Name, tbl))
	}
	return ns
}

func keyed(name string, cols []string, rows ...models.Row) *models.Table {
	return testutil.Table(name, cols, rows...)
}

func TestMergeConcatenate(t *testing.T) {
	ns := nsWith(t,
		keyed("l", []string{"key", "city"}, models.Row{"key": "k1", "city": "X"}),
		keyed("r", []string{"key", "city"}, models.Row{"key": "k1", "city": "Y"}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))

	out, err := p.Process(&MergeLayer{
		LayerName:           "m",
		SourceNames:         []string{"l", "r"},
		MergeKeys:           []string{"key"},
		ConflictResolutions: map[string]resolve.Spec{"city": {Strategy: resolve.Concatenate, Separator: " | "}},
	}, ns)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	testutil.RequireColumns(t, out, "key", "city")
	assert.Equal(t, "X | Y", out.Value(0, "city"))
}

func joinFixture(t *testing.T) *Namespace {
	t.Helper()
	return nsWith(t,
		keyed("l", []string{"key", "name"},
			models.Row{"key": "k1", "name": "Ana"},
			models.Row{"key": "k2", "name": "Budi"},
		),
		keyed("r", []string{"key", "city"},
			models.Row{"key": "k2", "city": "Bandung"},
			models.Row{"key": "k3", "city": "Medan"},
		),
	)
}

func TestMergeJoinTypes(t *testing.T) {
	tests := []struct {
		how  JoinType
		keys []interface{}
	}{
		{JoinInner, []interface{}{"k2"}},
		{JoinLeft, []interface{}{"k1", "k2"}},
		{JoinRight, []interface{}{"k2", "k3"}},
		{JoinOuter, []interface{}{"k1", "k2", "k3"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.how), func(t *testing.T) {
			p := NewMergeProcessor(testutil.TestLogger(t))
			out, err := p.Process(&MergeLayer{
				LayerName:   "m",
				SourceNames: []string{"l", "r"},
				MergeKeys:   []string{"key"},
				MergeType:   tt.how,
			}, joinFixture(t))
			require.NoError(t, err)

			testutil.RequireColumns(t, out, "key", "name", "city")
			assert.Equal(t, tt.keys, testutil.Column(out, "key"))
		})
	}
}

func TestMergeOuterFillsNulls(t *testing.T) {
	p := NewMergeProcessor(testutil.TestLogger(t))
	out, err := p.Process(&MergeLayer{
		LayerName:   "m",
		SourceNames: []string{"l", "r"},
		MergeKeys:   []string{"key"},
	}, joinFixture(t))
	require.NoError(t, err)

	assert.Equal(t, models.Row{"key": "k1", "name": "Ana", "city": nil}, out.Row(0))
	assert.Equal(t, models.Row{"key": "k2", "name": "Budi", "city": "Bandung"}, out.Row(1))
	assert.Equal(t, models.Row{"key": "k3", "name": nil, "city": "Medan"}, out.Row(2))
}

func TestMergeCardinalityBounds(t *testing.T) {
	ns := nsWith(t,
		keyed("l", []string{"key", "v"},
			models.Row{"key": "k1", "v": int64(1)},
			models.Row{"key": "k1", "v": int64(2)},
			models.Row{"key": "k2", "v": int64(3)},
		),
		keyed("r", []string{"key", "w"},
			models.Row{"key": "k1", "w": "a"},
			models.Row{"key": "k1", "w": "b"},
			models.Row{"key": "k4", "w": "c"},
		),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))

	inner, err := p.Process(&MergeLayer{LayerName: "i", SourceNames: []string{"l", "r"}, MergeKeys: []string{"key"}, MergeType: JoinInner}, ns)
	require.NoError(t, err)
	assert.Equal(t, 4, inner.Len(), "2x2 matching group")
	assert.Equal(t, []interface{}{"a", "b", "a", "b"}, testutil.Column(inner, "w"))

	outer, err := p.Process(&MergeLayer{LayerName: "o", SourceNames: []string{"l", "r"}, MergeKeys: []string{"key"}, MergeType: JoinOuter}, ns)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, outer.Len(), 3)
	assert.Equal(t, 6, outer.Len())
}

func TestMergeNumericKeysMatchAcrossTypes(t *testing.T) {
	ns := nsWith(t,
		keyed("l", []string{"id", "a"}, models.Row{"id": int64(7), "a": "x"}),
		keyed("r", []string{"id", "b"}, models.Row{"id": 7.0, "b": "y"}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))
	out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"id"}, MergeType: JoinInner}, ns)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestMergeNullKeysNeverMatch(t *testing.T) {
	ns := nsWith(t,
		keyed("l", []string{"email", "a"}, models.Row{"email": nil, "a": "x"}),
		keyed("r", []string{"email", "b"}, models.Row{"email": nil, "b": "y"}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))
	out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"email"}}, ns)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
}

func TestMergeExclusiveColumns(t *testing.T) {
	ns := nsWith(t,
		keyed("crm", []string{"email", "phone", "name", models.ProvenanceColumn},
			models.Row{"email": "a@x.com", "phone": "+6281", "name": "Ana", models.ProvenanceColumn: "crm"}),
		keyed("sheet", []string{"email", "phone", "name", models.ProvenanceColumn},
			models.Row{"email": "a@x.com", "phone": "+6282", "name": "Ana S.", models.ProvenanceColumn: "sheet"}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))

	out, err := p.Process(&MergeLayer{
		LayerName:        "m",
		SourceNames:      []string{"crm", "sheet"},
		MergeKeys:        []string{"email"},
		ExclusiveColumns: []string{"phone", "name", "email", models.ProvenanceColumn},
		MergeableColumns: []string{"name"},
	}, ns)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	testutil.RequireColumns(t, out, "email", "phone_crm", "name", models.ProvenanceColumn, "phone_sheet")
	assert.Equal(t, "+6281", out.Value(0, "phone_crm"))
	assert.Equal(t, "+6282", out.Value(0, "phone_sheet"))
	assert.Equal(t, "Ana", out.Value(0, "name"))
	assert.Equal(t, "crm", out.Value(0, models.ProvenanceColumn))
}

func TestMergePreferSourceAcrossFold(t *testing.T) {
	tables := []*models.Table{}
	for _, src := range []string{"a", "b", "c"} {
		tables = append(tables, keyed(src, []string{"key", "city"}, models.Row{"key": "k", "city": "from-" + src}))
	}
	p := NewMergeProcessor(testutil.TestLogger(t))

	for _, preferred := range []string{"a", "b", "c"} {
		t.Run(preferred, func(t *testing.T) {
			out, err := p.Process(&MergeLayer{
				LayerName:         "m",
				SourceNames:       []string{"a", "b", "c"},
				MergeKeys:         []string{"key"},
				DefaultResolution: resolve.Spec{Strategy: resolve.PreferSource, PreferredSource: preferred},
			}, nsWith(t, tables...))
			require.NoError(t, err)
			assert.Equal(t, "from-"+preferred, out.Value(0, "city"))
		})
	}
}

func TestMergeRejectsUnknownPreferredSource(t *testing.T) {
	base := func() *MergeLayer {
		return &MergeLayer{LayerName: "m", SourceNames: []string{"a", "b"}, MergeKeys: []string{"key"}}
	}

	l := base()
	l.ConflictResolutions = map[string]resolve.Spec{"city": {Strategy: resolve.PreferSource, PreferredSource: "bb"}}
	err := l.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Contains(t, err.Error(), `"bb"`)

	l = base()
	l.DefaultResolution = resolve.Spec{Strategy: resolve.PreferSource, PreferredSource: "c"}
	require.Error(t, l.Validate())

	err = Validate([]Layer{l}, []string{"a", "b"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	l = base()
	l.ConflictResolutions = map[string]resolve.Spec{"city": {Strategy: resolve.PreferSource, PreferredSource: "b"}}
	assert.NoError(t, l.Validate())
}

func TestMergeFirstAndLastAcrossFold(t *testing.T) {
	ns := nsWith(t,
		keyed("a", []string{"key", "city"}, models.Row{"key": "k", "city": nil}),
		keyed("b", []string{"key", "city"}, models.Row{"key": "k", "city": "B"}),
		keyed("c", []string{"key", "city"}, models.Row{"key": "k", "city": "C"}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))

	first, err := p.Process(&MergeLayer{LayerName: "f", SourceNames: []string{"a", "b", "c"}, MergeKeys: []string{"key"}}, ns)
	require.NoError(t, err)
	assert.Equal(t, "B", first.Value(0, "city"))

	last, err := p.Process(&MergeLayer{
		LayerName: "l", SourceNames: []string{"a", "b", "c"}, MergeKeys: []string{"key"},
		DefaultResolution: resolve.Spec{Strategy: resolve.Last},
	}, ns)
	require.NoError(t, err)
	assert.Equal(t, "C", last.Value(0, "city"))
}

func TestMergeKeyMismatch(t *testing.T) {
	fixture := func(t *testing.T) *Namespace {
		return nsWith(t,
			keyed("l", []string{"email", "name"}, models.Row{"email": "a@x.com", "name": "Ana"}),
			keyed("r", []string{"phone", "city"}, models.Row{"phone": "+6281", "city": "Bandung"}),
		)
	}
	p := NewMergeProcessor(testutil.TestLogger(t))

	t.Run("outer falls back to union", func(t *testing.T) {
		out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"email"}}, fixture(t))
		require.NoError(t, err)
		assert.Equal(t, 2, out.Len())
		testutil.RequireColumns(t, out, "email", "name", "phone", "city")
	})

	t.Run("left returns the left side", func(t *testing.T) {
		out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"email"}, MergeType: JoinLeft}, fixture(t))
		require.NoError(t, err)
		assert.Equal(t, 1, out.Len())
		assert.Equal(t, "m", out.Name)
		testutil.RequireColumns(t, out, "email", "name")
	})

	t.Run("fail policy aborts", func(t *testing.T) {
		_, err := p.Process(&MergeLayer{
			LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"email"},
			OnKeyMismatch: MismatchFail,
		}, fixture(t))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeKeyMismatch))
	})
}

func TestMergeEmptySideIsSkipped(t *testing.T) {
	ns := nsWith(t,
		models.NewTable("empty", "key", "x"),
		keyed("full", []string{"key", "y"}, models.Row{"key": "k", "y": int64(1)}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))

	out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"empty", "full"}, MergeKeys: []string{"key"}, MergeType: JoinInner}, ns)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
	testutil.RequireColumns(t, out, "key", "y")
}

func TestMergeRequiresTwoSources(t *testing.T) {
	p := NewMergeProcessor(testutil.TestLogger(t))
	_, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"only"}, MergeKeys: []string{"k"}}, NewNamespace())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestMergeMissingSourceLeavesTooFew(t *testing.T) {
	ns := joinFixture(t)
	p := NewMergeProcessor(testutil.TestLogger(t))
	out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"l", "ghost"}, MergeKeys: []string{"key"}}, ns)
	require.NoError(t, err)
	assert.True(t, out.IsEmpty())
}

func TestMergeCustomResolverFailureAborts(t *testing.T) {
	ns := nsWith(t,
		keyed("l", []string{"key", "v"}, models.Row{"key": "k", "v": "a"}),
		keyed("r", []string{"key", "v"}, models.Row{"key": "k", "v": "b"}),
	)
	p := NewMergeProcessor(testutil.TestLogger(t))

	_, err := p.Process(&MergeLayer{
		LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"key"},
		ConflictResolutions: map[string]resolve.Spec{"v": {
			Strategy: resolve.Custom, CustomName: "explode",
			Custom: func(_, _ interface{}) (interface{}, error) { return nil, fmt.Errorf("boom") },
		}},
	}, ns)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCustomResolver))
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	ns := joinFixture(t)
	p := NewMergeProcessor(testutil.TestLogger(t))
	out, err := p.Process(&MergeLayer{LayerName: "m", SourceNames: []string{"l", "r"}, MergeKeys: []string{"key"}, ExclusiveColumns: []string{"name"}}, ns)
	require.NoError(t, err)
	out.Row(0)["key"] = "changed"

	l, _ := ns.Get("l")
	testutil.RequireColumns(t, l, "key", "name")
	assert.Equal(t, "k1", l.Value(0, "key"))
}
