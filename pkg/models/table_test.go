package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendRowRegistersColumns(t *testing.T) {
	tbl := NewTable("leads", "email")
	tbl.AppendRow(Row{"email": "a@x.com"})
	tbl.AppendRow(Row{"email": "b@x.com", "phone": "+62812", "city": "Bandung"})

	assert.Equal(t, []string{"email", "city", "phone"}, tbl.Columns())
	assert.Equal(t, 2, tbl.Len())
	assert.Nil(t, tbl.Value(0, "city"))
	assert.Equal(t, "Bandung", tbl.Value(1, "city"))
}

func TestCloneIsIndependent(t *testing.T) {
	tbl := FromRows("a", []string{"k"}, []Row{{"k": "1"}})
	cp := tbl.Clone()
	cp.Rows()[0]["k"] = "2"
	cp.AddColumn("extra")

	assert.Equal(t, "1", tbl.Value(0, "k"))
	assert.False(t, tbl.HasColumn("extra"))
}

func TestRenameSelectDropReorder(t *testing.T) {
	tbl := FromRows("t", []string{"a", "b", "c"}, []Row{{"a": 1, "b": 2, "c": 3}})

	renamed := tbl.Rename(map[string]string{"b": "bee"})
	assert.Equal(t, []string{"a", "bee", "c"}, renamed.Columns())
	assert.Equal(t, 2, renamed.Value(0, "bee"))
	assert.True(t, tbl.HasColumn("b"), "source table must stay untouched")

	sel, missing := tbl.Select("c", "a", "zzz")
	assert.Equal(t, []string{"c", "a"}, sel.Columns())
	assert.Equal(t, []string{"zzz"}, missing)

	dropped := tbl.Drop("b")
	assert.Equal(t, []string{"a", "c"}, dropped.Columns())

	reordered, missing := tbl.Reorder("c", "nope")
	assert.Equal(t, []string{"c", "a", "b"}, reordered.Columns())
	assert.Equal(t, []string{"nope"}, missing)
}

func TestRenameCollisionKeepsNonNull(t *testing.T) {
	tbl := FromRows("t", []string{"phone", "no_telp"}, []Row{
		{"phone": "+6281", "no_telp": nil},
		{"phone": nil, "no_telp": "+6282"},
	})
	out := tbl.Rename(map[string]string{"no_telp": "phone"})

	require.Equal(t, []string{"phone"}, out.Columns())
	assert.Equal(t, "+6281", out.Value(0, "phone"))
	assert.Equal(t, "+6282", out.Value(1, "phone"))
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(math.NaN()))
	assert.False(t, IsNull(""))
	assert.False(t, IsNull(int64(0)))
}

func TestCompare(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	assert.Equal(t, -1, Compare(int64(1), 2.5))
	assert.Equal(t, 0, Compare(int64(2), 2.0))
	assert.Equal(t, 1, Compare("b", "a"))
	assert.Equal(t, -1, Compare(t1, t2))
	assert.Equal(t, -1, Compare(false, true))
	// Mixed families fall back to text ordering.
	assert.Equal(t, -1, Compare(int64(10), "9"))
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, KeyString(int64(1)), KeyString(1.0))
	assert.NotEqual(t, KeyString("1"), KeyString(int64(1)))
	assert.Equal(t, KeyString(nil), KeyString(math.NaN()))
	assert.NotEqual(t, KeyString(nil), KeyString(""))
}

func TestInferFieldType(t *testing.T) {
	tbl := FromRows("t", nil, []Row{
		{"i": int64(1), "f": int64(1), "s": "x", "b": true, "d": time.Now(), "n": nil},
		{"i": int64(2), "f": 2.5, "s": int64(3), "b": false, "n": nil},
	})

	assert.Equal(t, FieldTypeInteger, tbl.InferFieldType("i"))
	assert.Equal(t, FieldTypeFloat, tbl.InferFieldType("f"))
	assert.Equal(t, FieldTypeText, tbl.InferFieldType("s"))
	assert.Equal(t, FieldTypeBoolean, tbl.InferFieldType("b"))
	assert.Equal(t, FieldTypeDatetime, tbl.InferFieldType("d"))
	assert.Equal(t, FieldTypeText, tbl.InferFieldType("n"))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "42", Stringify(int64(42)))
	assert.Equal(t, "1.5", Stringify(1.5))
	assert.Equal(t, "2", Stringify(2.0))
	assert.Equal(t, "true", Stringify(true))
}
