package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// ProvenanceColumn records the source a row originated from
	ProvenanceColumn = "_source"
	// SheetColumn records the sheet or table a row was read from
	SheetColumn = "_sheet_name"
	// InternalPrefix marks metadata columns that are stripped before output
	InternalPrefix = "_"
)

// IsInternalColumn reports whether a column carries internal metadata.
func IsInternalColumn(name string) bool {
	return strings.HasPrefix(name, InternalPrefix)
}

// IsNull reports whether v represents a missing value. NaN floats count as
// null so numeric sources that encode gaps as NaN behave like nil.
func IsNull(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// NormalizeValue coerces driver and decoder output into the scalar set used
// by tables: nil, string, int64, float64, bool and time.Time.
func NormalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case float32:
		if math.IsNaN(float64(x)) {
			return nil
		}
		return float64(x)
	case float64:
		if math.IsNaN(x) {
			return nil
		}
		return x
	case bool:
		return x
	case time.Time:
		return x
	case *time.Time:
		if x == nil {
			return nil
		}
		return *x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Stringify renders a scalar as text. Null renders as the empty string.
func Stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(NormalizeValue(x))
	}
}

// kind orders the comparable families of scalars
type kind int

const (
	kindNull kind = iota
	kindBool
	kindNumber
	kindTime
	kindString
	kindOther
)

func kindOf(v interface{}) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return kindNumber
	case time.Time:
		return kindTime
	case string:
		return kindString
	}
	return kindOther
}

func toFloat(v interface{}) float64 {
	switch x := NormalizeValue(v).(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// Compare orders two non-null scalars, returning -1, 0 or 1. Numbers compare
// numerically across integer and float representations, times
// chronologically, booleans false before true and strings lexically. Values
// of different families fall back to comparing their text form.
func Compare(a, b interface{}) int {
	ka, kb := kindOf(a), kindOf(b)
	if ka == kb {
		switch ka {
		case kindNumber:
			ia, aInt := NormalizeValue(a).(int64)
			ib, bInt := NormalizeValue(b).(int64)
			if aInt && bInt {
				return cmpOrdered(ia, ib)
			}
			return cmpOrdered(toFloat(a), toFloat(b))
		case kindTime:
			ta, tb := a.(time.Time), b.(time.Time)
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			}
			return 0
		case kindBool:
			ba, bb := a.(bool), b.(bool)
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		case kindString:
			return strings.Compare(a.(string), b.(string))
		}
	}
	return strings.Compare(Stringify(a), Stringify(b))
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// KeyString encodes a value for equality matching on join keys. Each family
// carries its own tag so "1" and 1 never match, while int64(1) and 1.0 do.
// Null encodes to a dedicated marker.
func KeyString(v interface{}) string {
	if IsNull(v) {
		return "\x00"
	}
	switch x := NormalizeValue(v).(type) {
	case int64:
		return "n:" + strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return "n:" + strconv.FormatInt(int64(x), 10)
		}
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	case string:
		return "s:" + x
	default:
		return "s:" + Stringify(x)
	}
}

// FieldType names the inferred type of a column
type FieldType string

const (
	FieldTypeInteger  FieldType = "integer"
	FieldTypeFloat    FieldType = "float"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDatetime FieldType = "datetime"
	FieldTypeText     FieldType = "text"
)

// InferFieldType inspects the non-null values of a column. Integers mixed
// with floats widen to float; any other mix is text. A column without values
// is text.
func (t *Table) InferFieldType(column string) FieldType {
	var seen FieldType
	for _, r := range t.rows {
		v := r[column]
		if IsNull(v) {
			continue
		}
		var ft FieldType
		switch NormalizeValue(v).(type) {
		case int64:
			ft = FieldTypeInteger
		case float64:
			ft = FieldTypeFloat
		case bool:
			ft = FieldTypeBoolean
		case time.Time:
			ft = FieldTypeDatetime
		default:
			return FieldTypeText
		}
		switch {
		case seen == "":
			seen = ft
		case seen == ft:
		case (seen == FieldTypeInteger && ft == FieldTypeFloat) || (seen == FieldTypeFloat && ft == FieldTypeInteger):
			seen = FieldTypeFloat
		default:
			return FieldTypeText
		}
	}
	if seen == "" {
		return FieldTypeText
	}
	return seen
}
