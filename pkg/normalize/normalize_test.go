package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/strata/pkg/errors"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want interface{}
	}{
		{"leading zero with dashes", "0812-3456-789", "+628123456789"},
		{"international with spaces", "+62 812 3456 7890", "+6281234567890"},
		{"country code without plus", "62812-3456-7890", "+6281234567890"},
		{"bare subscriber number", "812-3456-7890", "+6281234567890"},
		{"parentheses and dots", "(0812).3456.7890", "+6281234567890"},
		{"integer input", int64(81234567890), "+6281234567890"},
		{"too short", "0812-345", nil},
		{"too long", "0812345678901234", nil},
		{"letters only", "call me", nil},
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"nil", nil, nil},
		{"NaN", math.NaN(), nil},
		{"only one prefix stripped", "0062812345678", "+62062812345678"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Phone(tt.in))
		})
	}
}

func TestPhoneIsIdempotent(t *testing.T) {
	once := Phone("0812-3456-789")
	require.NotNil(t, once)
	assert.Equal(t, once, Phone(once))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", Email("  A@X.com "))
	assert.Equal(t, "first.last@sub.example.org", Email("First.Last@Sub.Example.org"))
	assert.Nil(t, Email("no-at-sign.com"))
	assert.Nil(t, Email("dot.before@at"))
	assert.Nil(t, Email(""))
	assert.Nil(t, Email(nil))
}

func TestTrimLowerUpper(t *testing.T) {
	assert.Equal(t, "x", Trim("  x "))
	assert.Nil(t, Trim("   "))
	assert.Equal(t, int64(3), Trim(int64(3)))
	assert.Equal(t, "abc", Lower("AbC"))
	assert.Equal(t, "ABC", Upper("abc"))
	assert.Nil(t, Lower(nil))
}

func TestLookup(t *testing.T) {
	fn, err := Lookup(KindPhone)
	require.NoError(t, err)
	assert.Equal(t, "+628123456789", fn("08123456789"))

	_, err = Lookup("soundex")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestColumnName(t *testing.T) {
	tests := map[string]string{
		"Phone Number":       "phone_number",
		"No.HP/Telp":         "no_hp_telp",
		"  Email  ":          "email",
		"Nama Bisnis/Usaha?": "nama_bisnis_usaha",
		"Café Área":          "cafe_area",
		"a__b":               "a_b",
	}
	for in, want := range tests {
		assert.Equal(t, want, ColumnName(in), in)
	}
}

func TestColumnNames(t *testing.T) {
	m := ColumnNames([]string{"email", "Phone Number"})
	assert.Equal(t, map[string]string{"Phone Number": "phone_number"}, m)
}
