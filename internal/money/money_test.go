package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"10", 1000},
		{"12.3", 1230},
		{"12.34", 1234},
		{"12.345", 1235},  // half rounds up
		{"12.344", 1234},  // below half rounds down
		{"12.3449", 1234}, // only the third digit decides
		{"-12.345", -1235},
		{"+6.00", 600},
		{".5", 50},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		assert.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseCents_Invalid(t *testing.T) {
	for _, in := range []string{"", " ", "abc", "1.2.3", "12,50", "-"} {
		_, err := ParseCents(in)
		assert.Error(t, err, in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "12.35", FormatCents(1235))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-3.10", FormatCents(-310))
}
