package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164UsesFrenchDefault(t *testing.T) {
	assert.Equal(t, "+33612345678", NormalizeE164("06 12 34 56 78"))
	assert.Equal(t, "+33142596008", NormalizeE164("01.42.59.60.08"))
	assert.Equal(t, "not a phone", NormalizeE164("  not a phone "))
	assert.Equal(t, "", NormalizeE164("   "))
}

func TestForDialing(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"06 12 34 56 78", "+33612345678"},
		{"06.12.34.56.78", "+33612345678"},
		{"0033 6 12 34 56 78", "+33612345678"},
		{"+33 6-12-34-56-78", "+33612345678"},
		{"33612345678", "+33612345678"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ForDialing(tc.in), "input %q", tc.in)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("0612345678"))
	assert.False(t, IsValid("12"))
}
