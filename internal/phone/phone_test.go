package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"formatted us", "(415) 555-0100", "+14155550100"},
		{"bare ten digits", "4155550100", "+14155550100"},
		{"already canonical", "+14155550100", "+14155550100"},
		{"eleven digits with country code", "14155550100", "+14155550100"},
		{"dots and spaces", "1.415.555.0100", "+14155550100"},
		{"international with plus", "+447911123456", "+447911123456"},
		{"international without plus", "447911123456", "+447911123456"},
		{"empty", "", ""},
		{"no digits", "hello", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeCollision(t *testing.T) {
	// Different spellings of the same number must map to one key.
	spellings := []string{"(415) 555-0100", "415-555-0100", "4155550100", "+1 415 555 0100"}
	for _, s := range spellings {
		assert.Equal(t, "+14155550100", Normalize(s), "spelling %q", s)
	}
}
