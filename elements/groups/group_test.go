package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	g := New("  b ")
	assert.Equal(t, "B", g.Name)
	assert.Equal(t, 0, g.Number)
}

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name  string
		valid bool
	}{
		{"A", true},
		{"Z", true},
		{"", false},
		{"AB", false},
		{"1", false},
		{"a", false},
		{"Ñ", false},
	}
	for _, tc := range testCases {
		err := ValidateName(tc.name)
		if tc.valid {
			assert.NoError(t, err, tc.name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidName, tc.name)
		}
	}
}
