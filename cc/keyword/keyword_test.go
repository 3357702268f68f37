package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	testCases := []struct {
		name        string
		expectedOK  bool
		expectedKey Keyword
	}{
		{"if", true, If},
		{"while", true, While},
		{"_Bool", true, Bool},
		{"restrict", true, Restrict},
		{"foo", false, 0},
		{"IF", false, 0},
	}
	for _, tc := range testCases {
		k, ok := Lookup(tc.name)
		assert.Equal(t, tc.expectedOK, ok)
		if tc.expectedOK {
			assert.Equal(t, tc.expectedKey, k)
		}
	}
}

func TestIsKeyword(t *testing.T) {
	assert.True(t, IsKeyword("return"))
	assert.False(t, IsKeyword("returned"))
}

func TestStringRoundTrip(t *testing.T) {
	for name := range table {
		k, ok := Lookup(name)
		assert.True(t, ok)
		assert.Equal(t, name, k.String())
	}
}
