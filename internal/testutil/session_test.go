package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionGenerator(t *testing.T) {
	gen := NewFixedSessionGenerator("scenario-1")
	for range 3 {
		assert.Equal(t, "scenario-1", gen.Generate())
	}
}

func TestFixedSessionGenerator_Default(t *testing.T) {
	assert.Equal(t, DefaultSession, NewFixedSessionGenerator("").Generate())
}
