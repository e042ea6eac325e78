package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ghostrap/internal/errs"
)

func TestParseEvent(t *testing.T) {
	tests := []struct {
		spec  string
		phase Phase
		key   string
	}{
		{"get:a", Get, "a"},
		{"GET:a", Get, "a"},
		{"BeforeApply:run", BeforeApply, "run"},
		{"change:Name", Change, "Name"},
		{"set:a:b", Set, "a:b"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			ev, err := ParseEvent(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.phase, ev.Phase)
			assert.Equal(t, tt.key, ev.Key)
		})
	}
}

func TestParseEventInvalid(t *testing.T) {
	for _, spec := range []string{"get", "dummy:a", "get:", "", ":a"} {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseEvent(spec)
			require.Error(t, err)
			assert.True(t, errs.IsInvalidEvent(err))
		})
	}
}

func TestEventString(t *testing.T) {
	ev, err := ParseEvent("BeforeSet:x")
	require.NoError(t, err)
	assert.Equal(t, "beforeset:x", ev.String())
}

func TestPhaseTransforms(t *testing.T) {
	transforming := map[Phase]bool{Get: true, Set: true, Apply: true}
	for _, p := range Phases {
		assert.Equal(t, transforming[p], p.Transforms(), string(p))
	}
}
