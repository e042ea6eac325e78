package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrictEqual(t *testing.T) {
	fn := NewFunction("f", func(*Object, []any) (any, error) { return nil, nil })
	other := NewFunction("f", func(*Object, []any) (any, error) { return nil, nil })
	obj := New()
	slice := []any{1, 2}
	m := map[string]any{"k": 1}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same int", 1, 1, true},
		{"different int", 1, 2, false},
		{"int vs string", 2, "2", false},
		{"int vs int64", 2, int64(2), false},
		{"strings", "abc", "abc", true},
		{"nil nil", nil, nil, true},
		{"nil vs zero", nil, 0, false},
		{"same function", fn, fn, true},
		{"distinct functions", fn, other, false},
		{"same object", obj, obj, true},
		{"distinct objects", obj, New(), false},
		{"same slice", slice, slice, true},
		{"equal but distinct slices", slice, []any{1, 2}, false},
		{"same map", m, m, true},
		{"equal but distinct maps", m, map[string]any{"k": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StrictEqual(tt.a, tt.b))
		})
	}
}

func TestStrictEqualStructWithUncomparableField(t *testing.T) {
	type box struct{ v any }
	a := box{v: []int{1}}
	b := box{v: []int{1}}
	assert.False(t, StrictEqual(a, b))
}
