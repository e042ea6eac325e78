package handler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ghostrap/internal/object"
)

func appendListener(suffix string) *Listener {
	return NewListener(func(_ *object.Object, _ string, value any, _ []any) (any, error) {
		return value.(string) + suffix, nil
	})
}

func TestFireFoldsInOrder(t *testing.T) {
	tbl := NewStore().Table("a")
	tbl.Add(Set, appendListener("!"))
	tbl.Add(Set, appendListener("?"))

	v, err := tbl.Fire(Set, nil, "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello!?", v)
}

func TestFireNoListenersPassesThrough(t *testing.T) {
	tbl := NewStore().Table("a")
	v, err := tbl.Fire(Get, nil, 41, nil)
	require.NoError(t, err)
	assert.Equal(t, 41, v)
}

func TestFireObservingPhasesIgnoreResults(t *testing.T) {
	tbl := NewStore().Table("a")
	var seen []any
	tbl.Add(Change, NewListener(func(_ *object.Object, _ string, value any, _ []any) (any, error) {
		seen = append(seen, value)
		return "ignored", nil
	}))

	v, err := tbl.Fire(Change, nil, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, []any{2}, seen)
}

func TestFirePassesTargetKeyArgs(t *testing.T) {
	obj := object.New()
	tbl := NewStore().Table("f")
	tbl.Add(Apply, NewListener(func(target *object.Object, key string, value any, args []any) (any, error) {
		assert.Same(t, obj, target)
		assert.Equal(t, "f", key)
		assert.Equal(t, []any{1, 2}, args)
		return value.(int) * 100, nil
	}))

	v, err := tbl.Fire(Apply, obj, 3, []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 300, v)
}

func TestFireStopsOnError(t *testing.T) {
	tbl := NewStore().Table("a")
	boom := errors.New("boom")
	calledAfter := false
	tbl.Add(Get, NewListener(func(*object.Object, string, any, []any) (any, error) { return nil, boom }))
	tbl.Add(Get, Observe(func(*object.Object, string, any, []any) { calledAfter = true }))

	_, err := tbl.Fire(Get, nil, 1, nil)
	assert.ErrorIs(t, err, boom)
	assert.False(t, calledAfter)
}

func TestAddOnceFiresExactlyOnce(t *testing.T) {
	tbl := NewStore().Table("a")
	count := 0
	tbl.AddOnce(Get, NewListener(func(_ *object.Object, _ string, value any, _ []any) (any, error) {
		count++
		return value.(int) * 1000, nil
	}))

	v, err := tbl.Fire(Get, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1000, v)

	for range 3 {
		v, err = tbl.Fire(Get, nil, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, v)
	}
	assert.Equal(t, 1, count)
	assert.True(t, tbl.Empty())
}

func TestAddOnceSurvivesReentry(t *testing.T) {
	tbl := NewStore().Table("f")
	count := 0
	var l *Listener
	l = NewListener(func(target *object.Object, key string, value any, args []any) (any, error) {
		count++
		if count < 5 {
			return tbl.Fire(Apply, target, value, args)
		}
		return value, nil
	})
	tbl.AddOnce(Apply, l)

	_, err := tbl.Fire(Apply, nil, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddOnceRemovedEvenOnError(t *testing.T) {
	tbl := NewStore().Table("a")
	tbl.AddOnce(Set, NewListener(func(*object.Object, string, any, []any) (any, error) {
		return nil, errors.New("fail")
	}))

	_, err := tbl.Fire(Set, nil, 1, nil)
	require.Error(t, err)

	v, err := tbl.Fire(Set, nil, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestRemoveListenerPreservesOrder(t *testing.T) {
	tbl := NewStore().Table("a")
	a, b, c := appendListener("a"), appendListener("b"), appendListener("c")
	tbl.Add(Set, a)
	tbl.Add(Set, b)
	tbl.Add(Set, c)
	tbl.Add(Set, b)

	tbl.Remove(Set, b)
	assert.Equal(t, []*Listener{a, c}, tbl.Listeners(Set))

	v, err := tbl.Fire(Set, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ac", v)
}

func TestRemoveUnknownListenerIsNoop(t *testing.T) {
	tbl := NewStore().Table("a")
	a := appendListener("a")
	tbl.Add(Set, a)

	tbl.Remove(Set, appendListener("dummy"))
	tbl.Remove(Get, a)
	assert.Equal(t, []*Listener{a}, tbl.Listeners(Set))
}

func TestRemoveWholePhase(t *testing.T) {
	tbl := NewStore().Table("a")
	tbl.Add(Set, appendListener("!"))
	tbl.Add(Set, appendListener("?"))
	tbl.Add(Get, appendListener("g"))

	tbl.Remove(Set)
	assert.Empty(t, tbl.Listeners(Set))
	assert.Len(t, tbl.Listeners(Get), 1)
	assert.False(t, tbl.Empty())

	tbl.Remove(Get)
	assert.True(t, tbl.Empty())
}

func TestRemoveDuringFireSkipsRemoved(t *testing.T) {
	tbl := NewStore().Table("a")
	second := appendListener("2")
	first := NewListener(func(_ *object.Object, _ string, value any, _ []any) (any, error) {
		tbl.Remove(Set, second)
		return value.(string) + "1", nil
	})
	tbl.Add(Set, first)
	tbl.Add(Set, second)

	v, err := tbl.Fire(Set, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestStoreRemoveListenersEverywhere(t *testing.T) {
	s := NewStore()
	shared := appendListener("x")
	keep := appendListener("k")
	s.Table("a").Add(Set, shared)
	s.Table("a").Add(Get, shared)
	s.Table("a").Add(Get, keep)
	s.Table("b").Add(Set, shared)

	s.RemoveListeners(shared)

	ta, _ := s.Lookup("a")
	tb, _ := s.Lookup("b")
	assert.Empty(t, ta.Listeners(Set))
	assert.Equal(t, []*Listener{keep}, ta.Listeners(Get))
	assert.True(t, tb.Empty())

	// No listeners: nothing happens.
	s.RemoveListeners()
	assert.Equal(t, []*Listener{keep}, ta.Listeners(Get))
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.Table("b").Add(Get, appendListener("x"))
	s.Table("a").Add(Get, appendListener("y"))
	assert.Equal(t, []string{"a", "b"}, s.Keys())

	s.Clear()
	assert.Empty(t, s.Keys())
	_, ok := s.Lookup("a")
	assert.False(t, ok)
}

func TestListenerIDsAreUnique(t *testing.T) {
	a, b := appendListener(""), appendListener("")
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}
