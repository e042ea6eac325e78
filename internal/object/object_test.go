package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapSortedKeys(t *testing.T) {
	o := FromMap(map[string]any{"zebra": 1, "apple": 2, "mango": 3})

	assert.Equal(t, []string{"apple", "mango", "zebra"}, o.Keys())
	assert.Equal(t, 3, o.Len())
}

func TestGetSetData(t *testing.T) {
	o := FromMap(map[string]any{"a": 1})

	v, err := o.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.NoError(t, o.Set("a", "two"))
	v, err = o.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestGetMissingIsNil(t *testing.T) {
	o := New()
	v, err := o.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSetMissingAddsPlainProperty(t *testing.T) {
	o := New()
	require.NoError(t, o.Set("c", 10))

	d, ok := o.Descriptor("c")
	require.True(t, ok)
	assert.Equal(t, Data(10), d)
	assert.Equal(t, []string{"c"}, o.Keys())
}

func TestSetReadOnly(t *testing.T) {
	o := New()
	require.NoError(t, o.Define("ro", Descriptor{Value: 1, Enumerable: true, Configurable: true}))

	err := o.Set("ro", 2)
	assert.True(t, errors.Is(err, ErrNotWritable))

	v, _ := o.Get("ro")
	assert.Equal(t, 1, v)
}

func TestAccessorProperty(t *testing.T) {
	o := New()
	backing := 5
	getter := NewFunction("get", func(this *Object, args []any) (any, error) {
		assert.Same(t, o, this)
		return backing * 2, nil
	})
	setter := NewFunction("set", func(this *Object, args []any) (any, error) {
		backing = args[0].(int)
		return nil, nil
	})
	require.NoError(t, o.Define("x", Descriptor{Get: getter, Set: setter, Enumerable: true, Configurable: true}))

	v, err := o.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	require.NoError(t, o.Set("x", 7))
	assert.Equal(t, 7, backing)

	v, err = o.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 14, v)
}

func TestAccessorWithoutSetter(t *testing.T) {
	o := New()
	getter := NewFunction("get", func(*Object, []any) (any, error) { return 1, nil })
	require.NoError(t, o.Define("x", Descriptor{Get: getter, Configurable: true}))

	err := o.Set("x", 2)
	assert.ErrorIs(t, err, ErrNotWritable)
	assert.Empty(t, o.Keys(), "non-enumerable accessor must not be listed")
	assert.True(t, o.Has("x"))
}

func TestDefineKeepsPosition(t *testing.T) {
	o := FromMap(map[string]any{"a": 1, "b": 2, "c": 3})

	require.NoError(t, o.Define("a", Descriptor{Value: 9, Writable: true, Enumerable: true, Configurable: true}))
	assert.Equal(t, []string{"a", "b", "c"}, o.Keys())

	require.NoError(t, o.Delete("a"))
	require.NoError(t, o.Set("a", 1))
	assert.Equal(t, []string{"b", "c", "a"}, o.Keys())
}

func TestNonConfigurable(t *testing.T) {
	o := New()
	require.NoError(t, o.Define("fixed", Descriptor{Value: 1, Writable: true, Enumerable: true}))

	assert.ErrorIs(t, o.Define("fixed", Data(2)), ErrNotConfigurable)
	assert.ErrorIs(t, o.Delete("fixed"), ErrNotConfigurable)

	// Writable still lets plain assignment through.
	require.NoError(t, o.Set("fixed", 3))
	v, _ := o.Get("fixed")
	assert.Equal(t, 3, v)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	o := New()
	assert.NoError(t, o.Delete("ghost"))
}

func TestCall(t *testing.T) {
	o := New()
	add := NewFunction("add", func(this *Object, args []any) (any, error) {
		return args[0].(int) + args[1].(int), nil
	})
	require.NoError(t, o.Set("f", add))
	require.NoError(t, o.Set("n", 1))

	v, err := o.Call("f", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = o.Call("n")
	assert.ErrorIs(t, err, ErrNotCallable)

	_, err = o.Call("missing")
	assert.ErrorIs(t, err, ErrNotCallable)
}

func TestFunctionNilCall(t *testing.T) {
	var f *Function
	_, err := f.Call(nil)
	assert.ErrorIs(t, err, ErrNotCallable)
	assert.False(t, IsCallable(f))
	assert.False(t, IsCallable(42))
	assert.True(t, IsCallable(NewFunction("", func(*Object, []any) (any, error) { return nil, nil })))
}
