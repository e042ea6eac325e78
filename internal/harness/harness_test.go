package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestRunPasses(t *testing.T) {
	s := mustParse(t, `
name: passes
object: {a: 1}
listeners:
  - id: double
    event: get:a
    transform: {op: mul, arg: 2}
steps:
  - {op: get, key: a, expect: 2}
  - {op: set, key: a, value: 4}
  - {op: get, key: a, expect: 8}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Trace, "nothing is watched")
}

func TestRunReportsExpectMismatch(t *testing.T) {
	s := mustParse(t, `
name: mismatch
object: {a: 1}
steps:
  - {op: get, key: a, expect: 2}
  - {op: get, key: a, expect: 1}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "steps[0] (get): expected 2, got 1", result.Errors[0])
}

func TestRunReportsErrorClauses(t *testing.T) {
	s := mustParse(t, `
name: error_clauses
object: {a: 1}
listeners:
  - id: l
steps:
  - {op: on, event: get:a, listener: l, error: NO_SUCH_PROPERTY}
  - {op: on, event: get:zz, listener: l, error: INVALID_EVENT}
  - {op: on, event: get:zz, listener: l}
`)
	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "expected error NO_SUCH_PROPERTY, got success")
	assert.Contains(t, result.Errors[1], "expected error INVALID_EVENT")
	assert.Contains(t, result.Errors[2], "expected success")
}

func TestRunCallsNatives(t *testing.T) {
	s := mustParse(t, `
name: natives
object:
  add: {function: add}
  mul: {function: mul}
  cat: {function: concat}
  id: {function: identity}
steps:
  - {op: call, key: add, args: [1, 2, 3], expect: 6}
  - {op: call, key: mul, args: [2, 5], expect: 10}
  - {op: call, key: cat, args: [a, 1, b], expect: a1b}
  - {op: call, key: id, args: [x], expect: x}
  - {op: call, key: id}
  - {op: keys, expect: [add, cat, id, mul]}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRunNestedObject(t *testing.T) {
	s := mustParse(t, `
name: nested
object:
  inner: {x: 1, f: {function: add}}
steps:
  - {op: get, key: inner, expect: {x: 1, f: {function: add}}}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRunOffByEvent(t *testing.T) {
	s := mustParse(t, `
name: off_by_event
object: {a: 1}
listeners:
  - id: plus1
    event: get:a
    transform: {op: add, arg: 1}
  - id: plus10
    event: get:a
    transform: {op: add, arg: 10}
steps:
  - {op: get, key: a, expect: 12}
  - {op: off, event: get:a, listeners: [plus1]}
  - {op: get, key: a, expect: 11}
  - {op: off, event: get:a}
  - {op: get, key: a, expect: 1}
  - {op: on, event: get:a, listener: plus1}
  - {op: get, key: a, expect: 2}
  - {op: count, listener: plus1, expect: 2}
  - {op: count, listener: plus10, expect: 2}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRunOffAfterClear(t *testing.T) {
	s := mustParse(t, `
name: off_after_clear
object: {a: 1}
steps:
  - {op: clear}
  - {op: clear}
  - {op: off, error: INVALID_TARGET}
  - {op: attach}
  - {op: off}
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRunFunctionTransform(t *testing.T) {
	s := mustParse(t, `
name: function_transform
object: {a: 1}
watch: [a]
listeners:
  - id: swap
    event: set:a
    transform: {op: function, arg: add}
steps:
  - {op: set, key: a, value: 0}
  - {op: call, key: a, args: [4, 5], expect: 9}
assertions:
  - type: trace_contains
    event: change:a
    value: {function: add}
  - type: trace_count
    event: apply:a
    count: 1
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRunSetupErrors(t *testing.T) {
	tests := map[string]string{
		"unknown native": `
name: bad_native
object: {f: {function: nope}}
steps: [{op: keys}]
`,
		"watch missing key": `
name: bad_watch
object: {a: 1}
watch: [zz]
steps: [{op: keys}]
`,
		"bad transform arg": `
name: bad_transform
object: {a: 1}
listeners:
  - id: l
    transform: {op: add, arg: x}
steps: [{op: keys}]
`,
		"listener on missing key": `
name: bad_listener
object: {a: 1}
listeners:
  - id: l
    event: get:zz
steps: [{op: keys}]
`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Run(mustParse(t, doc))
			assert.Error(t, err)
		})
	}
}

func TestRunFailedAssertion(t *testing.T) {
	s := mustParse(t, `
name: failed_assertion
object: {a: 1}
watch: [a]
steps:
  - {op: get, key: a}
assertions:
  - type: trace_count
    event: get:a
    count: 3
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: trace_count")
	assert.Contains(t, result.Errors[0], "3 occurrences of get:a")
}

func TestRunSessions(t *testing.T) {
	doc := `
name: sessions
object: {a: 1}
watch: [a]
steps:
  - {op: get, key: a, expect: 1}
`
	result, err := Run(mustParse(t, doc))
	require.NoError(t, err)
	assert.Equal(t, "test-session-default", result.Session)

	result, err = Run(mustParse(t, doc+"session: fixed\n"))
	require.NoError(t, err)
	assert.Equal(t, "fixed", result.Session)

	override, err := Run(mustParse(t, doc+"session: fixed\n"), WithSession("other"))
	require.NoError(t, err)
	assert.Equal(t, "other", override.Session)
	require.Len(t, override.Trace, 2)
	for _, e := range override.Trace {
		assert.Equal(t, "other", e.SessionID)
	}
	assert.NotEqual(t, result.Trace[0].ID, override.Trace[0].ID, "the session is part of the event hash")
}
