package testutil

import "github.com/roach88/ghostrap/internal/trace"

// DefaultSession is used when a scenario names no session.
const DefaultSession = "test-session-default"

var _ trace.SessionGenerator = FixedSessionGenerator{}

// FixedSessionGenerator hands out the same session ID on every call, so
// every event of a scenario run shares one session and golden traces stay
// byte-identical. Stateless.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator returns a generator for id. An empty id falls
// back to DefaultSession.
//
// The id usually comes from the scenario file:
//
//	session: "scenario-getter-chain"
func NewFixedSessionGenerator(id string) FixedSessionGenerator {
	if id == "" {
		id = DefaultSession
	}
	return FixedSessionGenerator{id: id}
}

// Generate returns the fixed session ID.
func (g FixedSessionGenerator) Generate() string {
	return g.id
}
