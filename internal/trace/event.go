package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/roach88/ghostrap/internal/handler"
)

// DomainEvent separates trace event hashes from any other content hash.
// The version suffix leaves room for a future encoding change.
const DomainEvent = "ghostrap/event/v1"

// Event is one recorded listener invocation.
type Event struct {
	// ID is the content hash of the other fields.
	ID string `json:"id"`

	SessionID string        `json:"session"`
	Seq       int64         `json:"seq"`
	Phase     handler.Phase `json:"phase"`
	Key       string        `json:"key"`

	// Value and Args are canonical JSON. Args is "null" outside the apply
	// phases.
	Value json.RawMessage `json:"value"`
	Args  json.RawMessage `json:"args"`
}

// hashWithDomain returns hex(SHA256(domain + 0x00 + data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed ID of e. e.ID is ignored.
func EventID(e Event) (string, error) {
	data, err := MarshalCanonical(map[string]any{
		"session": e.SessionID,
		"seq":     e.Seq,
		"phase":   string(e.Phase),
		"key":     e.Key,
		"value":   rawOrNull(e.Value),
		"args":    rawOrNull(e.Args),
	})
	if err != nil {
		return "", fmt.Errorf("event id: %w", err)
	}
	return hashWithDomain(DomainEvent, data), nil
}

func rawOrNull(r json.RawMessage) json.RawMessage {
	if len(r) == 0 {
		return json.RawMessage("null")
	}
	return r
}
