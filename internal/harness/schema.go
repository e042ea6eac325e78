package harness

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// schemaMu serializes use of the CUE context, which is not safe for
// concurrent use.
var schemaMu sync.Mutex

var scenarioSchema = sync.OnceValues(func() (cue.Value, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile scenario schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("lookup #Scenario: %w", err)
	}
	return def, nil
})

// SchemaError reports a scenario document that does not match the schema.
type SchemaError struct {
	Messages []string
}

func (e *SchemaError) Error() string {
	if len(e.Messages) == 1 {
		return "schema: " + e.Messages[0]
	}
	return fmt.Sprintf("schema: %s (and %d more)", e.Messages[0], len(e.Messages)-1)
}

// ValidateDocument checks raw scenario YAML against the embedded CUE schema.
func ValidateDocument(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if doc == nil {
		return &SchemaError{Messages: []string{"empty document"}}
	}

	schema, err := scenarioSchema()
	if err != nil {
		return err
	}

	schemaMu.Lock()
	defer schemaMu.Unlock()

	v := schema.Context().Encode(doc)
	if err := v.Err(); err != nil {
		return &SchemaError{Messages: messages(err)}
	}
	if err := schema.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Messages: messages(err)}
	}
	return nil
}

func messages(err error) []string {
	var out []string
	for _, e := range errors.Errors(err) {
		out = append(out, e.Error())
	}
	if len(out) == 0 {
		out = append(out, err.Error())
	}
	return out
}
