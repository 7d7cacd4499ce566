package protocol

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// envelopeSchema describes a body accepted by the fire-and-forget send path.
const envelopeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["msg"],
	"properties": {
		"msg": {
			"type": "object",
			"required": ["cmd"],
			"properties": {
				"cmd": {"type": "string", "minLength": 1},
				"data": {"type": "object"}
			}
		}
	}
}`

var compiledEnvelope = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(envelopeSchema), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("envelope.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	return c.Compile("envelope.json")
})

// ValidateEnvelope checks that body is a {"msg":{"cmd":...}} envelope.
func ValidateEnvelope(body json.RawMessage) error {
	schema, err := compiledEnvelope()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return schema.Validate(doc)
}
