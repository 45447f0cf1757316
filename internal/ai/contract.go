package ai

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrContract is returned when the model output does not match the
// expected JSON shape
var ErrContract = errors.New("model response violates contract")

// contract is the compiled JSON schema of one call site
type contract struct {
	name   string
	schema *jsonschema.Schema
}

func loadContract(name string) (*contract, error) {
	data, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	return &contract{name: name, schema: schema}, nil
}

// decode parses raw model output, validates it and unmarshals into out
func (c *contract) decode(raw string, out interface{}) error {
	raw = stripCodeFence(raw)

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("%w: %s: invalid JSON: %v", ErrContract, c.name, err)
	}

	result := c.schema.Validate(doc)
	if !result.IsValid() {
		var messages []string
		for field, evalErr := range result.Errors {
			messages = append(messages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		sort.Strings(messages)
		return fmt.Errorf("%w: %s: %s", ErrContract, c.name, strings.Join(messages, "; "))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrContract, c.name, err)
	}
	return nil
}

// stripCodeFence removes a ```json fence some models wrap around output
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
