package network

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request is one message from a client
type Request struct {
	Query string `json:"query"`
	// Format is "rows" (default) or "markdown"
	Format string `json:"format,omitempty"`
}

const requestSchema = `{
	"type": "object",
	"properties": {
		"query": {"type": "string", "minLength": 1},
		"format": {"enum": ["rows", "markdown"]}
	},
	"required": ["query"],
	"additionalProperties": false
}`

func compileRequestSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("request.json", bytes.NewReader([]byte(requestSchema))); err != nil {
		return nil, err
	}
	return compiler.Compile("request.json")
}

// decodeRequest validates raw against the request schema and decodes it
func decodeRequest(s *jsonschema.Schema, raw json.RawMessage) (Request, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Request{}, fmt.Errorf("invalid request format: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return Request{}, fmt.Errorf("invalid request: %s", strings.Join(issues(verr), "; "))
		}
		return Request{}, fmt.Errorf("invalid request: %w", err)
	}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("invalid request format: %w", err)
	}
	return req, nil
}

// issues flattens the leaves of a validation error into "location: message" strings
func issues(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			loc := strings.TrimSpace(node.InstanceLocation)
			if loc == "" {
				loc = "/"
			}
			out = append(out, loc+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}
