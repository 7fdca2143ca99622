package estate

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaResource is an absolute URI so validation errors never name a host path.
const schemaResource = "mem://estate/estate_info.json"

// schemaJSON is the canonical output shape. Every field is required and no
// others are allowed.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["clientName", "clientAddress", "documentDate", "title", "summary", "n_pages"],
  "properties": {
    "clientName":    {"type": "string", "minLength": 1, "pattern": "\\S"},
    "clientAddress": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "documentDate":  {"type": "string"},
    "title":         {"type": "string"},
    "summary":       {"type": "string"},
    "n_pages":       {"type": "integer"}
  }
}`

// example is embedded verbatim in every prompt.
var example = Info{
	ClientName:    "Claudia Sheinbaum",
	ClientAddress: "Los Pinos, Mexico City",
	DocumentDate:  "2023-10-01",
	Title:         "Last Will and Testament",
	Summary:       "This is a summary of the document.",
	PageCount:     5,
}

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaResource, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load estate schema: %w", err)
			return
		}
		schemaCompiled, schemaErr = compiler.Compile(schemaResource)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile estate schema: %w", schemaErr)
		}
	})
	return schemaCompiled, schemaErr
}

// Schema returns the JSON Schema document for Info.
func Schema() json.RawMessage {
	return json.RawMessage(schemaJSON)
}

// Example returns the sample record shown to the model.
func Example() Info {
	return example
}

// ExampleJSON renders the sample record as compact JSON for prompts.
func ExampleJSON() string {
	data, err := json.Marshal(example)
	if err != nil {
		// Info contains only strings and an int.
		panic(err)
	}
	return string(data)
}
