// Package estate defines the structured facts extracted from an
// estate-planning document and the validation applied to raw model output.
package estate

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSchemaValidation is matched by every failure to turn raw model output
// into an Info.
var ErrSchemaValidation = errors.New("model output does not match estate schema")

// Info holds the six facts extracted from one document.
// JSON names are the external contract shared with the model prompt.
type Info struct {
	ClientName    string `json:"clientName" yaml:"clientName"`
	ClientAddress string `json:"clientAddress" yaml:"clientAddress"`
	DocumentDate  string `json:"documentDate" yaml:"documentDate"`
	Title         string `json:"title" yaml:"title"`
	Summary       string `json:"summary" yaml:"summary"`
	PageCount     int    `json:"n_pages" yaml:"n_pages"`
}

// ValidationError describes why raw output was rejected.
type ValidationError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrSchemaValidation, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrSchemaValidation, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrSchemaValidation}
	}
	return []error{ErrSchemaValidation, e.Err}
}

// Parse validates raw model output against the estate schema and decodes it.
// Output wrapped in markdown fences or prose is rejected, not repaired.
func Parse(raw []byte) (Info, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Info{}, &ValidationError{Reason: "not valid JSON", Raw: string(raw), Err: err}
	}

	schema, err := compiledSchema()
	if err != nil {
		return Info{}, err
	}
	if err := schema.Validate(doc); err != nil {
		return Info{}, &ValidationError{Reason: "schema mismatch", Raw: string(raw), Err: err}
	}

	var info Info
	if err := json.Unmarshal(raw, &info); err != nil {
		return Info{}, &ValidationError{Reason: "decode failed", Raw: string(raw), Err: err}
	}
	return info, nil
}

// ParseString is Parse for string content as returned by chat completions.
func ParseString(raw string) (Info, error) {
	return Parse([]byte(raw))
}

// WithPageCount returns a copy of info carrying the given page count when it
// is positive. A zero local count keeps the model-reported value.
func (i Info) WithPageCount(local int) Info {
	if local > 0 {
		i.PageCount = local
	}
	return i
}
