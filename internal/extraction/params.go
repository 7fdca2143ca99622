// Package extraction builds and runs the two ways of asking an LLM for
// estate facts: sending the document text, or uploading the PDF itself.
package extraction

// Default request settings used when configuration leaves a value unset.
const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.0
	DefaultMaxTokens   = 512
	DefaultMaxChars    = 12000
	DefaultPlaceholder = " … [truncated] …"
)

// Params are the request settings shared by both strategies.
// Values are copied into each strategy and never modified.
type Params struct {
	Model       string
	Temperature float64
	MaxTokens   int
	MaxChars    int
	Placeholder string
}

// DefaultParams returns the standard request settings.
func DefaultParams() Params {
	return Params{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		MaxChars:    DefaultMaxChars,
		Placeholder: DefaultPlaceholder,
	}
}

// withDefaults fills unset fields. Temperature zero is a valid setting and
// is kept as is.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Model == "" {
		p.Model = d.Model
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = d.MaxTokens
	}
	if p.MaxChars <= 0 {
		p.MaxChars = d.MaxChars
	}
	if p.Placeholder == "" {
		p.Placeholder = d.Placeholder
	}
	return p
}
