package extraction

import (
	"fmt"

	"github.com/jackzampolin/estate/internal/estate"
)

const systemPrompt = "You are a legal-document extraction engine. " +
	"Return ONLY valid JSON matching the schema given. " +
	"Do not wrap it in markdown or prose."

const textPromptTemplate = `Extract the following fields from the estate document text below:
- clientName - clientAddress - documentDate - title - summary - n_pages

Respond ONLY with JSON exactly like this example:
%s

----- BEGIN TEXT -----
%s
----- END TEXT -----`

const filePromptTemplate = "Extract clientName, clientAddress, documentDate, title, summary, n_pages " +
	"from the attached PDF. Respond ONLY with JSON exactly like this example:\n%s"

// SystemPrompt returns the instruction shared by both strategies.
func SystemPrompt() string {
	return systemPrompt
}

// TextPrompt embeds the example record and document text in the user message.
func TextPrompt(documentText string) string {
	return fmt.Sprintf(textPromptTemplate, estate.ExampleJSON(), documentText)
}

// FilePrompt is the instruction sent alongside an uploaded PDF.
func FilePrompt() string {
	return fmt.Sprintf(filePromptTemplate, estate.ExampleJSON())
}
