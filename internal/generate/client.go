// Package generate produces candidate programs by prompting an LLM
// provider. Generation is rate limited independently from program
// execution; a slow provider never starves the execution arena and a
// busy arena never blocks prompting.
package generate

import "context"

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// LLMClient is the minimal completion surface the generator needs.
// Implementations return the raw model text; code extraction happens
// in the generator, not the client.
type LLMClient interface {
	// Complete sends a user prompt and returns the model response.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a system prompt plus a user prompt.
	CompleteWithSystem(ctx context.Context, system, prompt string) (string, error)
}
