package domain

import "context"

// Prompt is a single-turn generation request.
type Prompt struct {
	System string
	User   string
}

// GenerationResult carries generated text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Generator turns a prompt into text. One call, no retries.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (GenerationResult, error)
}
