package provider

import "strings"

// Provider selects the answer synthesis strategy.
type Provider string

// Answer provider constants.
const (
	// Simple is the deterministic exact-text search-and-highlight synthesizer.
	Simple Provider = "simple"
	// OpenAI calls the OpenAI chat completion API.
	OpenAI Provider = "openai"
	// Local calls a local inference server (Ollama).
	Local Provider = "local"
	// GPT4All calls a GPT4All OpenAI-compatible server.
	GPT4All Provider = "gpt4all"
)

// IsValid checks if the provider is one of the supported values.
func (p Provider) IsValid() bool {
	return p == Simple || p == OpenAI || p == Local || p == GPT4All
}

// Normalize lowercases the provider tag the way requests are accepted.
func Normalize(s string) Provider {
	return Provider(strings.ToLower(s))
}
