package types

import "encoding/json"

// ForwardRequest is the client payload after decoding.
//
// Optional fields are pointers or raw values so that a field the client did
// not send can be told apart from one sent as zero. A numeric field sent
// with a non-numeric JSON type is recorded as absent.
type ForwardRequest struct {
	// Prompt is the raw prompt value. It becomes the content of the single
	// user message when Messages is absent.
	Prompt json.RawMessage

	// Messages is the raw conversation array, forwarded as is.
	Messages json.RawMessage

	// Model is the requested model identifier.
	Model *string

	// Temperature is the sampling temperature.
	Temperature *float64

	// MaxTokens is the completion token limit.
	MaxTokens *int

	// TopP is the nucleus sampling value.
	TopP *float64

	// FrequencyPenalty penalizes repeated tokens by frequency.
	FrequencyPenalty *float64

	// PresencePenalty penalizes tokens that already appeared.
	PresencePenalty *float64

	// Keys lists the top-level body keys in the order received.
	Keys []string
}

// HasPrompt reports whether a usable prompt was supplied.
func (r *ForwardRequest) HasPrompt() bool {
	return !IsFalsy(r.Prompt)
}

// HasMessages reports whether a messages value was supplied.
func (r *ForwardRequest) HasMessages() bool {
	return !IsFalsy(r.Messages)
}

// Message is a chat message in the upstream request.
type Message struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}
