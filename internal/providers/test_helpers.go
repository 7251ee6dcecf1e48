package providers

import (
	"encoding/json"
	"testing"
)

// ChatCompletionsPath is the path the OpenAI client posts to.
const ChatCompletionsPath = "/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// chatCompletion lays keys out in OpenAI's order, which is not sorted.
type chatCompletion struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// ChatCompletionKeys is the top-level key order of ChatCompletionBody.
var ChatCompletionKeys = []string{"id", "object", "created", "model", "choices", "usage"}

// ChatCompletionBody returns a minimal successful chat completion payload
// with its keys in ChatCompletionKeys order.
func ChatCompletionBody(content string) string {
	body, _ := json.Marshal(chatCompletion{
		ID:      "chatcmpl-test",
		Object:  "chat.completion",
		Created: 1731753000,
		Model:   "gpt-4o-mini",
		Choices: []chatChoice{{
			Index:        0,
			Message:      chatMessage{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
		Usage: chatUsage{PromptTokens: 5, CompletionTokens: 2, TotalTokens: 7},
	})
	return string(body)
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ErrorBody returns an OpenAI error payload. The error object keeps
// OpenAI's message, type, code order.
func ErrorBody(message, errType, code string) string {
	body, _ := json.Marshal(struct {
		Error apiError `json:"error"`
	}{Error: apiError{Message: message, Type: errType, Code: code}})
	return string(body)
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
