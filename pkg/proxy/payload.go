package proxy

import (
	"encoding/json"
	"fmt"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/providers"
	"mercator-hq/relay/pkg/proxy/types"
)

// BuildUpstreamRequest derives the upstream payload from a parsed request,
// filling absent fields from defaults. The effective model is the
// returned Model.
//
// max_tokens of zero counts as absent since the upstream rejects it. Explicit
// zeros for the other numeric fields are kept.
func BuildUpstreamRequest(req *types.ForwardRequest, defaults config.RequestDefaults) (*providers.ChatRequest, error) {
	out := &providers.ChatRequest{
		Model:            defaults.Model,
		Temperature:      defaults.Temperature,
		MaxTokens:        defaults.MaxTokens,
		TopP:             defaults.TopP,
		FrequencyPenalty: defaults.FrequencyPenalty,
		PresencePenalty:  defaults.PresencePenalty,
	}

	if req.Model != nil && *req.Model != "" {
		out.Model = *req.Model
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	if req.MaxTokens != nil && *req.MaxTokens != 0 {
		out.MaxTokens = *req.MaxTokens
	}
	if req.TopP != nil {
		out.TopP = *req.TopP
	}
	if req.FrequencyPenalty != nil {
		out.FrequencyPenalty = *req.FrequencyPenalty
	}
	if req.PresencePenalty != nil {
		out.PresencePenalty = *req.PresencePenalty
	}

	if req.HasMessages() {
		out.Messages = req.Messages
		return out, nil
	}

	messages, err := json.Marshal([]types.Message{{Role: "user", Content: req.Prompt}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompt message: %w", err)
	}
	out.Messages = messages
	return out, nil
}

// MessageCount returns the number of messages in an upstream payload, or
// zero when messages is not an array.
func MessageCount(req *providers.ChatRequest) int {
	var messages []json.RawMessage
	if err := json.Unmarshal(req.Messages, &messages); err != nil {
		return 0
	}
	return len(messages)
}
