// Package openai implements providers.ChatCompleter for the OpenAI chat
// completions API.
//
//	client := openai.NewClient(providers.ProviderConfig{
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 30 * time.Second,
//	}, openai.WithObserver(collector))
//
//	completion, err := client.CreateChatCompletion(ctx, apiKey, req)
//
// Each call is a single POST to BaseURL + "/chat/completions" bounded by
// Timeout. There are no retries. Responses are decoded into an ordered
// object so the payload can be returned to the caller byte for byte;
// non-JSON bodies, error statuses and payloads without choices become
// typed errors from package providers.
package openai
