// Relay is an HTTP forwarding service for chat completions.
//
// It accepts a prompt or a message list from browser or server clients,
// fills in generation defaults, calls the OpenAI chat completions API with
// a server-side credential and returns the upstream payload with a meta
// block. Every response is JSON and carries permissive CORS headers.
//
// Usage:
//
//	# Start the relay with ./config.yaml (missing file means defaults)
//	OPENAI_API_KEY=sk-... relay run
//
//	# Start with a custom configuration file
//	relay run --config /etc/relay/config.yaml
//
//	# Print the effective configuration with secrets masked
//	relay config --output yaml
//
//	# Show version information
//	relay version
package main

func main() {
	Execute()
}
