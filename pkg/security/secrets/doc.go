/*
Package secrets resolves the upstream credential.

# Providers

  - StaticProvider: values captured once, typically upstream.api_key
  - EnvProvider: environment variables read on every lookup
  - FileProvider: one secret per file, 0600 or 0400, optionally watched

Chain combines them; the first non-empty value wins. NewChainFromConfig
orders them file, env, static.

# Usage

	chain, err := secrets.NewChainFromConfig(cfg.Secrets, cfg.Upstream)
	if err != nil {
		return err
	}
	defer chain.Close()

	key, err := chain.GetSecret(ctx, "OPENAI_API_KEY")
	if secrets.IsNotFound(err) {
		// answer 500 without calling upstream
	}

The chain is built once and handed to the forwarding handler, so the
credential is never read from process-global state at request time except
through the configured EnvProvider.
*/
package secrets
