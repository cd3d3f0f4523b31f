// Package providers holds the builtin table of AI provider API endpoints.
//
// Each provider maps a short identifier to the hostname substrings its API
// endpoints are recognized by. The table is constant; custom providers are
// configured by key convention and simply never match if they are not
// listed here.
package providers

// Provider is one upstream AI API vendor.
type Provider struct {
	// ID is the short configuration key, e.g. "anthropic".
	ID string
	// Patterns are lowercase hostname substrings matched against the full
	// request URL. Order within a provider is significant.
	Patterns []string
}

// builtin is declared in match precedence order: the routing table is
// compiled by walking this slice top to bottom, and resolution scans rules
// in that same order. Broad patterns near the top (google's bare
// googleapis.com) therefore shadow narrower ones below when both providers
// are configured.
var builtin = []Provider{
	{ID: "google", Patterns: []string{"generativelanguage.googleapis.com", "ai.google.dev", "googleapis.com"}},
	{ID: "google-vertex", Patterns: []string{"aiplatform.googleapis.com"}},
	{ID: "google-vertex-anthropic", Patterns: []string{"aiplatform.googleapis.com"}},
	{ID: "anthropic", Patterns: []string{"api.anthropic.com"}},
	{ID: "openai", Patterns: []string{"api.openai.com"}},
	{ID: "azure", Patterns: []string{"openai.azure.com"}},
	{ID: "amazon-bedrock", Patterns: []string{"bedrock-runtime"}},
	{ID: "moonshot", Patterns: []string{"api.moonshot.cn"}},
	{ID: "kimi", Patterns: []string{"api.moonshot.cn"}},
	{ID: "deepseek", Patterns: []string{"api.deepseek.com"}},
	{ID: "groq", Patterns: []string{"api.groq.com"}},
	{ID: "mistral", Patterns: []string{"api.mistral.ai"}},
	{ID: "cohere", Patterns: []string{"api.cohere.com", "api.cohere.ai"}},
	{ID: "together", Patterns: []string{"api.together.xyz"}},
	{ID: "perplexity", Patterns: []string{"api.perplexity.ai"}},
	{ID: "openrouter", Patterns: []string{"openrouter.ai"}},
	{ID: "github-copilot", Patterns: []string{"githubcopilot.com"}},
	{ID: "xai", Patterns: []string{"api.x.ai"}},
	{ID: "cerebras", Patterns: []string{"api.cerebras.ai"}},
	{ID: "fireworks", Patterns: []string{"api.fireworks.ai"}},
}

// Builtin returns the provider table in declaration order. The returned
// slice is shared; callers must not modify it.
func Builtin() []Provider {
	return builtin
}

// Patterns returns the hostname patterns for the given provider id, or nil
// when the id is not a builtin provider.
func Patterns(id string) []string {
	for _, p := range builtin {
		if p.ID == id {
			return p.Patterns
		}
	}
	return nil
}

// IsKnown reports whether id names a builtin provider.
func IsKnown(id string) bool {
	return Patterns(id) != nil
}
