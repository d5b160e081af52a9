package llm

import "strings"

// isReasoningModel reports whether any of the given provider/model identifiers
// indicate a reasoning-style model (OpenAI's "o1" family and similar) that
// rejects a system-role message and the temperature/max_tokens parameters.
// Matching is a case-insensitive substring test, per the adapter contract:
// the caller supplies both the provider name and the model id since either
// may carry the "o1" marker depending on how the provider was configured.
func isReasoningModel(identifiers ...string) bool {
	for _, id := range identifiers {
		if strings.Contains(strings.ToLower(id), "o1") {
			return true
		}
	}
	return false
}

// collapseForReasoningModel concatenates a system prompt and user content into
// a single user-role message, the shape reasoning models require.
func collapseForReasoningModel(systemPrompt, userContent string) string {
	if systemPrompt == "" {
		return userContent
	}
	return systemPrompt + "\n\n" + userContent
}
