package extractor

import (
	"strings"

	"github.com/jmylchreest/docuscout/pkg/llm"
)

const defaultInstruction = `Convert the following page content into clean Markdown sections describing
its documentation content. Preserve technical detail, especially code blocks,
parameter names, and types. Separate each section with a single blank line.
Respond with only the Markdown sections, nothing else.`

func buildRequest(cfg Config, cleanedHTML string) llm.CompletionRequest {
	var prompt strings.Builder
	prompt.WriteString(cfg.Instruction)
	prompt.WriteString("\n\n## Page content\n\n")
	prompt.WriteString(cleanedHTML)

	return llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are a precise technical documentation extraction assistant."},
			{Role: llm.RoleUser, Content: prompt.String()},
		},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}
}

// splitSections is the canonical splitter: a list of non-empty, trimmed
// chunks separated by one or more blank lines.
func splitSections(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	chunks := strings.Split(raw, "\n\n")

	var sections []string
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed != "" {
			sections = append(sections, trimmed)
		}
	}
	return sections
}
