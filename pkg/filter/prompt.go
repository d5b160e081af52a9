package filter

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/docuscout/pkg/fetcher"
	"github.com/jmylchreest/docuscout/pkg/llm"
)

const systemPrompt = `You are a relevance judge for a documentation crawler.
Given a target topic and the cleaned content of one crawled page, decide
whether the page is relevant to that topic.

Respond with a single JSON object and nothing else:
{"decision": "include" or "exclude", "explanation": "<one short sentence>"}`

// maxFilterContentChars bounds the content sample sent to the judge model to
// a deterministic prefix length, per the prompt contract.
const maxFilterContentChars = 1500

func buildRequest(targetTopic string, page fetcher.CrawledPage, temperature float64) llm.CompletionRequest {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Target topic: %s\n\n", targetTopic)
	fmt.Fprintf(&prompt, "Page URL: %s\n", page.URL)
	if page.Title != "" {
		fmt.Fprintf(&prompt, "Page title: %s\n", page.Title)
	}
	prompt.WriteString("\nContent sample:\n")
	prompt.WriteString(truncate(page.CleanedHTML, maxFilterContentChars))

	return llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt.String()},
		},
		MaxTokens:   200,
		Temperature: temperature,
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
