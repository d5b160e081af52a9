package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/jmylchreest/docuscout/pkg/fetcher"
	"github.com/jmylchreest/docuscout/pkg/llm"
)

type fakeProvider struct {
	responses map[string]string // keyed by URL embedded in the prompt
	err       error
}

func (p *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	if p.err != nil {
		return llm.CompletionResponse{}, p.err
	}
	userMsg := req.Messages[len(req.Messages)-1].Content
	for url, resp := range p.responses {
		if indexOf(userMsg, url) >= 0 {
			return llm.CompletionResponse{Content: resp}, nil
		}
	}
	return llm.CompletionResponse{Content: `{"decision":"include","explanation":"default"}`}, nil
}

func (p *fakeProvider) Name() string { return "fake" }

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestFilterAll_PreservesOrderAndMixedDecisions(t *testing.T) {
	pages := []fetcher.CrawledPage{
		{URL: "https://example.test/a"},
		{URL: "https://example.test/b"},
		{URL: "https://example.test/c"},
		{URL: "https://example.test/d"},
	}
	provider := &fakeProvider{responses: map[string]string{
		"https://example.test/a": `{"decision":"include","explanation":"matches topic"}`,
		"https://example.test/b": `{"decision":"exclude","explanation":"off topic"}`,
		"https://example.test/c": `{"decision":"include","explanation":"matches topic"}`,
		"https://example.test/d": `{"decision":"exclude","explanation":"off topic"}`,
	}}

	f := New(provider, Config{Concurrency: 2})
	decisions := f.FilterAll(context.Background(), pages, "Python SDK documentation")

	if len(decisions) != 4 {
		t.Fatalf("got %d decisions, want 4", len(decisions))
	}
	for i, p := range pages {
		if decisions[i].URL != p.URL {
			t.Errorf("decisions[%d].URL = %q, want %q (order not preserved)", i, decisions[i].URL, p.URL)
		}
	}
	wantIncluded := []bool{true, false, true, false}
	for i, want := range wantIncluded {
		if decisions[i].Included != want {
			t.Errorf("decisions[%d].Included = %v, want %v", i, decisions[i].Included, want)
		}
	}
}

func TestFilterAll_ParseFailureIsFailOpen(t *testing.T) {
	pages := []fetcher.CrawledPage{{URL: "https://example.test/x"}}
	provider := &fakeProvider{responses: map[string]string{
		"https://example.test/x": "maybe",
	}}

	f := New(provider, DefaultConfig())
	decisions := f.FilterAll(context.Background(), pages, "some topic")

	if len(decisions) != 1 {
		t.Fatalf("got %d decisions, want 1", len(decisions))
	}
	d := decisions[0]
	if !d.Included {
		t.Error("parse failure must fail open: Included should be true")
	}
	if indexOf(d.Explanation, "parse error") < 0 {
		t.Errorf("explanation %q should contain 'parse error'", d.Explanation)
	}
	if indexOf(d.Explanation, "maybe") < 0 {
		t.Errorf("explanation %q should contain the raw response", d.Explanation)
	}
}

func TestFilterAll_InvalidDecisionValueIsFailOpen(t *testing.T) {
	pages := []fetcher.CrawledPage{{URL: "https://example.test/x"}}
	provider := &fakeProvider{responses: map[string]string{
		"https://example.test/x": `{"decision":"maybe","explanation":"unsure"}`,
	}}

	f := New(provider, DefaultConfig())
	decisions := f.FilterAll(context.Background(), pages, "some topic")

	if !decisions[0].Included {
		t.Error("invalid decision value must fail open: Included should be true")
	}
}

func TestFilterAll_LLMErrorIsFailOpen(t *testing.T) {
	pages := []fetcher.CrawledPage{{URL: "https://example.test/x"}}
	provider := &fakeProvider{err: errors.New("connection refused")}

	f := New(provider, DefaultConfig())
	decisions := f.FilterAll(context.Background(), pages, "some topic")

	if !decisions[0].Included {
		t.Error("LLM call failure must fail open: Included should be true")
	}
}
