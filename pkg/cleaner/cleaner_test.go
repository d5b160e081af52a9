package cleaner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// readTestdata reads a file from the testdata directory
func readTestdata(t *testing.T, filename string) string {
	t.Helper()
	path := filepath.Join("testdata", filename)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read testdata %s: %v", filename, err)
	}
	return string(data)
}

// --- NoopCleaner Tests ---

func TestNoopCleaner_Clean(t *testing.T) {
	c := NewNoop()

	tests := []struct {
		name  string
		input string
	}{
		{"empty_string", ""},
		{"plain_text", "Hello, World!"},
		{"html_content", "<html><body><h1>Title</h1></body></html>"},
		{"whitespace", "  \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Clean(tt.input)
			if err != nil {
				t.Errorf("Clean() error = %v, want nil", err)
			}
			if got != tt.input {
				t.Errorf("Clean() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestNoopCleaner_Name(t *testing.T) {
	c := NewNoop()
	if got := c.Name(); got != "noop" {
		t.Errorf("Name() = %q, want %q", got, "noop")
	}
}

// --- MarkdownCleaner Tests ---

func TestMarkdownCleaner_Clean_BasicHTML(t *testing.T) {
	c := NewMarkdown()

	html := `<h1>Title</h1><p>A paragraph.</p>`

	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if !strings.Contains(got, "# Title") {
		t.Errorf("expected markdown heading, got %q", got)
	}

	if !strings.Contains(got, "A paragraph.") {
		t.Errorf("expected paragraph text, got %q", got)
	}
}

func TestMarkdownCleaner_Clean_WithHeaders(t *testing.T) {
	c := NewMarkdown()

	html := `<h1>H1</h1><h2>H2</h2><h3>H3</h3>`

	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if !strings.Contains(got, "# H1") {
		t.Errorf("expected # H1, got %q", got)
	}

	if !strings.Contains(got, "## H2") {
		t.Errorf("expected ## H2, got %q", got)
	}

	if !strings.Contains(got, "### H3") {
		t.Errorf("expected ### H3, got %q", got)
	}
}

func TestMarkdownCleaner_Clean_WithLists(t *testing.T) {
	c := NewMarkdown()

	html := `<ul><li>Item 1</li><li>Item 2</li></ul>`

	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	if !strings.Contains(got, "Item 1") && !strings.Contains(got, "Item 2") {
		t.Errorf("expected list items, got %q", got)
	}
}

func TestMarkdownCleaner_Clean_WithLinks(t *testing.T) {
	c := NewMarkdown()

	html := `<a href="https://example.com">Example Link</a>`

	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	// Markdown links should include both text and URL
	if !strings.Contains(got, "Example Link") {
		t.Errorf("expected link text, got %q", got)
	}

	if !strings.Contains(got, "example.com") {
		t.Errorf("expected link URL, got %q", got)
	}
}

func TestMarkdownCleaner_Clean_FromTestdata(t *testing.T) {
	c := NewMarkdown()

	html := readTestdata(t, "simple.html")

	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}

	// Check key content is preserved
	checks := []string{
		"Main Heading",
		"paragraph",
		"bold",
		"italic",
		"Second Heading",
		"First item",
		"link to example",
	}

	for _, check := range checks {
		if !strings.Contains(got, check) {
			t.Errorf("expected %q in output, got %q", check, got)
		}
	}
}

func TestMarkdownCleaner_Name(t *testing.T) {
	c := NewMarkdown()
	if got := c.Name(); got != "markdown" {
		t.Errorf("Name() = %q, want %q", got, "markdown")
	}
}

// --- ReadabilityCleaner Tests ---

func TestReadabilityCleaner_Clean_ExtractsMainContent(t *testing.T) {
	c := NewReadability(nil)

	html := `<html><body>
		<nav><a href="/">Home</a><a href="/about">About</a></nav>
		<article>
			<h1>Understanding Widgets</h1>
			<p>Widgets are a fundamental part of the system and this paragraph explains
			what they do in enough detail for the extractor to consider it real content
			worth keeping around for the reader, rather than boilerplate navigation chrome
			that should be discarded during cleaning.</p>
		</article>
		<footer>Copyright 2026</footer>
	</body></html>`

	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if !strings.Contains(got, "Widgets") {
		t.Errorf("expected article content preserved, got %q", got)
	}
}

func TestReadabilityCleaner_Clean_TextOutput(t *testing.T) {
	c := NewReadability(&ReadabilityConfig{Output: OutputText, CharThreshold: 1})

	html := `<article><h1>Title</h1><p>Some body text here.</p></article>`
	got, err := c.Clean(html)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("expected plain text output with no markup, got %q", got)
	}
}

func TestReadabilityCleaner_Clean_EmptyInputFallsBackGracefully(t *testing.T) {
	c := NewReadability(nil)
	got, err := c.Clean("")
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if got != "" {
		t.Errorf("Clean(\"\") = %q, want empty passthrough", got)
	}
}

func TestReadabilityCleaner_Name(t *testing.T) {
	c := NewReadability(nil)
	if got := c.Name(); got != "readability" {
		t.Errorf("Name() = %q, want %q", got, "readability")
	}
}

// --- cleanWhitespace Tests ---

func TestCleanWhitespace_MultipleBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	got := cleanWhitespace(input)

	// Should collapse multiple blank lines to max 2
	blankCount := 0
	for _, line := range strings.Split(got, "\n") {
		if strings.TrimSpace(line) == "" {
			blankCount++
		}
	}

	if blankCount > 2 {
		t.Errorf("expected max 2 blank lines, got %d in %q", blankCount, got)
	}
}

func TestCleanWhitespace_LeadingTrailingSpace(t *testing.T) {
	input := "\n\n  Content  \n\n"
	got := cleanWhitespace(input)

	if strings.HasPrefix(got, "\n") || strings.HasPrefix(got, " ") {
		t.Errorf("expected no leading whitespace, got %q", got)
	}

	if strings.HasSuffix(got, "\n") || strings.HasSuffix(got, " ") {
		t.Errorf("expected no trailing whitespace, got %q", got)
	}
}

func TestCleanWhitespace_NoChange(t *testing.T) {
	input := "Line 1\n\nLine 2"
	got := cleanWhitespace(input)

	if got != input {
		t.Errorf("cleanWhitespace() = %q, want %q", got, input)
	}
}

func TestCleanWhitespace_Empty(t *testing.T) {
	got := cleanWhitespace("")
	if got != "" {
		t.Errorf("cleanWhitespace(\"\") = %q, want \"\"", got)
	}
}

// --- Option Tests ---

func TestWithStripLinks(t *testing.T) {
	cfg := &markdownConfig{}
	WithStripLinks(true)(cfg)

	if !cfg.StripLinks {
		t.Error("WithStripLinks(true) did not set StripLinks")
	}

	WithStripLinks(false)(cfg)
	if cfg.StripLinks {
		t.Error("WithStripLinks(false) did not unset StripLinks")
	}
}

func TestWithStripImages(t *testing.T) {
	cfg := &markdownConfig{}
	WithStripImages(true)(cfg)

	if !cfg.StripImages {
		t.Error("WithStripImages(true) did not set StripImages")
	}
}
