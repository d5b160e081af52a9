package llm

import (
	"os"
	"testing"
)

func TestNewProvider_KnownNames(t *testing.T) {
	for _, name := range []string{"anthropic", "openai"} {
		if _, err := NewProvider(name, ProviderConfig{APIKey: "test-key"}); err != nil {
			t.Errorf("NewProvider(%q) error: %v", name, err)
		}
	}
}

func TestNewProvider_UnknownNameErrors(t *testing.T) {
	_, err := NewProvider("does-not-exist", ProviderConfig{})
	if err == nil {
		t.Fatal("expected an error for an unregistered provider name")
	}
}

func TestRegisterProvider_AddsCustomFactory(t *testing.T) {
	called := false
	RegisterProvider("test-custom", func(cfg ProviderConfig) (Provider, error) {
		called = true
		return nil, nil
	})

	if _, err := NewProvider("test-custom", ProviderConfig{}); err != nil {
		t.Fatalf("NewProvider(test-custom) error: %v", err)
	}
	if !called {
		t.Error("registered factory was not invoked")
	}
}

func TestAvailableProviders_IncludesBuiltins(t *testing.T) {
	names := AvailableProviders()
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, want := range []string{"anthropic", "openai"} {
		if !seen[want] {
			t.Errorf("AvailableProviders() = %v, missing %q", names, want)
		}
	}
}

func TestDetectProvider_PrefersAnthropicOverOpenAI(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	name, key := DetectProvider()
	if name != "" || key != "" {
		t.Fatalf("DetectProvider() with no keys set = (%q, %q), want (\"\", \"\")", name, key)
	}

	os.Setenv("OPENAI_API_KEY", "openai-key")
	t.Cleanup(func() { os.Unsetenv("OPENAI_API_KEY") })
	name, key = DetectProvider()
	if name != "openai" || key != "openai-key" {
		t.Fatalf("DetectProvider() with only OPENAI_API_KEY = (%q, %q), want (\"openai\", \"openai-key\")", name, key)
	}

	os.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
	t.Cleanup(func() { os.Unsetenv("ANTHROPIC_API_KEY") })
	name, key = DetectProvider()
	if name != "anthropic" || key != "anthropic-key" {
		t.Fatalf("DetectProvider() with both keys set = (%q, %q), want (\"anthropic\", \"anthropic-key\")", name, key)
	}
}

func TestGetDefaultModel(t *testing.T) {
	if got := GetDefaultModel("anthropic"); got == "" {
		t.Error("GetDefaultModel(anthropic) returned empty string")
	}
	if got := GetDefaultModel("unknown-provider"); got != "" {
		t.Errorf("GetDefaultModel(unknown-provider) = %q, want empty string", got)
	}
}
