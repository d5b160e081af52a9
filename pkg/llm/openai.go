package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider wraps the OpenAI SDK.
type OpenAIProvider struct {
	client       openai.Client
	model        string
	cfg          ProviderConfig
	providerName string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg ProviderConfig) (*OpenAIProvider, error) {
	opts := []option.RequestOption{}

	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}

	return &OpenAIProvider{
		client:       client,
		model:        model,
		cfg:          cfg,
		providerName: "openai",
	}, nil
}

// Complete sends a completion request to OpenAI.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	reasoning := isReasoningModel(p.providerName, p.model)

	var messages []openai.ChatCompletionMessageParamUnion
	if reasoning {
		var systemText, rest strings.Builder
		for _, msg := range req.Messages {
			if msg.Role == RoleSystem {
				systemText.WriteString(msg.Content)
			} else {
				if rest.Len() > 0 {
					rest.WriteString("\n\n")
				}
				rest.WriteString(msg.Content)
			}
		}
		messages = []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(collapseForReasoningModel(systemText.String(), rest.String())),
		}
	} else {
		messages = make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
		for _, msg := range req.Messages {
			switch msg.Role {
			case RoleSystem:
				messages = append(messages, openai.SystemMessage(msg.Content))
			case RoleUser:
				messages = append(messages, openai.UserMessage(msg.Content))
			case RoleAssistant:
				messages = append(messages, openai.AssistantMessage(msg.Content))
			}
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: messages,
	}

	if !reasoning {
		maxTokens := req.MaxTokens
		if maxTokens == 0 {
			maxTokens = 4096
		}
		params.MaxTokens = openai.Int(int64(maxTokens))
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("no choices in response")
	}

	return CompletionResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Model: resp.Model,
	}, nil
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return p.providerName
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

func init() {
	RegisterProvider("openai", func(cfg ProviderConfig) (Provider, error) {
		return NewOpenAIProvider(cfg)
	})
}
