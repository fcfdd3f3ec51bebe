package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI asks a chat model for a bare translation.
type OpenAI struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	log     *zap.Logger
}

func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration, log *zap.Logger) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
		log:     log,
	}
}

func (o *OpenAI) Translate(ctx context.Context, text, lang string) string {
	if skip(text, lang) {
		return text
	}
	out, err := o.complete(ctx, text, lang)
	if err != nil {
		o.log.Warn("translation failed", zap.String("provider", "openai"),
			zap.String("text", text), zap.String("lang", lang), zap.Error(err))
		return text
	}
	return out
}

func (o *OpenAI) complete(ctx context.Context, text, lang string) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	target := lang
	if name, ok := Languages[strings.ToLower(lang)]; ok {
		target = name
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		MaxTokens:   64,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf("You translate grocery item names from English to %s. "+
					"Reply with the translated name only, no quotes or punctuation.", target),
			},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	out := strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"'`)
	if out == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out, nil
}
