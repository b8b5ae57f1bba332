package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/infrastructure/ai"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// generator: часть model.BaseChatModel, которая нужна комплитеру.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatCompleter отправляет запросы в чат-модель OpenAI через eino.
type ChatCompleter struct {
	model generator
}

func NewChatCompleter(ctx context.Context, apiKey, baseURL, modelName string, timeout time.Duration) (*ChatCompleter, error) {
	cm, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
	})
	if err != nil {
		return nil, e.Wrap("openai.NewChatCompleter", err)
	}

	return &ChatCompleter{model: cm}, nil
}

// Complete отправляет одно пользовательское сообщение. С изображением сообщение собирается из двух частей.
func (c *ChatCompleter) Complete(ctx context.Context, req *ai.CompletionReq) (string, error) {
	const op = "ChatCompleter.Complete"

	opts := make([]model.Option, 0, 2)
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}

	reply, err := c.model.Generate(ctx, []*schema.Message{userMessage(req)}, opts...)
	if err != nil {
		return "", e.Wrap(op, err)
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", e.Wrap(op, fmt.Errorf("empty completion"))
	}

	return reply.Content, nil
}

func userMessage(req *ai.CompletionReq) *schema.Message {
	if req.ImageURL == "" {
		return schema.UserMessage(req.Prompt)
	}

	return &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{Type: schema.ChatMessagePartTypeText, Text: req.Prompt},
			{Type: schema.ChatMessagePartTypeImageURL, ImageURL: &schema.ChatMessageImageURL{URL: req.ImageURL}},
		},
	}
}
