package ai

import "context"

// CompletionReq: один запрос к чат-модели: текст и, опционально, изображение.
type CompletionReq struct {
	Prompt      string
	ImageURL    string // data URL или http(s) URL
	MaxTokens   int
	Temperature *float32
}

// Completer: чат-модель провайдера (OpenAI через eino или Gemini).
type Completer interface {
	Complete(ctx context.Context, req *CompletionReq) (string, error)
}

func NewCompletionReq(prompt, imageURL string, maxTokens int) *CompletionReq {
	return &CompletionReq{
		Prompt:    prompt,
		ImageURL:  imageURL,
		MaxTokens: maxTokens,
	}
}

// WithTemperature задаёт температуру сэмплирования.
func (r *CompletionReq) WithTemperature(t float32) *CompletionReq {
	r.Temperature = &t
	return r
}
