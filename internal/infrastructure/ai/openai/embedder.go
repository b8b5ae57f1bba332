package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	openaiembedding "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

type stringEmbedder interface {
	EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error)
}

// Embedder строит вектор текста моделью эмбеддингов OpenAI (text-embedding-3-small, 1536).
type Embedder struct {
	embedder   stringEmbedder
	dimensions int
}

func NewEmbedder(ctx context.Context, apiKey, baseURL, modelName string, dimensions int, timeout time.Duration) (*Embedder, error) {
	config := &openaiembedding.EmbeddingConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
	}
	if dimensions > 0 {
		config.Dimensions = &dimensions
	}

	emb, err := openaiembedding.NewEmbedder(ctx, config)
	if err != nil {
		return nil, e.Wrap("openai.NewEmbedder", err)
	}

	return &Embedder{embedder: emb, dimensions: dimensions}, nil
}

// Embed: один вызов, без батчей и кэша.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "Embedder.Embed"

	res, err := m.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbedding, err))
	}
	if len(res) == 0 || len(res[0]) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbedding, e.ErrVectorEmbeddingEmpty))
	}

	vector := make([]float32, len(res[0]))
	for i, v := range res[0] {
		vector[i] = float32(v)
	}

	return vector, nil
}

func (m *Embedder) Dimensions() int {
	return m.dimensions
}
