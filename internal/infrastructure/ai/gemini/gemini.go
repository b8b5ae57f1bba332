package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/infrastructure"
	"github.com/DRSN-tech/nudge-backend/internal/infrastructure/ai"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	DefaultChatModel      = "gemini-1.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
	EmbeddingDimensions   = 768

	maxImageBytes = 20 << 20
)

// Client: альтернативный провайдер: чат и эмбеддинги Gemini.
type Client struct {
	client         *genai.Client
	chatModel      string
	embeddingModel string
	http           *http.Client
}

func NewClient(ctx context.Context, apiKey, chatModel, embeddingModel string, timeout time.Duration) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, e.Wrap("gemini.NewClient", err)
	}

	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	return &Client{
		client:         c,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		http:           &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// Complete отправляет текст и, если есть, изображение. Удалённое изображение сначала скачивается:
// Gemini принимает только встроенные байты.
func (c *Client) Complete(ctx context.Context, req *ai.CompletionReq) (string, error) {
	const op = "gemini.Client.Complete"

	m := c.client.GenerativeModel(c.chatModel)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature != nil {
		m.SetTemperature(*req.Temperature)
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if req.ImageURL != "" {
		format, data, err := c.loadImage(ctx, req.ImageURL)
		if err != nil {
			return "", e.Wrap(op, err)
		}
		parts = append(parts, genai.ImageData(format, data))
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}

	if strings.TrimSpace(b.String()) == "" {
		return "", e.Wrap(op, fmt.Errorf("empty completion"))
	}

	return b.String(), nil
}

func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "gemini.Client.Embed"

	res, err := c.client.EmbeddingModel(c.embeddingModel).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbedding, err))
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrEmbedding, e.ErrVectorEmbeddingEmpty))
	}

	return res.Embedding.Values, nil
}

func (c *Client) Dimensions() int {
	return EmbeddingDimensions
}

// loadImage возвращает формат ("png", "jpeg", ...) и байты изображения.
func (c *Client) loadImage(ctx context.Context, src string) (string, []byte, error) {
	if strings.HasPrefix(src, "data:") {
		return ParseDataURL(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", nil, err
	}

	return imageFormat(resp.Header.Get("Content-Type")), data, nil
}

// ParseDataURL разбирает data:image/<fmt>;base64,<payload>.
func ParseDataURL(src string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", nil, fmt.Errorf("%w: not a base64 data url", e.ErrInvalidScreenshot)
	}

	mime := strings.TrimSuffix(header, ";base64")
	if _, err := infrastructure.GetExtensionFromMIME(mime); err != nil {
		return "", nil, fmt.Errorf("%s: %w", mime, err)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", e.ErrInvalidScreenshot, err)
	}

	return imageFormat(mime), data, nil
}

func imageFormat(contentType string) string {
	mt := infrastructure.MediaType(contentType)
	switch mt {
	case "image/jpg", "image/jpeg", "":
		return "jpeg"
	default:
		return strings.TrimPrefix(mt, "image/")
	}
}
