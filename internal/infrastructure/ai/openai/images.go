package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/infrastructure"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
)

const (
	DefaultImageModel = "dall-e-3"
	DefaultImageSize  = "1024x1024"

	maxImageBytes = 20 << 20
)

type imageGenerationReq struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageGenerationRes struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ImageGenerator вызывает images/generations и скачивает результат по временной ссылке.
type ImageGenerator struct {
	client  *http.Client
	apiKey  string
	baseURL string
	model   string
	size    string

	maxBytes int64
}

func NewImageGenerator(apiKey, baseURL, model string, timeout time.Duration) *ImageGenerator {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = DefaultImageModel
	}

	return &ImageGenerator{
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		size:    DefaultImageSize,

		maxBytes: maxImageBytes,
	}
}

// Generate запрашивает одно изображение и возвращает ссылку провайдера.
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "ImageGenerator.Generate"

	body, err := json.Marshal(imageGenerationReq{Model: g.model, Prompt: prompt, N: 1, Size: g.size})
	if err != nil {
		return "", e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", e.Wrap(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", e.Wrap(op, fmt.Errorf("%w: %w", e.ErrGeneration, err))
	}
	defer resp.Body.Close()

	var res imageGenerationRes
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&res); err != nil {
		return "", e.Wrap(op, fmt.Errorf("%w: status %d: %v", e.ErrGeneration, resp.StatusCode, err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if res.Error != nil && res.Error.Message != "" {
			msg = res.Error.Message
		}
		return "", e.Wrap(op, fmt.Errorf("%w: status %d: %s", e.ErrGeneration, resp.StatusCode, msg))
	}

	if len(res.Data) == 0 || res.Data[0].URL == "" {
		return "", e.Wrap(op, fmt.Errorf("%w: no image url in response", e.ErrGeneration))
	}

	return res.Data[0].URL, nil
}

// Download скачивает изображение по ссылке провайдера.
func (g *ImageGenerator) Download(ctx context.Context, url string) (*usecase.DownloadedImage, error) {
	const op = "ImageGenerator.Download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrPersistence, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, e.Wrap(op, fmt.Errorf("%w: status %d", e.ErrPersistence, resp.StatusCode))
	}

	contentType := infrastructure.MediaType(resp.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = "image/png"
	}
	if _, err := infrastructure.GetExtensionFromMIME(contentType); err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %s: %w", e.ErrPersistence, contentType, err))
	}

	// лишний байт отличает изображение ровно по лимиту от обрезанного
	data, err := io.ReadAll(io.LimitReader(resp.Body, g.maxBytes+1))
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %w", e.ErrPersistence, err))
	}
	if int64(len(data)) > g.maxBytes {
		return nil, e.Wrap(op, fmt.Errorf("%w: image exceeds %d bytes", e.ErrPersistence, g.maxBytes))
	}
	if len(data) == 0 {
		return nil, e.Wrap(op, fmt.Errorf("%w: empty body", e.ErrPersistence))
	}

	return usecase.NewDownloadedImage(data, contentType), nil
}
