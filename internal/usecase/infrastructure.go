package usecase

import (
	"context"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
)

// MetadataExtractor размечает изображения и тексты тройкой метаданных через внешнюю модель.
type MetadataExtractor interface {
	FromScreenshot(ctx context.Context, imageURL string) (*domain.Metadata, error)
	FromAssetImage(ctx context.Context, imageURL string) (*domain.Metadata, error)
	FromBrief(ctx context.Context, brief string) (*domain.Metadata, error)
	FromPrompt(ctx context.Context, prompt string) (*domain.Metadata, error)
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type VariationGenerator interface {
	Variations(ctx context.Context, base string, count int) ([]string, error)
}

// ImageGenerator генерирует изображение и возвращает временную ссылку провайдера.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Download(ctx context.Context, url string) (*DownloadedImage, error)
}

// ImageStorage сохраняет сгенерированные изображения и возвращает их постоянный URL.
type ImageStorage interface {
	StoreImage(ctx context.Context, req *StoreImageReq) (string, error)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
