package usecase

import (
	"context"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, req *ListReq) ([]domain.Project, int, error)
	Update(ctx context.Context, project *domain.Project) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	List(ctx context.Context, req *ListAssetsReq) ([]domain.Asset, int, error)
	Update(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	Delete(ctx context.Context, id string) error
}

// SimilarityRepository выполняет поиск ближайших ассетов по вектору запроса.
type SimilarityRepository interface {
	SearchSimilar(ctx context.Context, vector []float32, threshold float64, limit int) ([]domain.Asset, error)
}

type EmbeddingRepository interface {
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
	Delete(ctx context.Context, ids []string) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ProjectCacheRepository — кэш проектов. Промах возвращает (nil, nil).
type ProjectCacheRepository interface {
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	SetProject(ctx context.Context, project *domain.Project) error
	DeleteProject(ctx context.Context, id string) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

// TxManager выполняет fn в одной транзакции; репозитории берут её из контекста.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
