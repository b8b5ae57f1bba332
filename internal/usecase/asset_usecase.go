package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/google/uuid"
)

// AssetUseCase реализует управление ассетами каталога: Postgres как источник истины,
// Qdrant как вторичный индекс векторов.
type AssetUseCase struct {
	assetRepo     AssetRepository
	outboxRepo    OutboxRepository
	txManager     TxManager
	extractor     MetadataExtractor
	embedder      Embedder
	embeddingRepo EmbeddingRepository
	logger        logger.Logger
	newID         func() string
}

func NewAssetUC(
	assetRepo AssetRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	extractor MetadataExtractor,
	embedder Embedder,
	embeddingRepo EmbeddingRepository,
	logger logger.Logger,
) *AssetUseCase {
	return &AssetUseCase{
		assetRepo:     assetRepo,
		outboxRepo:    outboxRepo,
		txManager:     txManager,
		extractor:     extractor,
		embedder:      embedder,
		embeddingRepo: embeddingRepo,
		logger:        logger,
		newID:         uuid.NewString,
	}
}

// CreateAsset создаёт ассет. Если тройка задана не полностью, изображение анализируется моделью.
func (a *AssetUseCase) CreateAsset(ctx context.Context, req *CreateAssetReq) (*domain.Asset, error) {
	const op = "AssetUseCase.CreateAsset"

	filename := strings.TrimSpace(req.Filename)
	fileURL := strings.TrimSpace(req.FileURL)
	projectID := strings.TrimSpace(req.ProjectID)
	if filename == "" || fileURL == "" || projectID == "" {
		return nil, e.Wrap(op, e.ErrAssetFieldsRequired)
	}
	if !IsHTTPURL(fileURL) {
		return nil, e.Wrap(op, e.ErrInvalidFileURL)
	}

	metadata := req.Metadata
	if req.AutoAnalyze && !metadata.IsComplete() {
		analysis, err := a.extractor.FromAssetImage(ctx, fileURL)
		if err != nil {
			a.logger.Warnf("%s: image analysis failed, using defaults: %v", op, err)
		} else {
			metadata = metadata.WithDefaults(*analysis)
		}
	}
	metadata = metadata.WithDefaults(domain.DefaultAssetMetadata).Clamp()

	vector, err := a.embed(ctx, metadata)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	asset := domain.NewAsset(a.newID(), projectID, filename, fileURL, metadata, normalizeTags(req.Tags), vector)

	var created *domain.Asset
	err = a.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = a.assetRepo.Create(ctx, asset)
		if err != nil {
			return err
		}

		return a.publish(ctx, AssetCreated, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.index(ctx, created)
	return created, nil
}

func (a *AssetUseCase) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	const op = "AssetUseCase.GetAsset"

	asset, err := a.assetRepo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return asset, nil
}

// ListAssets возвращает страницу ассетов с фильтрами по проекту, тегам и текстовым поиском по тройке.
func (a *AssetUseCase) ListAssets(ctx context.Context, req *ListAssetsReq) (*ListAssetsRes, error) {
	const op = "AssetUseCase.ListAssets"

	if err := normalizeListReq(&req.ListReq); err != nil {
		return nil, e.Wrap(op, err)
	}
	req.Tags = normalizeTags(req.Tags)
	req.ProjectID = strings.TrimSpace(req.ProjectID)

	assets, total, err := a.assetRepo.List(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewListAssetsRes(assets, total, req), nil
}

// UpdateAsset частично обновляет ассет и переиндексирует его вектор.
func (a *AssetUseCase) UpdateAsset(ctx context.Context, req *UpdateAssetReq) (*domain.Asset, error) {
	const op = "AssetUseCase.UpdateAsset"

	asset, err := a.assetRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.Filename != nil {
		if strings.TrimSpace(*req.Filename) == "" {
			return nil, e.Wrap(op, e.ErrAssetFieldsRequired)
		}
		asset.Filename = strings.TrimSpace(*req.Filename)
	}
	if req.FileURL != nil {
		if !IsHTTPURL(strings.TrimSpace(*req.FileURL)) {
			return nil, e.Wrap(op, e.ErrInvalidFileURL)
		}
		asset.FileURL = strings.TrimSpace(*req.FileURL)
	}
	if req.ProjectID != nil {
		if strings.TrimSpace(*req.ProjectID) == "" {
			return nil, e.Wrap(op, e.ErrAssetFieldsRequired)
		}
		asset.ProjectID = strings.TrimSpace(*req.ProjectID)
	}
	if req.Tags != nil {
		asset.Tags = normalizeTags(*req.Tags)
	}

	metadata, changed := applyMetadataPatch(asset.Metadata, req.Keywords, req.Emotion, req.LookAndFeel)
	if changed || len(asset.Embedding) == 0 {
		asset.Metadata = metadata.WithDefaults(domain.DefaultAssetMetadata).Clamp()
		if asset.Embedding, err = a.embed(ctx, asset.Metadata); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	var updated *domain.Asset
	err = a.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = a.assetRepo.Update(ctx, asset)
		if err != nil {
			return err
		}

		return a.publish(ctx, AssetUpdated, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.index(ctx, updated)
	return updated, nil
}

func (a *AssetUseCase) DeleteAsset(ctx context.Context, id string) error {
	const op = "AssetUseCase.DeleteAsset"

	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		if err := a.assetRepo.Delete(ctx, id); err != nil {
			return err
		}

		return a.publish(ctx, AssetDeleted, &domain.Asset{ID: id})
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := a.embeddingRepo.Delete(ctx, []string{id}); err != nil {
		a.logger.Warnf("%s: failed to delete vector of asset %s: %v", op, id, err)
	}

	return nil
}

func (a *AssetUseCase) embed(ctx context.Context, metadata domain.Metadata) ([]float32, error) {
	vector, err := a.embedder.Embed(ctx, metadata.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", e.ErrEmbedding, err)
	}

	return vector, nil
}

func (a *AssetUseCase) publish(ctx context.Context, eventType OutboxEventType, asset *domain.Asset) error {
	event, err := NewOutboxEvent(eventType, asset.ID, assetEventFields(asset))
	if err != nil {
		return err
	}

	_, err = a.outboxRepo.Create(ctx, event)
	return err
}

// index обновляет вектор ассета во вторичном индексе. Ошибка только логируется.
func (a *AssetUseCase) index(ctx context.Context, asset *domain.Asset) {
	if len(asset.Embedding) == 0 {
		return
	}

	if err := a.embeddingRepo.Upsert(ctx, []domain.Embedding{*domain.NewAssetEmbedding(asset)}); err != nil {
		a.logger.Warnf("failed to index asset %s: %v", asset.ID, err)
	}
}

func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			result = append(result, t)
		}
	}

	return result
}
