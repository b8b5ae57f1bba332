package converter

import (
	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/pgvector/pgvector-go"
)

// ProjectConverter преобразует Project между domain и моделью PostgreSQL.
type ProjectConverter interface {
	ToModel(entity *domain.Project) *ProjectModel
	ToEntity(model *ProjectModel) *domain.Project
}

// AssetConverter преобразует Asset между domain и моделью PostgreSQL.
type AssetConverter interface {
	ToModel(entity *domain.Asset) *AssetModel
	ToEntity(model *AssetModel) *domain.Asset
	ToArrEntity(models []*AssetModel) []domain.Asset
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProjectConverterImpl struct{}

func NewProjectConverterImpl() *ProjectConverterImpl {
	return &ProjectConverterImpl{}
}

func (ProjectConverterImpl) ToModel(entity *domain.Project) *ProjectModel {
	if entity == nil {
		return nil
	}

	return &ProjectModel{
		ID:               entity.ID,
		Name:             entity.Name,
		Brief:            entity.Brief,
		Keywords:         entity.Metadata.Keywords,
		Emotion:          entity.Metadata.Emotion,
		LookAndFeel:      entity.Metadata.LookAndFeel,
		CombinedMetadata: entity.Metadata.EmbeddingText(),
		CombinedVector:   ToVector(entity.Embedding),
		CreatedAt:        entity.CreatedAt,
		UpdatedAt:        entity.UpdatedAt,
	}
}

func (ProjectConverterImpl) ToEntity(model *ProjectModel) *domain.Project {
	if model == nil {
		return nil
	}

	return &domain.Project{
		ID:    model.ID,
		Name:  model.Name,
		Brief: model.Brief,
		Metadata: domain.Metadata{
			Keywords:    model.Keywords,
			Emotion:     model.Emotion,
			LookAndFeel: model.LookAndFeel,
		},
		Embedding: FromVector(model.CombinedVector),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

type AssetConverterImpl struct{}

func NewAssetConverterImpl() *AssetConverterImpl {
	return &AssetConverterImpl{}
}

func (AssetConverterImpl) ToModel(entity *domain.Asset) *AssetModel {
	if entity == nil {
		return nil
	}

	tags := entity.Tags
	if tags == nil {
		tags = []string{}
	}

	return &AssetModel{
		ID:               entity.ID,
		ProjectID:        entity.ProjectID,
		Filename:         entity.Filename,
		FileURL:          entity.FileURL,
		Keywords:         entity.Metadata.Keywords,
		Emotion:          entity.Metadata.Emotion,
		LookAndFeel:      entity.Metadata.LookAndFeel,
		CombinedMetadata: entity.Metadata.EmbeddingText(),
		CombinedVector:   ToVector(entity.Embedding),
		Tags:             tags,
		IsPublic:         entity.IsPublic,
		CreatedAt:        entity.CreatedAt,
		UpdatedAt:        entity.UpdatedAt,
		Similarity:       entity.SimilarityScore,
	}
}

func (AssetConverterImpl) ToEntity(model *AssetModel) *domain.Asset {
	if model == nil {
		return nil
	}

	tags := model.Tags
	if tags == nil {
		tags = []string{}
	}

	return &domain.Asset{
		ID:        model.ID,
		ProjectID: model.ProjectID,
		Filename:  model.Filename,
		FileURL:   model.FileURL,
		Metadata: domain.Metadata{
			Keywords:    model.Keywords,
			Emotion:     model.Emotion,
			LookAndFeel: model.LookAndFeel,
		},
		Tags:            tags,
		IsPublic:        model.IsPublic,
		Embedding:       FromVector(model.CombinedVector),
		SimilarityScore: model.Similarity,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func (c AssetConverterImpl) ToArrEntity(models []*AssetModel) []domain.Asset {
	result := make([]domain.Asset, 0, len(models))
	for _, m := range models {
		if m == nil {
			continue
		}
		result = append(result, *c.ToEntity(m))
	}

	return result
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl {
	return &OutboxEventConverterImpl{}
}

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		result = append(result, c.ToEntity(m))
	}

	return result
}

// VectorDimensions: размерность колонок combined_vector (см. миграцию 000001).
const VectorDimensions = 1536

// ToVector: пустой срез и вектор другой размерности (эмбеддинги Gemini) сохраняются как NULL,
// такие векторы живут только в Qdrant.
func ToVector(v []float32) *pgvector.Vector {
	if len(v) != VectorDimensions {
		return nil
	}

	vec := pgvector.NewVector(v)
	return &vec
}

func FromVector(v *pgvector.Vector) []float32 {
	if v == nil {
		return nil
	}

	return v.Slice()
}
