package converter

import "github.com/DRSN-tech/nudge-backend/internal/domain"

type ProjectConverter interface {
	ToRedisModel(entity *domain.Project) *ProjectRedisModel
	ToEntity(model *ProjectRedisModel) *domain.Project
}

type ProjectConverterImpl struct{}

func NewProjectConverterImpl() *ProjectConverterImpl {
	return &ProjectConverterImpl{}
}

func (ProjectConverterImpl) ToRedisModel(entity *domain.Project) *ProjectRedisModel {
	if entity == nil {
		return nil
	}

	return &ProjectRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Brief:       entity.Brief,
		Keywords:    entity.Metadata.Keywords,
		Emotion:     entity.Metadata.Emotion,
		LookAndFeel: entity.Metadata.LookAndFeel,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProjectConverterImpl) ToEntity(model *ProjectRedisModel) *domain.Project {
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
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
