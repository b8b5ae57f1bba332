package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ProjectUseCase реализует управление проектами каталога.
type ProjectUseCase struct {
	projectRepo ProjectRepository
	outboxRepo  OutboxRepository
	txManager   TxManager
	extractor   MetadataExtractor
	embedder    Embedder
	cacheRepo   ProjectCacheRepository
	logger      logger.Logger
	newID       func() string

	// cacheGen растёт на каждой инвалидации; прогрев, начатый до неё, не пишет в кэш
	cacheGen atomic.Uint64
}

func NewProjectUC(
	projectRepo ProjectRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	extractor MetadataExtractor,
	embedder Embedder,
	cacheRepo ProjectCacheRepository,
	logger logger.Logger,
) *ProjectUseCase {
	return &ProjectUseCase{
		projectRepo: projectRepo,
		outboxRepo:  outboxRepo,
		txManager:   txManager,
		extractor:   extractor,
		embedder:    embedder,
		cacheRepo:   cacheRepo,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// CreateProject создаёт проект. Недостающие поля тройки берутся из анализа брифа, а затем из значений по умолчанию.
func (p *ProjectUseCase) CreateProject(ctx context.Context, req *CreateProjectReq) (*domain.Project, error) {
	const op = "ProjectUseCase.CreateProject"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.Wrap(op, e.ErrProjectNameRequired)
	}
	brief := strings.TrimSpace(req.Brief)

	metadata := req.Metadata
	if req.AutoAnalyze && brief != "" && !metadata.IsComplete() {
		analysis, err := p.extractor.FromBrief(ctx, brief)
		if err != nil {
			p.logger.Warnf("%s: brief analysis failed, using defaults: %v", op, err)
		} else {
			metadata = metadata.WithDefaults(*analysis)
		}
	}
	metadata = metadata.WithDefaults(domain.DefaultProjectMetadata).Clamp()

	vector, err := p.embed(ctx, metadata)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	project := domain.NewProject(p.newID(), name, brief, metadata, vector)

	var created *domain.Project
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = p.projectRepo.Create(ctx, project)
		if err != nil {
			return err
		}

		return p.publish(ctx, ProjectCreated, created)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return created, nil
}

// GetProject возвращает проект из кэша, а при промахе из БД с фоновым прогревом кэша.
func (p *ProjectUseCase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	const op = "ProjectUseCase.GetProject"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, e.Wrap(op, e.ErrProjectNotFound)
	}

	cached, err := p.cacheRepo.GetProject(ctx, id)
	if err != nil {
		p.logger.Warnf("%s: cache lookup failed: %v", op, err)
	} else if cached != nil {
		return cached, nil
	}

	gen := p.cacheGen.Load()
	project, err := p.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Фоновое добавление проекта в кэш
	go p.warmCache(*project, gen)

	return project, nil
}

// warmCache кладёт прочитанный проект в кэш, если с момента чтения не было инвалидаций.
// Инвалидация между проверкой и записью ловится повторной проверкой.
func (p *ProjectUseCase) warmCache(project domain.Project, gen uint64) {
	const op = "ProjectUseCase.warmCache"

	if p.cacheGen.Load() != gen {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := p.cacheRepo.SetProject(ctx, &project); err != nil {
		p.logger.Warnf("Failed to cache project in background: %v", e.Wrap(op, err))
		return
	}

	if p.cacheGen.Load() != gen {
		p.invalidate(ctx, project.ID)
	}
}

// ListProjects возвращает страницу проектов с поиском по имени, брифу и ключевым словам.
func (p *ProjectUseCase) ListProjects(ctx context.Context, req *ListReq) (*ListProjectsRes, error) {
	const op = "ProjectUseCase.ListProjects"

	if err := normalizeListReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	projects, total, err := p.projectRepo.List(ctx, req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewListProjectsRes(projects, total, req), nil
}

// UpdateProject частично обновляет проект; при изменении тройки вектор пересчитывается.
func (p *ProjectUseCase) UpdateProject(ctx context.Context, req *UpdateProjectReq) (*domain.Project, error) {
	const op = "ProjectUseCase.UpdateProject"

	project, err := p.projectRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, e.Wrap(op, e.ErrProjectNameRequired)
		}
		project.Name = name
	}
	if req.Brief != nil {
		project.Brief = strings.TrimSpace(*req.Brief)
	}

	metadata, changed := applyMetadataPatch(project.Metadata, req.Keywords, req.Emotion, req.LookAndFeel)
	if changed {
		project.Metadata = metadata.WithDefaults(domain.DefaultProjectMetadata).Clamp()
		if project.Embedding, err = p.embed(ctx, project.Metadata); err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	var updated *domain.Project
	err = p.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = p.projectRepo.Update(ctx, project)
		if err != nil {
			return err
		}

		return p.publish(ctx, ProjectUpdated, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, updated.ID)
	return updated, nil
}

// DeleteProject удаляет проект.
func (p *ProjectUseCase) DeleteProject(ctx context.Context, id string) error {
	const op = "ProjectUseCase.DeleteProject"

	err := p.txManager.Do(ctx, func(ctx context.Context) error {
		if err := p.projectRepo.Delete(ctx, id); err != nil {
			return err
		}

		return p.publish(ctx, ProjectDeleted, &domain.Project{ID: id})
	})
	if err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, id)
	return nil
}

func (p *ProjectUseCase) embed(ctx context.Context, metadata domain.Metadata) ([]float32, error) {
	vector, err := p.embedder.Embed(ctx, metadata.EmbeddingText())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", e.ErrEmbedding, err)
	}

	return vector, nil
}

func (p *ProjectUseCase) publish(ctx context.Context, eventType OutboxEventType, project *domain.Project) error {
	event, err := NewOutboxEvent(eventType, project.ID, projectEventFields(project))
	if err != nil {
		return err
	}

	_, err = p.outboxRepo.Create(ctx, event)
	return err
}

// invalidate удаляет проект из кэша; ошибка кэша не влияет на результат операции.
func (p *ProjectUseCase) invalidate(ctx context.Context, id string) {
	p.cacheGen.Add(1)
	if err := p.cacheRepo.DeleteProject(ctx, id); err != nil {
		p.logger.Warnf("Failed to delete project %s from cache: %v", id, err)
	}
}

// applyMetadataPatch применяет непустые указатели к тройке и сообщает, изменилось ли что-то.
func applyMetadataPatch(m domain.Metadata, keywords, emotion, lookAndFeel *string) (domain.Metadata, bool) {
	changed := false

	if keywords != nil && strings.TrimSpace(*keywords) != m.Keywords {
		m.Keywords = strings.TrimSpace(*keywords)
		changed = true
	}
	if emotion != nil && strings.TrimSpace(*emotion) != m.Emotion {
		m.Emotion = strings.TrimSpace(*emotion)
		changed = true
	}
	if lookAndFeel != nil && strings.TrimSpace(*lookAndFeel) != m.LookAndFeel {
		m.LookAndFeel = strings.TrimSpace(*lookAndFeel)
		changed = true
	}

	return m, changed
}

// normalizeListReq подставляет лимит по умолчанию и проверяет границы пагинации.
func normalizeListReq(req *ListReq) error {
	if req.Limit == 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit < 1 || req.Limit > maxListLimit || req.Offset < 0 {
		return e.ErrInvalidPagination
	}
	req.Search = strings.TrimSpace(req.Search)

	return nil
}
