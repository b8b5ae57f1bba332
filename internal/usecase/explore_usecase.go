package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	imageExpirationWarning = "Some images could not be uploaded to storage and may expire in ~2 hours. Most images are now permanently stored in object storage."
	temporarySolutionNote  = "Images are automatically uploaded to object storage for permanent access. Fallback to provider URLs only if upload fails."
	storageSuccessNote     = "All generated images successfully uploaded to object storage for permanent access."
)

// ProjectFinder читает проект каталога (с кэшем).
type ProjectFinder interface {
	GetProject(ctx context.Context, id string) (*domain.Project, error)
}

// AssetSearcher ищет похожие ассеты по текстовому запросу.
type AssetSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Asset, error)
}

// ImageSynthesizer генерирует изображения по объединённым метаданным.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, base string, count int) ([]domain.GeneratedImage, error)
}

// ExploreUseCase собирает выдачу вдохновения: найденные ассеты плюс сгенерированные изображения.
type ExploreUseCase struct {
	extractor   MetadataExtractor
	projects    ProjectFinder
	searcher    AssetSearcher
	synthesizer ImageSynthesizer
	logger      logger.Logger
	newID       func() string
}

func NewExploreUC(
	extractor MetadataExtractor,
	projects ProjectFinder,
	searcher AssetSearcher,
	synthesizer ImageSynthesizer,
	logger logger.Logger,
) *ExploreUseCase {
	return &ExploreUseCase{
		extractor:   extractor,
		projects:    projects,
		searcher:    searcher,
		synthesizer: synthesizer,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// Explore выполняет поиск и генерацию. Ошибки внешних вызовов не прерывают запрос,
// а попадают в SourceMetadata; наружу возвращается только ошибка валидации.
func (u *ExploreUseCase) Explore(ctx context.Context, req *ExploreReq) (*ExploreRes, error) {
	const op = "ExploreUseCase.Explore"

	req = normalizeExploreReq(req)
	if err := validateExploreReq(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	meta := &SourceMetadata{}

	// Ключевые слова без скриншота и проекта: только поиск, без генерации
	if req.Screenshot == "" && req.ProjectID == "" {
		return u.keywordsOnly(ctx, req.Keywords, meta), nil
	}

	combined := u.gatherInputs(ctx, req, meta)
	meta.CombinedSearchQuery = combined

	var found []domain.Asset
	assets, err := u.searcher.Search(ctx, combined, domain.MaxResults)
	if err != nil {
		u.logger.Warnf("%s: asset search failed: %v", op, err)
		meta.AssetSearchError = err.Error()
	} else {
		found = assets
	}

	assetsToUse, imagesToGenerate := domain.Split(len(found))
	if assetsToUse > len(found) {
		assetsToUse = len(found)
	}
	u.logger.Infof("%s: found %d similar assets, using %d, generating %d images", op, len(found), assetsToUse, imagesToGenerate)

	var generated []domain.GeneratedImage
	if imagesToGenerate > 0 {
		images, err := u.synthesizer.Synthesize(ctx, combined, imagesToGenerate)
		if err != nil {
			u.logger.Warnf("%s: image generation failed: %v", op, err)
			meta.ImageGenerationError = err.Error()
		}
		generated = images
	}

	results := make([]domain.ResultItem, 0, assetsToUse+len(generated))
	for i := 0; i < assetsToUse; i++ {
		results = append(results, *domain.NewAssetResult(&found[i]))
	}
	for i := range generated {
		results = append(results, *u.generatedResult(ctx, &generated[i]))
	}

	meta.AssetsFound = len(found)
	meta.AssetsUsed = assetsToUse
	meta.ImagesGenerated = len(generated)
	annotateStorage(meta, generated)

	return NewExploreRes(results, meta), nil
}

// keywordsOnly: поиск по ключевым словам. Генерация здесь не вызывается никогда.
func (u *ExploreUseCase) keywordsOnly(ctx context.Context, keywords string, meta *SourceMetadata) *ExploreRes {
	const op = "ExploreUseCase.keywordsOnly"

	meta.CombinedSearchQuery = keywords

	assets, err := u.searcher.Search(ctx, keywords, domain.MaxResults)
	if err != nil {
		u.logger.Warnf("%s: asset search failed: %v", op, err)
		meta.AssetSearchError = err.Error()
		assets = nil
	}
	if len(assets) > domain.MaxResults {
		assets = assets[:domain.MaxResults]
	}

	results := make([]domain.ResultItem, 0, len(assets))
	for i := range assets {
		results = append(results, *domain.NewAssetResult(&assets[i]))
	}

	meta.AssetsFound = len(assets)
	meta.AssetsUsed = len(assets)

	return NewExploreRes(results, meta)
}

// gatherInputs собирает объединённую строку запроса из анализа скриншота, проекта и ключевых слов.
func (u *ExploreUseCase) gatherInputs(ctx context.Context, req *ExploreReq, meta *SourceMetadata) string {
	const op = "ExploreUseCase.gatherInputs"

	var b strings.Builder

	if req.Screenshot != "" {
		analysis, err := u.extractor.FromScreenshot(ctx, req.Screenshot)
		if err != nil {
			u.logger.Warnf("%s: screenshot analysis failed: %v", op, err)
			meta.ScreenshotAnalysisError = err.Error()
		} else {
			clamped := analysis.Clamp()
			meta.ScreenshotAnalysis = &clamped
			b.WriteString(clamped.Label())
			b.WriteString(" ")
		}
	}

	if req.ProjectID != "" {
		project, err := u.projects.GetProject(ctx, req.ProjectID)
		switch {
		case errors.Is(err, e.ErrProjectNotFound):
			u.logger.Warnf("%s: project %s not found", op, req.ProjectID)
			meta.ProjectFetchError = err.Error()
		case err != nil:
			u.logger.Warnf("%s: project fetch failed: %v", op, err)
			meta.ProjectError = err.Error()
		default:
			pm := project.Metadata.Clamp()
			meta.ProjectMetadata = &pm
			b.WriteString(pm.Label())
			b.WriteString(", ")
		}
	}

	if req.Keywords != "" {
		b.WriteString(req.Keywords)
	}

	combined := strings.TrimSpace(b.String())
	if combined == "" {
		// ни один источник не дал текста: ищем и генерируем по нейтральной тройке
		combined = domain.DefaultProjectMetadata.Label()
	}

	return combined
}

// generatedResult размечает сгенерированное изображение по его промпту.
func (u *ExploreUseCase) generatedResult(ctx context.Context, img *domain.GeneratedImage) *domain.ResultItem {
	metadata, err := u.extractor.FromPrompt(ctx, img.Prompt)
	if err != nil || metadata == nil || !metadata.IsComplete() {
		u.logger.Warnf("metadata extraction for generated image failed, using fallback: %v", err)
		metadata = domain.GeneratedFallbackMetadata(img.Prompt)
	}

	return domain.NewGeneratedResult(u.newID(), img, *metadata)
}

// annotateStorage отмечает в диагностике, остались ли изображения на временных ссылках.
func annotateStorage(meta *SourceMetadata, images []domain.GeneratedImage) {
	for _, img := range images {
		if img.Temporary {
			meta.TemporaryImages++
		}
	}

	switch {
	case meta.TemporaryImages > 0:
		meta.ImageExpirationWarning = imageExpirationWarning
		meta.TemporarySolutionNote = temporarySolutionNote
	case len(images) > 0:
		meta.StorageSuccessNote = storageSuccessNote
	}
}

func normalizeExploreReq(req *ExploreReq) *ExploreReq {
	if req == nil {
		return &ExploreReq{}
	}

	return NewExploreReq(
		strings.TrimSpace(req.Screenshot),
		strings.TrimSpace(req.ProjectID),
		strings.TrimSpace(req.Keywords),
	)
}

func validateExploreReq(req *ExploreReq) error {
	if req.Screenshot == "" && req.ProjectID == "" && req.Keywords == "" {
		return e.ErrNoExploreInput
	}

	if req.Screenshot != "" && !IsImageSource(req.Screenshot) {
		return e.ErrInvalidScreenshot
	}

	return nil
}

// IsImageSource проверяет, что строка является data URL изображения или http(s) URL.
func IsImageSource(src string) bool {
	if strings.HasPrefix(src, "data:image/") {
		return strings.Contains(src, ";base64,")
	}

	return IsHTTPURL(src)
}

// IsHTTPURL проверяет, что строка является абсолютным http(s) URL.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
