package usecase

import "github.com/DRSN-tech/nudge-backend/internal/domain"

// EXPLORE USECASE

// ExploreReq — запрос подборки вдохновения. Хотя бы одно поле должно быть заполнено.
type ExploreReq struct {
	Screenshot string // data URL или http(s) URL
	ProjectID  string
	Keywords   string
}

// ExploreRes — выдача explore: не более 6 элементов и диагностика.
type ExploreRes struct {
	Results        []domain.ResultItem
	TotalCount     int
	SourceMetadata *SourceMetadata
}

// SourceMetadata — диагностика запроса. Никогда не влияет на сами результаты.
type SourceMetadata struct {
	ScreenshotAnalysis      *domain.Metadata
	ScreenshotAnalysisError string
	ProjectMetadata         *domain.Metadata
	ProjectFetchError       string
	ProjectError            string
	AssetSearchError        string
	ImageGenerationError    string
	CombinedSearchQuery     string
	AssetsFound             int
	AssetsUsed              int
	ImagesGenerated         int
	TemporaryImages         int
	ImageExpirationWarning  string
	TemporarySolutionNote   string
	StorageSuccessNote      string
}

// PROJECT USECASE

// CreateProjectReq — запрос на создание проекта. Пустые поля тройки заполняются анализом брифа или значениями по умолчанию.
type CreateProjectReq struct {
	Name        string
	Brief       string
	Metadata    domain.Metadata
	AutoAnalyze bool
}

// UpdateProjectReq — частичное обновление проекта; nil означает "не менять".
type UpdateProjectReq struct {
	ID          string
	Name        *string
	Brief       *string
	Keywords    *string
	Emotion     *string
	LookAndFeel *string
}

// ListReq — параметры постраничной выборки.
type ListReq struct {
	Limit  int
	Offset int
	Search string
}

type ListProjectsRes struct {
	Projects []domain.Project
	Total    int
	Limit    int
	Offset   int
	HasMore  bool
}

// ASSET USECASE

type CreateAssetReq struct {
	Filename    string
	FileURL     string
	ProjectID   string
	Metadata    domain.Metadata
	Tags        []string
	AutoAnalyze bool
}

type UpdateAssetReq struct {
	ID          string
	Filename    *string
	FileURL     *string
	ProjectID   *string
	Keywords    *string
	Emotion     *string
	LookAndFeel *string
	Tags        *[]string
}

type ListAssetsReq struct {
	ListReq
	Tags      []string
	ProjectID string
}

type ListAssetsRes struct {
	Assets  []domain.Asset
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

// INFRASTRUCTURE

// DownloadedImage — байты изображения, скачанного по ссылке провайдера.
type DownloadedImage struct {
	Data        []byte
	ContentType string
}

// StoreImageReq — запрос на сохранение сгенерированного изображения.
type StoreImageReq struct {
	Name        string
	Data        []byte
	ContentType string
}

// MAPPERS

func NewExploreReq(screenshot, projectID, keywords string) *ExploreReq {
	return &ExploreReq{
		Screenshot: screenshot,
		ProjectID:  projectID,
		Keywords:   keywords,
	}
}

func NewExploreRes(results []domain.ResultItem, sourceMetadata *SourceMetadata) *ExploreRes {
	if results == nil {
		results = []domain.ResultItem{}
	}

	return &ExploreRes{
		Results:        results,
		TotalCount:     len(results),
		SourceMetadata: sourceMetadata,
	}
}

func NewListProjectsRes(projects []domain.Project, total int, req *ListReq) *ListProjectsRes {
	if projects == nil {
		projects = []domain.Project{}
	}

	return &ListProjectsRes{
		Projects: projects,
		Total:    total,
		Limit:    req.Limit,
		Offset:   req.Offset,
		HasMore:  req.Offset+len(projects) < total,
	}
}

func NewListAssetsRes(assets []domain.Asset, total int, req *ListAssetsReq) *ListAssetsRes {
	if assets == nil {
		assets = []domain.Asset{}
	}

	return &ListAssetsRes{
		Assets:  assets,
		Total:   total,
		Limit:   req.Limit,
		Offset:  req.Offset,
		HasMore: req.Offset+len(assets) < total,
	}
}

func NewDownloadedImage(data []byte, contentType string) *DownloadedImage {
	return &DownloadedImage{
		Data:        data,
		ContentType: contentType,
	}
}

func NewStoreImageReq(name string, data []byte, contentType string) *StoreImageReq {
	return &StoreImageReq{
		Name:        name,
		Data:        data,
		ContentType: contentType,
	}
}
