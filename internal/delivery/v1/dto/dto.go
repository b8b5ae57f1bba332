// Package dto описывает JSON-контракт API и преобразование из сущностей usecase.
// Используется и HTTP, и gRPC (через google.protobuf.Struct).
package dto

import (
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
)

type Metadata struct {
	Keywords    string `json:"keywords"`
	Emotion     string `json:"emotion"`
	LookAndFeel string `json:"look_and_feel"`
}

// EXPLORE

type ExploreRequest struct {
	Screenshot string `json:"screenshot,omitempty"`
	ProjectID  string `json:"projectId,omitempty"`
	Keywords   string `json:"keywords,omitempty"`
}

type ExploreResponse struct {
	Results        []ResultItem   `json:"results"`
	TotalCount     int            `json:"total_count"`
	SourceMetadata SourceMetadata `json:"source_metadata"`
}

type ResultItem struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	ImageURL          string   `json:"image_url"`
	Metadata          Metadata `json:"metadata"`
	SimilarityScore   *float64 `json:"similarity_score,omitempty"`
	PromptUsed        string   `json:"prompt_used,omitempty"`
	MetadataVariation string   `json:"metadata_variation,omitempty"`
}

type SourceMetadata struct {
	ScreenshotAnalysis      *Metadata `json:"screenshot_analysis,omitempty"`
	ScreenshotAnalysisError string    `json:"screenshot_analysis_error,omitempty"`
	ProjectMetadata         *Metadata `json:"project_metadata,omitempty"`
	ProjectFetchError       string    `json:"project_fetch_error,omitempty"`
	ProjectError            string    `json:"project_error,omitempty"`
	AssetSearchError        string    `json:"asset_search_error,omitempty"`
	ImageGenerationError    string    `json:"image_generation_error,omitempty"`
	CombinedSearchQuery     string    `json:"combined_search_query,omitempty"`
	AssetsFound             int       `json:"assets_found"`
	AssetsUsed              int       `json:"assets_used"`
	ImagesGenerated         int       `json:"images_generated"`
	TemporaryImages         int       `json:"temporary_images,omitempty"`
	ImageExpirationWarning  string    `json:"image_expiration_warning,omitempty"`
	TemporarySolutionNote   string    `json:"temporary_solution_note,omitempty"`
	StorageSuccessNote      string    `json:"storage_success_note,omitempty"`
}

// PROJECTS

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Brief       string `json:"brief"`
	Keywords    string `json:"keywords"`
	Emotion     string `json:"emotion"`
	LookAndFeel string `json:"look_and_feel"`
	AutoAnalyze *bool  `json:"auto_analyze,omitempty"` // по умолчанию true
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Brief       *string `json:"brief,omitempty"`
	Keywords    *string `json:"keywords,omitempty"`
	Emotion     *string `json:"emotion,omitempty"`
	LookAndFeel *string `json:"look_and_feel,omitempty"`
}

type Project struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Brief       string     `json:"brief"`
	Keywords    string     `json:"keywords"`
	Emotion     string     `json:"emotion"`
	LookAndFeel string     `json:"look_and_feel"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ProjectResponse struct {
	Project      Project `json:"project"`
	Message      string  `json:"message,omitempty"`
	AutoAnalyzed *bool   `json:"auto_analyzed,omitempty"`
}

type ListProjectsResponse struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
	HasMore  bool      `json:"hasMore"`
}

// ASSETS

type CreateAssetRequest struct {
	Filename    string   `json:"filename"`
	FileURL     string   `json:"file_url"`
	ProjectID   string   `json:"project_id"`
	Keywords    string   `json:"keywords"`
	Emotion     string   `json:"emotion"`
	LookAndFeel string   `json:"look_and_feel"`
	Tags        []string `json:"tags"`
	AutoAnalyze *bool    `json:"auto_analyze,omitempty"`
}

type UpdateAssetRequest struct {
	Filename    *string   `json:"filename,omitempty"`
	FileURL     *string   `json:"file_url,omitempty"`
	ProjectID   *string   `json:"project_id,omitempty"`
	Keywords    *string   `json:"keywords,omitempty"`
	Emotion     *string   `json:"emotion,omitempty"`
	LookAndFeel *string   `json:"look_and_feel,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

type Asset struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Filename    string     `json:"filename"`
	FileURL     string     `json:"file_url"`
	Keywords    string     `json:"keywords"`
	Emotion     string     `json:"emotion"`
	LookAndFeel string     `json:"look_and_feel"`
	Tags        []string   `json:"tags"`
	IsPublic    bool       `json:"is_public"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type AssetResponse struct {
	Asset        Asset  `json:"asset"`
	Message      string `json:"message,omitempty"`
	AutoAnalyzed *bool  `json:"auto_analyzed,omitempty"`
}

type ListAssetsResponse struct {
	Assets    []Asset `json:"assets"`
	Total     int     `json:"total"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	ProjectID *string `json:"project_id"`
	HasMore   bool    `json:"hasMore"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// MAPPERS

func (r *ExploreRequest) ToUseCase() *usecase.ExploreReq {
	return usecase.NewExploreReq(r.Screenshot, r.ProjectID, r.Keywords)
}

func NewMetadata(m domain.Metadata) Metadata {
	return Metadata{
		Keywords:    m.Keywords,
		Emotion:     m.Emotion,
		LookAndFeel: m.LookAndFeel,
	}
}

func newMetadataPtr(m *domain.Metadata) *Metadata {
	if m == nil {
		return nil
	}

	md := NewMetadata(*m)
	return &md
}

func NewResultItem(item *domain.ResultItem) ResultItem {
	res := ResultItem{
		ID:       item.ID,
		Type:     string(item.Type),
		ImageURL: item.ImageURL,
		Metadata: NewMetadata(item.Metadata),
	}

	switch item.Type {
	case domain.ResultTypeAsset:
		score := item.SimilarityScore
		res.SimilarityScore = &score
	case domain.ResultTypeGenerated:
		res.PromptUsed = item.PromptUsed
		res.MetadataVariation = item.MetadataVariation
	}

	return res
}

func NewExploreResponse(res *usecase.ExploreRes) *ExploreResponse {
	results := make([]ResultItem, 0, len(res.Results))
	for i := range res.Results {
		results = append(results, NewResultItem(&res.Results[i]))
	}

	out := &ExploreResponse{
		Results:    results,
		TotalCount: res.TotalCount,
	}

	if m := res.SourceMetadata; m != nil {
		out.SourceMetadata = SourceMetadata{
			ScreenshotAnalysis:      newMetadataPtr(m.ScreenshotAnalysis),
			ScreenshotAnalysisError: m.ScreenshotAnalysisError,
			ProjectMetadata:         newMetadataPtr(m.ProjectMetadata),
			ProjectFetchError:       m.ProjectFetchError,
			ProjectError:            m.ProjectError,
			AssetSearchError:        m.AssetSearchError,
			ImageGenerationError:    m.ImageGenerationError,
			CombinedSearchQuery:     m.CombinedSearchQuery,
			AssetsFound:             m.AssetsFound,
			AssetsUsed:              m.AssetsUsed,
			ImagesGenerated:         m.ImagesGenerated,
			TemporaryImages:         m.TemporaryImages,
			ImageExpirationWarning:  m.ImageExpirationWarning,
			TemporarySolutionNote:   m.TemporarySolutionNote,
			StorageSuccessNote:      m.StorageSuccessNote,
		}
	}

	return out
}

func (r *CreateProjectRequest) ToUseCase() *usecase.CreateProjectReq {
	return &usecase.CreateProjectReq{
		Name:        r.Name,
		Brief:       r.Brief,
		Metadata:    domain.Metadata{Keywords: r.Keywords, Emotion: r.Emotion, LookAndFeel: r.LookAndFeel},
		AutoAnalyze: boolOrTrue(r.AutoAnalyze),
	}
}

// AutoAnalyzed: бриф отправлялся на анализ, если он есть и тройка задана не полностью.
func (r *CreateProjectRequest) AutoAnalyzed() bool {
	m := domain.Metadata{Keywords: r.Keywords, Emotion: r.Emotion, LookAndFeel: r.LookAndFeel}
	return boolOrTrue(r.AutoAnalyze) && r.Brief != "" && !m.IsComplete()
}

func (r *UpdateProjectRequest) ToUseCase(id string) *usecase.UpdateProjectReq {
	return &usecase.UpdateProjectReq{
		ID:          id,
		Name:        r.Name,
		Brief:       r.Brief,
		Keywords:    r.Keywords,
		Emotion:     r.Emotion,
		LookAndFeel: r.LookAndFeel,
	}
}

func NewProject(p *domain.Project) Project {
	return Project{
		ID:          p.ID,
		Name:        p.Name,
		Brief:       p.Brief,
		Keywords:    p.Metadata.Keywords,
		Emotion:     p.Metadata.Emotion,
		LookAndFeel: p.Metadata.LookAndFeel,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewListProjectsResponse(res *usecase.ListProjectsRes) *ListProjectsResponse {
	projects := make([]Project, 0, len(res.Projects))
	for i := range res.Projects {
		projects = append(projects, NewProject(&res.Projects[i]))
	}

	return &ListProjectsResponse{
		Projects: projects,
		Total:    res.Total,
		Limit:    res.Limit,
		Offset:   res.Offset,
		HasMore:  res.HasMore,
	}
}

func (r *CreateAssetRequest) ToUseCase() *usecase.CreateAssetReq {
	return &usecase.CreateAssetReq{
		Filename:    r.Filename,
		FileURL:     r.FileURL,
		ProjectID:   r.ProjectID,
		Metadata:    domain.Metadata{Keywords: r.Keywords, Emotion: r.Emotion, LookAndFeel: r.LookAndFeel},
		Tags:        r.Tags,
		AutoAnalyze: boolOrTrue(r.AutoAnalyze),
	}
}

func (r *CreateAssetRequest) AutoAnalyzed() bool {
	m := domain.Metadata{Keywords: r.Keywords, Emotion: r.Emotion, LookAndFeel: r.LookAndFeel}
	return boolOrTrue(r.AutoAnalyze) && !m.IsComplete()
}

func (r *UpdateAssetRequest) ToUseCase(id string) *usecase.UpdateAssetReq {
	return &usecase.UpdateAssetReq{
		ID:          id,
		Filename:    r.Filename,
		FileURL:     r.FileURL,
		ProjectID:   r.ProjectID,
		Keywords:    r.Keywords,
		Emotion:     r.Emotion,
		LookAndFeel: r.LookAndFeel,
		Tags:        r.Tags,
	}
}

func NewAsset(a *domain.Asset) Asset {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}

	return Asset{
		ID:          a.ID,
		ProjectID:   a.ProjectID,
		Filename:    a.Filename,
		FileURL:     a.FileURL,
		Keywords:    a.Metadata.Keywords,
		Emotion:     a.Metadata.Emotion,
		LookAndFeel: a.Metadata.LookAndFeel,
		Tags:        tags,
		IsPublic:    a.IsPublic,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewListAssetsResponse(res *usecase.ListAssetsRes, projectID string) *ListAssetsResponse {
	assets := make([]Asset, 0, len(res.Assets))
	for i := range res.Assets {
		assets = append(assets, NewAsset(&res.Assets[i]))
	}

	var pid *string
	if projectID != "" {
		pid = &projectID
	}

	return &ListAssetsResponse{
		Assets:    assets,
		Total:     res.Total,
		Limit:     res.Limit,
		Offset:    res.Offset,
		ProjectID: pid,
		HasMore:   res.HasMore,
	}
}

func boolOrTrue(b *bool) bool {
	return b == nil || *b
}
