package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExploreUC struct {
	res    *usecase.ExploreRes
	err    error
	called bool
	req    *usecase.ExploreReq
}

func (f *fakeExploreUC) Explore(_ context.Context, req *usecase.ExploreReq) (*usecase.ExploreRes, error) {
	f.called = true
	f.req = req
	return f.res, f.err
}

type fakeProjectUC struct {
	project   *domain.Project
	list      *usecase.ListProjectsRes
	err       error
	createReq *usecase.CreateProjectReq
	updateReq *usecase.UpdateProjectReq
	listReq   *usecase.ListReq
	deletedID string
}

func (f *fakeProjectUC) CreateProject(_ context.Context, req *usecase.CreateProjectReq) (*domain.Project, error) {
	f.createReq = req
	return f.project, f.err
}

func (f *fakeProjectUC) ListProjects(_ context.Context, req *usecase.ListReq) (*usecase.ListProjectsRes, error) {
	f.listReq = req
	return f.list, f.err
}

func (f *fakeProjectUC) GetProject(_ context.Context, _ string) (*domain.Project, error) {
	return f.project, f.err
}

func (f *fakeProjectUC) UpdateProject(_ context.Context, req *usecase.UpdateProjectReq) (*domain.Project, error) {
	f.updateReq = req
	return f.project, f.err
}

func (f *fakeProjectUC) DeleteProject(_ context.Context, id string) error {
	f.deletedID = id
	return f.err
}

type fakeAssetUC struct {
	asset   *domain.Asset
	list    *usecase.ListAssetsRes
	err     error
	listReq *usecase.ListAssetsReq
	getID   string
}

func (f *fakeAssetUC) CreateAsset(_ context.Context, _ *usecase.CreateAssetReq) (*domain.Asset, error) {
	return f.asset, f.err
}

func (f *fakeAssetUC) ListAssets(_ context.Context, req *usecase.ListAssetsReq) (*usecase.ListAssetsRes, error) {
	f.listReq = req
	return f.list, f.err
}

func (f *fakeAssetUC) GetAsset(_ context.Context, id string) (*domain.Asset, error) {
	f.getID = id
	return f.asset, f.err
}

func (f *fakeAssetUC) UpdateAsset(_ context.Context, _ *usecase.UpdateAssetReq) (*domain.Asset, error) {
	return f.asset, f.err
}

func (f *fakeAssetUC) DeleteAsset(_ context.Context, _ string) error {
	return f.err
}

func newTestRouter(ex usecase.ExploreUC, pr usecase.ProjectUC, as usecase.AssetUC) http.Handler {
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNop()).Init(ex, pr, as)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}

	return rec, out
}

func TestExplore_Success(t *testing.T) {
	asset := domain.NewAsset("a-1", "p-1", "f.png", "https://cdn/f.png", domain.DefaultAssetMetadata, nil, nil)
	asset.SimilarityScore = 0.9
	ex := &fakeExploreUC{res: usecase.NewExploreRes(
		[]domain.ResultItem{*domain.NewAssetResult(asset)},
		&usecase.SourceMetadata{AssetsFound: 1, AssetsUsed: 1},
	)}

	rec, body := do(t, newTestRouter(ex, &fakeProjectUC{}, &fakeAssetUC{}), http.MethodPost, "/api/v1/explore", `{"keywords":"minimal","projectId":"p-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "minimal", ex.req.Keywords)
	assert.Equal(t, "p-1", ex.req.ProjectID)
	assert.EqualValues(t, 1, body["total_count"])
}

func TestExplore_MalformedJSON(t *testing.T) {
	ex := &fakeExploreUC{}
	rec, body := do(t, newTestRouter(ex, &fakeProjectUC{}, &fakeAssetUC{}), http.MethodPost, "/api/v1/explore", `{"keywords":`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Explore function failed", body["error"])
	assert.NotEmpty(t, body["details"])
	assert.False(t, ex.called)
}

func TestExplore_ValidationError(t *testing.T) {
	ex := &fakeExploreUC{err: e.Wrap("ExploreUseCase.Explore", e.ErrNoExploreInput)}
	rec, body := do(t, newTestRouter(ex, &fakeProjectUC{}, &fakeAssetUC{}), http.MethodPost, "/api/v1/explore", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrNoExploreInput.Error(), body["error"])
}

func TestExplore_InternalError(t *testing.T) {
	ex := &fakeExploreUC{err: errors.New("boom")}
	rec, body := do(t, newTestRouter(ex, &fakeProjectUC{}, &fakeAssetUC{}), http.MethodPost, "/api/v1/explore", `{"keywords":"k"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Explore function failed", body["error"])
	assert.Equal(t, "boom", body["details"])
}

type panickingExploreUC struct{}

func (panickingExploreUC) Explore(context.Context, *usecase.ExploreReq) (*usecase.ExploreRes, error) {
	panic("nil synthesizer")
}

func TestExplore_PanicReturnsErrorEnvelope(t *testing.T) {
	rec, body := do(t, newTestRouter(panickingExploreUC{}, &fakeProjectUC{}, &fakeAssetUC{}), http.MethodPost, "/api/v1/explore", `{"keywords":"k"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Explore function failed", body["error"])
	assert.Equal(t, "nil synthesizer", body["details"])
}

func TestCORSPreflight(t *testing.T) {
	ex := &fakeExploreUC{}
	rec, _ := do(t, newTestRouter(ex, &fakeProjectUC{}, &fakeAssetUC{}), http.MethodOptions, "/api/v1/explore", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "content-type")
	assert.False(t, ex.called)
}

func TestCreateProject(t *testing.T) {
	project := domain.NewProject("p-1", "Brand", "brief", domain.DefaultProjectMetadata, nil)
	project.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pr := &fakeProjectUC{project: project}

	rec, body := do(t, newTestRouter(&fakeExploreUC{}, pr, &fakeAssetUC{}), http.MethodPost, "/api/v1/projects", `{"name":"Brand","brief":"brief"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Project created successfully", body["message"])
	assert.Equal(t, true, body["auto_analyzed"])
	assert.True(t, pr.createReq.AutoAnalyze)
	assert.Equal(t, "p-1", body["project"].(map[string]any)["id"])
}

func TestCreateProject_Errors(t *testing.T) {
	pr := &fakeProjectUC{err: e.Wrap("ProjectUseCase.CreateProject", e.ErrProjectNameRequired)}
	h := newTestRouter(&fakeExploreUC{}, pr, &fakeAssetUC{})

	rec, body := do(t, h, http.MethodPost, "/api/v1/projects", `{"brief":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrProjectNameRequired.Error(), body["error"])

	rec, _ = do(t, h, http.MethodPost, "/api/v1/projects", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProjects_QueryParams(t *testing.T) {
	pr := &fakeProjectUC{list: usecase.NewListProjectsRes(nil, 0, &usecase.ListReq{Limit: 5, Offset: 10})}
	h := newTestRouter(&fakeExploreUC{}, pr, &fakeAssetUC{})

	rec, body := do(t, h, http.MethodGet, "/api/v1/projects?limit=5&offset=10&search=%20brand%20", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.ListReq{Limit: 5, Offset: 10, Search: "brand"}, *pr.listReq)
	assert.Equal(t, []any{}, body["projects"])
	assert.Equal(t, false, body["hasMore"])

	rec, _ = do(t, h, http.MethodGet, "/api/v1/projects?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProject_NotFoundAndDelete(t *testing.T) {
	pr := &fakeProjectUC{err: e.Wrap("ProjectUseCase.GetProject", e.ErrProjectNotFound)}
	h := newTestRouter(&fakeExploreUC{}, pr, &fakeAssetUC{})

	rec, body := do(t, h, http.MethodGet, "/api/v1/projects/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "project not found", body["error"])

	pr.err = nil
	rec, body = do(t, h, http.MethodDelete, "/api/v1/projects/p-9", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-9", pr.deletedID)
	assert.Equal(t, "Project deleted successfully", body["message"])
}

func TestUpdateProject_PassesPartialFields(t *testing.T) {
	pr := &fakeProjectUC{project: domain.NewProject("p-1", "New", "", domain.DefaultProjectMetadata, nil)}
	h := newTestRouter(&fakeExploreUC{}, pr, &fakeAssetUC{})

	rec, _ := do(t, h, http.MethodPut, "/api/v1/projects/p-1", `{"name":"New","emotion":"calm"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", pr.updateReq.ID)
	require.NotNil(t, pr.updateReq.Name)
	assert.Equal(t, "New", *pr.updateReq.Name)
	require.NotNil(t, pr.updateReq.Emotion)
	assert.Nil(t, pr.updateReq.Keywords)
	assert.Nil(t, pr.updateReq.Brief)
}

func TestListAssets_Filters(t *testing.T) {
	as := &fakeAssetUC{list: usecase.NewListAssetsRes(nil, 0, &usecase.ListAssetsReq{ListReq: usecase.ListReq{Limit: 20}})}
	h := newTestRouter(&fakeExploreUC{}, &fakeProjectUC{}, as)

	rec, body := do(t, h, http.MethodGet, "/api/v1/assets?tags=hero,%20dark,,&project_id=p-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"hero", "dark"}, as.listReq.Tags)
	assert.Equal(t, "p-1", as.listReq.ProjectID)
	assert.Equal(t, "p-1", body["project_id"])
}

func TestAsset_GetAndErrors(t *testing.T) {
	as := &fakeAssetUC{asset: domain.NewAsset("a-1", "p", "f.png", "https://cdn/f.png", domain.DefaultAssetMetadata, nil, nil)}
	h := newTestRouter(&fakeExploreUC{}, &fakeProjectUC{}, as)

	rec, body := do(t, h, http.MethodGet, "/api/v1/assets/a-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a-1", as.getID)
	assert.Equal(t, []any{}, body["asset"].(map[string]any)["tags"])

	as.err = e.Wrap("AssetUseCase.CreateAsset", e.ErrInvalidFileURL)
	rec, _ = do(t, h, http.MethodPost, "/api/v1/assets", `{"filename":"f","file_url":"ftp://x","project_id":"p"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	as.err = errors.New("db down")
	rec, body = do(t, h, http.MethodDelete, "/api/v1/assets/a-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, e.ErrInternalServerError.Error(), body["error"])
}

func TestToHTTPResponse(t *testing.T) {
	code, msg := ToHTTPResponse(e.Wrap("op", e.ErrInvalidPagination))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, e.ErrInvalidPagination.Error(), msg)

	code, _ = ToHTTPResponse(e.Wrap("op", e.ErrAssetNotFound))
	assert.Equal(t, http.StatusNotFound, code)

	code, msg = ToHTTPResponse(errors.New("secret"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, msg, "secret")
}
