package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
)

var (
	errUpstream = errors.New("upstream unavailable")
	testLogger  = logger.NewNop()
)

type fakeExtractor struct {
	mu          sync.Mutex
	screenshot  *domain.Metadata
	asset       *domain.Metadata
	brief       *domain.Metadata
	promptErr   error
	err         error
	promptCalls []string
	briefCalls  int
	assetCalls  int
}

func (f *fakeExtractor) FromScreenshot(_ context.Context, _ string) (*domain.Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.screenshot, nil
}

func (f *fakeExtractor) FromAssetImage(_ context.Context, _ string) (*domain.Metadata, error) {
	f.assetCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.asset, nil
}

func (f *fakeExtractor) FromBrief(_ context.Context, _ string) (*domain.Metadata, error) {
	f.briefCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.brief, nil
}

func (f *fakeExtractor) FromPrompt(_ context.Context, prompt string) (*domain.Metadata, error) {
	f.mu.Lock()
	f.promptCalls = append(f.promptCalls, prompt)
	f.mu.Unlock()

	if f.promptErr != nil {
		return nil, f.promptErr
	}
	return domain.NewMetadata("generated keywords", "joyful", "bold"), nil
}

type fakeEmbedder struct {
	err   error
	calls []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeSimilarityRepo struct {
	assets        []domain.Asset
	err           error
	lastThreshold float64
	lastLimit     int
}

func (f *fakeSimilarityRepo) SearchSimilar(_ context.Context, _ []float32, threshold float64, limit int) ([]domain.Asset, error) {
	f.lastThreshold = threshold
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.assets, nil
}

// fakeSearcher подменяет SimilaritySearch в тестах explore.
type fakeSearcher struct {
	assets  []domain.Asset
	err     error
	queries []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, limit int) ([]domain.Asset, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.assets) > limit {
		return f.assets[:limit], nil
	}
	return f.assets, nil
}

type fakeSynthesizer struct {
	images []domain.GeneratedImage
	err    error
	calls  []int
	bases  []string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, base string, count int) ([]domain.GeneratedImage, error) {
	f.calls = append(f.calls, count)
	f.bases = append(f.bases, base)
	if f.err != nil {
		return []domain.GeneratedImage{}, f.err
	}
	if f.images != nil {
		return f.images, nil
	}

	images := make([]domain.GeneratedImage, 0, count)
	for i := 0; i < count; i++ {
		images = append(images, *domain.NewGeneratedImage(
			"https://storage.local/img.png",
			DefaultImagePromptPrefix+base,
			"https://provider.local/img.png",
			base,
			false,
		))
	}
	return images, nil
}

type fakeProjectFinder struct {
	project *domain.Project
	err     error
}

func (f *fakeProjectFinder) GetProject(_ context.Context, _ string) (*domain.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.project, nil
}

type fakeVariations struct {
	variations []string
	err        error
}

func (f *fakeVariations) Variations(_ context.Context, _ string, _ int) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.variations, nil
}

// fakeImageGenerator отдаёт ошибки по очереди, а когда они кончаются, отдаёт успех.
type fakeImageGenerator struct {
	failures    map[string]int // промпт -> сколько раз упасть
	alwaysFail  bool
	emptyURL    bool
	downloadErr error
	prompts     []string
}

func (f *fakeImageGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.alwaysFail {
		return "", errUpstream
	}
	if f.failures[prompt] > 0 {
		f.failures[prompt]--
		return "", errUpstream
	}
	if f.emptyURL {
		return "", nil
	}
	return "https://provider.local/" + prompt, nil
}

func (f *fakeImageGenerator) Download(_ context.Context, _ string) (*DownloadedImage, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return NewDownloadedImage([]byte("png"), "image/png"), nil
}

type fakeImageStorage struct {
	err   error
	names []string
}

func (f *fakeImageStorage) StoreImage(_ context.Context, req *StoreImageReq) (string, error) {
	f.names = append(f.names, req.Name)
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.local/" + req.Name, nil
}

type recordingSleeper struct {
	delays []time.Duration
	err    error
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return r.err
}

type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeOutboxRepo struct {
	events []*OutboxEvent
	err    error
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, _ int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(_ context.Context, _ int64) error {
	return nil
}

type fakeProjectRepo struct {
	projects map[string]domain.Project
	total    int
	listReq  *ListReq
	getCalls int
}

func newFakeProjectRepo(projects ...domain.Project) *fakeProjectRepo {
	r := &fakeProjectRepo{projects: map[string]domain.Project{}}
	for _, p := range projects {
		r.projects[p.ID] = p
	}
	return r
}

func (f *fakeProjectRepo) Create(_ context.Context, project *domain.Project) (*domain.Project, error) {
	f.projects[project.ID] = *project
	created := *project
	return &created, nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	f.getCalls++
	p, ok := f.projects[id]
	if !ok {
		return nil, e.ErrProjectNotFound
	}
	return &p, nil
}

func (f *fakeProjectRepo) List(_ context.Context, req *ListReq) ([]domain.Project, int, error) {
	f.listReq = req
	result := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		result = append(result, p)
	}
	if f.total > 0 {
		return result, f.total, nil
	}
	return result, len(result), nil
}

func (f *fakeProjectRepo) Update(_ context.Context, project *domain.Project) (*domain.Project, error) {
	if _, ok := f.projects[project.ID]; !ok {
		return nil, e.ErrProjectNotFound
	}
	f.projects[project.ID] = *project
	updated := *project
	return &updated, nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return e.ErrProjectNotFound
	}
	delete(f.projects, id)
	return nil
}

type fakeProjectCache struct {
	mu      sync.Mutex
	cached  map[string]domain.Project
	deleted []string
	setCh   chan string
	onSet   func()
}

func newFakeProjectCache() *fakeProjectCache {
	return &fakeProjectCache{cached: map[string]domain.Project{}, setCh: make(chan string, 8)}
}

func (f *fakeProjectCache) GetProject(_ context.Context, id string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.cached[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProjectCache) SetProject(_ context.Context, project *domain.Project) error {
	f.mu.Lock()
	f.cached[project.ID] = *project
	f.mu.Unlock()
	if f.onSet != nil {
		f.onSet()
	}
	f.setCh <- project.ID
	return nil
}

func (f *fakeProjectCache) DeleteProject(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cached, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAssetRepo struct {
	assets  map[string]domain.Asset
	listReq *ListAssetsReq
}

func newFakeAssetRepo(assets ...domain.Asset) *fakeAssetRepo {
	r := &fakeAssetRepo{assets: map[string]domain.Asset{}}
	for _, a := range assets {
		r.assets[a.ID] = a
	}
	return r
}

func (f *fakeAssetRepo) Create(_ context.Context, asset *domain.Asset) (*domain.Asset, error) {
	f.assets[asset.ID] = *asset
	created := *asset
	return &created, nil
}

func (f *fakeAssetRepo) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return nil, e.ErrAssetNotFound
	}
	return &a, nil
}

func (f *fakeAssetRepo) List(_ context.Context, req *ListAssetsReq) ([]domain.Asset, int, error) {
	f.listReq = req
	result := make([]domain.Asset, 0, len(f.assets))
	for _, a := range f.assets {
		result = append(result, a)
	}
	return result, len(result), nil
}

func (f *fakeAssetRepo) Update(_ context.Context, asset *domain.Asset) (*domain.Asset, error) {
	if _, ok := f.assets[asset.ID]; !ok {
		return nil, e.ErrAssetNotFound
	}
	f.assets[asset.ID] = *asset
	updated := *asset
	return &updated, nil
}

func (f *fakeAssetRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.assets[id]; !ok {
		return e.ErrAssetNotFound
	}
	delete(f.assets, id)
	return nil
}

type fakeEmbeddingRepo struct {
	upserted []domain.Embedding
	deleted  []string
	err      error
}

func (f *fakeEmbeddingRepo) Upsert(_ context.Context, embeddings []domain.Embedding) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, embeddings...)
	return nil
}

func (f *fakeEmbeddingRepo) Delete(_ context.Context, ids []string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

func testAsset(id string, score float64) domain.Asset {
	return domain.Asset{
		ID:              id,
		FileURL:         "https://cdn.local/" + id + ".png",
		Metadata:        domain.Metadata{Keywords: "kw " + id, Emotion: "calm", LookAndFeel: "flat"},
		SimilarityScore: score,
	}
}

func testAssets(n int) []domain.Asset {
	assets := make([]domain.Asset, 0, n)
	for i := 0; i < n; i++ {
		assets = append(assets, testAsset(string(rune('a'+i)), 0.9-float64(i)*0.05))
	}
	return assets
}
