package dto

import (
	"encoding/json"
	"testing"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExploreResponse_JSONShape(t *testing.T) {
	asset := domain.NewAsset("a-1", "p", "f.png", "https://cdn/f.png", domain.DefaultAssetMetadata, nil, nil)
	asset.SimilarityScore = 0.82
	gen := domain.NewGeneratedImage("https://storage/g.png", "Create a design inspiration based on: v1", "https://provider/g.png", "v1", false)

	res := usecase.NewExploreRes([]domain.ResultItem{
		*domain.NewAssetResult(asset),
		*domain.NewGeneratedResult("g-1", gen, domain.Metadata{Keywords: "k", Emotion: "e", LookAndFeel: "l"}),
	}, &usecase.SourceMetadata{AssetsFound: 1, AssetsUsed: 1, ImagesGenerated: 1, CombinedSearchQuery: "q"})

	data, err := json.Marshal(NewExploreResponse(res))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.EqualValues(t, 2, got["total_count"])
	results := got["results"].([]any)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	assert.Equal(t, "asset", first["type"])
	assert.Equal(t, 0.82, first["similarity_score"])
	assert.NotContains(t, first, "prompt_used")

	second := results[1].(map[string]any)
	assert.Equal(t, "generated", second["type"])
	assert.Equal(t, "v1", second["metadata_variation"])
	assert.NotContains(t, second, "similarity_score")
	assert.Equal(t, map[string]any{"keywords": "k", "emotion": "e", "look_and_feel": "l"}, second["metadata"])

	meta := got["source_metadata"].(map[string]any)
	assert.Equal(t, "q", meta["combined_search_query"])
	assert.EqualValues(t, 1, meta["assets_found"])
	assert.NotContains(t, meta, "asset_search_error")
	assert.NotContains(t, meta, "temporary_images")
}

func TestNewExploreResponse_EmptyResultsIsArray(t *testing.T) {
	data, err := json.Marshal(NewExploreResponse(usecase.NewExploreRes(nil, &usecase.SourceMetadata{})))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"results":[]`)
	assert.Contains(t, string(data), `"total_count":0`)
}

func TestCreateRequestsDefaultToAutoAnalyze(t *testing.T) {
	var p CreateProjectRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"n","brief":"b","keywords":"k"}`), &p))
	assert.True(t, p.ToUseCase().AutoAnalyze)
	assert.True(t, p.AutoAnalyzed())

	require.NoError(t, json.Unmarshal([]byte(`{"name":"n","brief":"b","auto_analyze":false}`), &p))
	assert.False(t, p.ToUseCase().AutoAnalyze)
	assert.False(t, p.AutoAnalyzed())

	a := CreateAssetRequest{Keywords: "k", Emotion: "e", LookAndFeel: "l"}
	assert.False(t, a.AutoAnalyzed())
}

func TestNewListAssetsResponse(t *testing.T) {
	res := usecase.NewListAssetsRes(nil, 0, &usecase.ListAssetsReq{ListReq: usecase.ListReq{Limit: 20}})

	out := NewListAssetsResponse(res, "")
	assert.Nil(t, out.ProjectID)
	assert.Equal(t, []Asset{}, out.Assets)

	out = NewListAssetsResponse(res, "p-1")
	require.NotNil(t, out.ProjectID)
	assert.Equal(t, "p-1", *out.ProjectID)
}
