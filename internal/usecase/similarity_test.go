package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilaritySearch_FiltersAndSorts(t *testing.T) {
	embedder := &fakeEmbedder{}
	repo := &fakeSimilarityRepo{assets: []domain.Asset{
		testAsset("low", 0.3),
		testAsset("mid", 0.7),
		testAsset("top", 0.95),
		testAsset("edge", 0.5),
	}}

	s := NewSimilaritySearch(embedder, repo, 0, testLogger)
	assets, err := s.Search(context.Background(), "logo", 6)
	require.NoError(t, err)

	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	// score, равный порогу, не проходит: сравнение строгое, как в search_similar_assets
	assert.Equal(t, []string{"top", "mid"}, ids)
	assert.Equal(t, DefaultMatchThreshold, repo.lastThreshold)
	assert.Equal(t, 6, repo.lastLimit)
	assert.Equal(t, []string{"logo"}, embedder.calls)
}

func TestSimilaritySearch_Truncates(t *testing.T) {
	repo := &fakeSimilarityRepo{assets: testAssets(8)}

	assets, err := NewSimilaritySearch(&fakeEmbedder{}, repo, 0.5, testLogger).Search(context.Background(), "q", 6)
	require.NoError(t, err)
	assert.Len(t, assets, 6)
}

func TestSimilaritySearch_Errors(t *testing.T) {
	_, err := NewSimilaritySearch(&fakeEmbedder{}, &fakeSimilarityRepo{}, 0, testLogger).Search(context.Background(), "  ", 6)
	require.ErrorIs(t, err, e.ErrSearch)

	_, err = NewSimilaritySearch(&fakeEmbedder{err: errUpstream}, &fakeSimilarityRepo{}, 0, testLogger).Search(context.Background(), "q", 6)
	require.ErrorIs(t, err, e.ErrSearch)
	require.ErrorIs(t, err, errUpstream)

	_, err = NewSimilaritySearch(&fakeEmbedder{}, &fakeSimilarityRepo{err: errUpstream}, 0, testLogger).Search(context.Background(), "q", 6)
	require.ErrorIs(t, err, e.ErrSearch)
}
