package converter

import (
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVector() []float32 {
	v := make([]float32, VectorDimensions)
	v[0], v[1] = 0.1, 0.2
	return v
}

func TestAssetConverter(t *testing.T) {
	conv := NewAssetConverterImpl()
	asset := domain.NewAsset("a-1", "p-1", "hero.png", "https://cdn/hero.png",
		domain.Metadata{Keywords: "hero", Emotion: "bold", LookAndFeel: "flat"}, nil, testVector())

	model := conv.ToModel(asset)
	require.NotNil(t, model.CombinedVector)
	assert.Equal(t, "hero bold flat", model.CombinedMetadata)
	assert.Equal(t, []string{}, model.Tags)

	back := conv.ToEntity(model)
	assert.Equal(t, asset.Metadata, back.Metadata)
	assert.Equal(t, testVector(), back.Embedding)
	assert.True(t, back.IsPublic)
}

func TestToVector_DimensionMismatch(t *testing.T) {
	assert.Nil(t, ToVector(make([]float32, 768)))
	assert.Nil(t, ToVector(nil))
	require.NotNil(t, ToVector(testVector()))
}

func TestAssetConverter_NilVector(t *testing.T) {
	conv := NewAssetConverterImpl()

	model := conv.ToModel(&domain.Asset{ID: "a"})
	assert.Nil(t, model.CombinedVector)
	assert.Nil(t, conv.ToEntity(model).Embedding)
	assert.Len(t, conv.ToArrEntity([]*AssetModel{model, nil}), 1)
}

func TestProjectConverter(t *testing.T) {
	conv := NewProjectConverterImpl()
	now := time.Now()
	p := &domain.Project{ID: "p", Name: "n", Brief: "b", Metadata: domain.DefaultProjectMetadata, UpdatedAt: &now}

	back := conv.ToEntity(conv.ToModel(p))
	assert.Equal(t, p, back)
}

func TestOutboxEventConverter(t *testing.T) {
	conv := NewOutboxEventConverterImpl()
	ev := &usecase.OutboxEvent{ID: 7, EventID: "e", EventType: usecase.AssetCreated, AggregateID: "a", Status: usecase.Pending}

	model := conv.ToModel(ev)
	assert.Equal(t, "asset.created", model.EventType)
	assert.Equal(t, "pending", model.Status)
	assert.Equal(t, []*usecase.OutboxEvent{ev}, conv.ToArrEntity([]*OutboxEventModel{model}))
}
