package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 123_000_000, time.UTC)

type synthDeps struct {
	variations *fakeVariations
	images     *fakeImageGenerator
	storage    *fakeImageStorage
	sleeper    *recordingSleeper
}

func newSynthDeps(variations ...string) *synthDeps {
	return &synthDeps{
		variations: &fakeVariations{variations: variations},
		images:     &fakeImageGenerator{failures: map[string]int{}},
		storage:    &fakeImageStorage{},
		sleeper:    &recordingSleeper{},
	}
}

func (d *synthDeps) synth() *Synthesizer {
	s := d.synthWithRandomIDs()
	s.newID = func() string { return "batch" }
	return s
}

func (d *synthDeps) synthWithRandomIDs() *Synthesizer {
	return NewSynthesizer(d.variations, d.images, d.storage, SynthesizerCfg{
		MaxRetries: DefaultImageMaxRetries,
		RetryDelay: DefaultImageRetryDelay,
	}, testLogger).
		WithSleeper(d.sleeper.sleep).
		WithClock(func() time.Time { return fixedNow })
}

func TestSlot_Advance(t *testing.T) {
	sl := newSlot(0, "v")
	assert.Equal(t, "pending", sl.state.String())

	sl.advance("", errUpstream, 2)
	assert.Equal(t, slotRetrying, sl.state)
	assert.Equal(t, 1, sl.retries)

	sl.advance("", errUpstream, 2)
	assert.Equal(t, slotRetrying, sl.state)
	assert.Equal(t, 2, sl.retries)

	sl.advance("", errUpstream, 2)
	assert.Equal(t, slotDropped, sl.state)
	assert.True(t, sl.done())
	assert.ErrorIs(t, sl.lastErr, errUpstream)

	ok := newSlot(1, "v")
	ok.advance("https://p/1", nil, 2)
	assert.Equal(t, slotSucceeded, ok.state)
	assert.Equal(t, "https://p/1", ok.providerURL)
	assert.Equal(t, "succeeded", ok.state.String())
}

func TestSynthesize_AllSucceed(t *testing.T) {
	deps := newSynthDeps("v1", "v2", "v3")

	images, err := deps.synth().Synthesize(context.Background(), "base", 3)
	require.NoError(t, err)
	require.Len(t, images, 3)

	for i, img := range images {
		v := deps.variations.variations[i]
		assert.Equal(t, DefaultImagePromptPrefix+v, img.Prompt, "recorded prompt has no trailing dot")
		assert.Equal(t, v, img.MetadataVariation)
		assert.False(t, img.Temporary)
		assert.Equal(t, "https://provider.local/"+DefaultImagePromptPrefix+v+".", img.OriginalURL)
	}

	assert.Equal(t, []string{
		"Create a design inspiration based on: v1.",
		"Create a design inspiration based on: v2.",
		"Create a design inspiration based on: v3.",
	}, deps.images.prompts)
	assert.Equal(t, []string{
		"dalle-generated-2024-05-01T10-00-00-123Z-batch-1.png",
		"dalle-generated-2024-05-01T10-00-00-123Z-batch-2.png",
		"dalle-generated-2024-05-01T10-00-00-123Z-batch-3.png",
	}, deps.storage.names)
	assert.Equal(t, "https://storage.local/dalle-generated-2024-05-01T10-00-00-123Z-batch-1.png", images[0].URL)
	assert.Empty(t, deps.sleeper.delays)
}

func TestSynthesize_ObjectNamesUniqueAcrossRequests(t *testing.T) {
	first := newSynthDeps("v1", "v2")
	second := newSynthDeps("v1", "v2")
	second.storage = first.storage

	_, err := first.synthWithRandomIDs().Synthesize(context.Background(), "base", 2)
	require.NoError(t, err)
	_, err = second.synthWithRandomIDs().Synthesize(context.Background(), "base", 2)
	require.NoError(t, err)

	require.Len(t, first.storage.names, 4)
	seen := map[string]bool{}
	for _, name := range first.storage.names {
		assert.False(t, seen[name], "object %s stored twice", name)
		seen[name] = true
		assert.True(t, strings.HasPrefix(name, "dalle-generated-2024-05-01T10-00-00-123Z-"))
	}
}

func TestSynthesize_RetryDelaysGrowLinearly(t *testing.T) {
	deps := newSynthDeps("v1")
	deps.images.failures["Create a design inspiration based on: v1."] = 2

	images, err := deps.synth().Synthesize(context.Background(), "base", 1)
	require.NoError(t, err)
	require.Len(t, images, 1)

	assert.Len(t, deps.images.prompts, 3)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, deps.sleeper.delays)
}

func TestSynthesize_SlotDroppedAfterThreeAttempts(t *testing.T) {
	deps := newSynthDeps("v1", "v2")
	deps.images.failures["Create a design inspiration based on: v1."] = 3

	images, err := deps.synth().Synthesize(context.Background(), "base", 2)
	require.NoError(t, err)

	require.Len(t, images, 1)
	assert.Equal(t, "v2", images[0].MetadataVariation)
	// 3 попытки для первого слота и одна для второго
	assert.Len(t, deps.images.prompts, 4)
}

func TestSynthesize_AllFail(t *testing.T) {
	deps := newSynthDeps("v1", "v2")
	deps.images.alwaysFail = true

	images, err := deps.synth().Synthesize(context.Background(), "base", 2)
	require.ErrorIs(t, err, e.ErrGeneration)
	assert.Empty(t, images)
	assert.Len(t, deps.images.prompts, 6)
}

func TestSynthesize_EmptyURLCountsAsFailure(t *testing.T) {
	deps := newSynthDeps("v1")
	deps.images.emptyURL = true

	images, err := deps.synth().Synthesize(context.Background(), "base", 1)
	require.ErrorIs(t, err, e.ErrGeneration)
	assert.Empty(t, images)
	assert.Len(t, deps.images.prompts, 3)
}

func TestSynthesize_CancelledWhileWaiting(t *testing.T) {
	deps := newSynthDeps("v1")
	deps.images.alwaysFail = true
	deps.sleeper.err = context.Canceled

	_, err := deps.synth().Synthesize(context.Background(), "base", 1)
	require.ErrorIs(t, err, e.ErrGeneration)
	assert.Len(t, deps.images.prompts, 1)
}

func TestSynthesize_VariationsFallback(t *testing.T) {
	deps := newSynthDeps()
	deps.variations.err = errUpstream

	images, err := deps.synth().Synthesize(context.Background(), "base", 3)
	require.NoError(t, err)
	require.Len(t, images, 3)

	assert.Equal(t, "base", images[0].MetadataVariation)
	assert.Equal(t, "base - variation 2", images[1].MetadataVariation)
	assert.Equal(t, "base - variation 3", images[2].MetadataVariation)
}

func TestSynthesize_VariationsPaddedAndTruncated(t *testing.T) {
	deps := newSynthDeps("first", "second")

	images, err := deps.synth().Synthesize(context.Background(), "base", 4)
	require.NoError(t, err)
	require.Len(t, images, 4)
	assert.Equal(t, "first", images[2].MetadataVariation)
	assert.Equal(t, "first", images[3].MetadataVariation)

	deps = newSynthDeps("a", "b", "c", "d")
	images, err = deps.synth().Synthesize(context.Background(), "base", 2)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "b", images[1].MetadataVariation)
}

func TestSynthesize_PersistFallbackKeepsProviderURL(t *testing.T) {
	deps := newSynthDeps("v1")
	deps.storage.err = errUpstream

	images, err := deps.synth().Synthesize(context.Background(), "base", 1)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.True(t, images[0].Temporary)
	assert.Equal(t, images[0].OriginalURL, images[0].URL)

	deps = newSynthDeps("v1")
	deps.images.downloadErr = errUpstream

	images, err = deps.synth().Synthesize(context.Background(), "base", 1)
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.True(t, images[0].Temporary)
	assert.Empty(t, deps.storage.names)
}

func TestSynthesize_ZeroCount(t *testing.T) {
	deps := newSynthDeps("v1")

	images, err := deps.synth().Synthesize(context.Background(), "base", 0)
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Empty(t, deps.images.prompts)
}

func TestFallbackVariations(t *testing.T) {
	assert.Equal(t, []string{"x"}, FallbackVariations("x", 1))
	assert.Equal(t, []string{"x", "x - variation 2"}, FallbackVariations("x", 2))
	assert.Empty(t, FallbackVariations("x", 0))
}
