package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/google/uuid"
)

const (
	DefaultImagePromptPrefix = "Create a design inspiration based on: "
	DefaultImageMaxRetries   = 2
	DefaultImageRetryDelay   = time.Second

	generatedImagePrefix      = "dalle-generated"
	generatedImageContentType = "image/png"
)

// SynthesizerCfg: параметры генерации изображений.
type SynthesizerCfg struct {
	PromptPrefix string
	MaxRetries   int           // дополнительные попытки после первой
	RetryDelay   time.Duration // задержка умножается на номер повтора
}

// Sleeper ждёт d или отмены контекста.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext: Sleeper по умолчанию.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Synthesizer генерирует набор изображений по объединённым метаданным запроса.
type Synthesizer struct {
	variations VariationGenerator
	images     ImageGenerator
	storage    ImageStorage
	cfg        SynthesizerCfg
	sleep      Sleeper
	now        func() time.Time
	newID      func() string
	logger     logger.Logger
}

func NewSynthesizer(
	variations VariationGenerator,
	images ImageGenerator,
	storage ImageStorage,
	cfg SynthesizerCfg,
	logger logger.Logger,
) *Synthesizer {
	if cfg.PromptPrefix == "" {
		cfg.PromptPrefix = DefaultImagePromptPrefix
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Synthesizer{
		variations: variations,
		images:     images,
		storage:    storage,
		cfg:        cfg,
		sleep:      SleepContext,
		now:        time.Now,
		newID:      uuid.NewString,
		logger:     logger,
	}
}

// WithSleeper подменяет ожидание между повторами (для тестов).
func (s *Synthesizer) WithSleeper(sleep Sleeper) *Synthesizer {
	s.sleep = sleep
	return s
}

// WithClock подменяет источник времени, из которого строятся имена файлов.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Synthesize генерирует до count изображений. Слоты обрабатываются последовательно,
// variations[i] идёт в слот i. Слот, исчерпавший попытки, выбрасывается.
// Если не удалось получить ни одного изображения, возвращается ошибка с e.ErrGeneration.
func (s *Synthesizer) Synthesize(ctx context.Context, base string, count int) ([]domain.GeneratedImage, error) {
	const op = "Synthesizer.Synthesize"

	if count <= 0 {
		return []domain.GeneratedImage{}, nil
	}

	variations := s.buildVariations(ctx, base, count)
	// один id на вызов: имена объектов разных запросов не пересекаются
	batchID := s.newID()

	images := make([]domain.GeneratedImage, 0, count)
	var lastErr error
	for i := 0; i < count; i++ {
		sl := newSlot(i, variations[i])
		s.runSlot(ctx, sl)

		if sl.state != slotSucceeded {
			lastErr = sl.lastErr
			s.logger.Warnf("%s: could not generate image %d after %d retries: %v", op, i+1, sl.retries, sl.lastErr)
			continue
		}

		images = append(images, *s.persist(ctx, batchID, sl))
	}

	s.logger.Infof("%s: generated %d out of %d requested images", op, len(images), count)

	if len(images) == 0 {
		return images, e.Wrap(op, fmt.Errorf("%w: no image generated out of %d: %v", e.ErrGeneration, count, lastErr))
	}

	return images, nil
}

// buildVariations возвращает ровно count вариаций. При ошибке генератора
// используется детерминированная замена: base, "base - variation 2", "base - variation 3"...
func (s *Synthesizer) buildVariations(ctx context.Context, base string, count int) []string {
	variations, err := s.variations.Variations(ctx, base, count)
	if err != nil || len(variations) == 0 {
		if err != nil {
			s.logger.Warnf("metadata variations failed, using fallback: %v", err)
		}
		return FallbackVariations(base, count)
	}

	for len(variations) < count {
		variations = append(variations, variations[0])
	}

	return variations[:count]
}

// FallbackVariations: вариации на случай недоступности генератора.
func FallbackVariations(base string, count int) []string {
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if i == 0 {
			result = append(result, base)
			continue
		}
		result = append(result, fmt.Sprintf("%s - variation %d", base, i+1))
	}

	return result
}

// runSlot прогоняет автомат слота до конечного состояния.
func (s *Synthesizer) runSlot(ctx context.Context, sl *slot) {
	prompt := s.requestPrompt(sl.variation)

	for !sl.done() {
		if sl.state == slotRetrying {
			if err := s.sleep(ctx, time.Duration(sl.retries)*s.cfg.RetryDelay); err != nil {
				sl.drop(err)
				return
			}
		}

		url, err := s.images.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(url) == "" {
			err = fmt.Errorf("%w: provider returned no image url", e.ErrGeneration)
		}
		sl.advance(url, err, s.cfg.MaxRetries)
	}
}

// persist скачивает изображение и кладёт его в хранилище. При любой ошибке остаётся
// временная ссылка провайдера.
func (s *Synthesizer) persist(ctx context.Context, batchID string, sl *slot) *domain.GeneratedImage {
	prompt := s.recordedPrompt(sl.variation)
	temporary := domain.NewGeneratedImage(sl.providerURL, prompt, sl.providerURL, sl.variation, true)

	img, err := s.images.Download(ctx, sl.providerURL)
	if err != nil {
		s.logger.Warnf("download of image %d failed, keeping provider url: %v", sl.index+1, err)
		return temporary
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = generatedImageContentType
	}

	publicURL, err := s.storage.StoreImage(ctx, NewStoreImageReq(s.objectName(batchID, sl.index), img.Data, contentType))
	if err != nil {
		s.logger.Warnf("upload of image %d failed, keeping provider url: %v", sl.index+1, fmt.Errorf("%w: %w", e.ErrPersistence, err))
		return temporary
	}

	return domain.NewGeneratedImage(publicURL, prompt, sl.providerURL, sl.variation, false)
}

// objectName строит имя вида dalle-generated-2024-05-01T10-00-00-000Z-<batchID>-1.png.
func (s *Synthesizer) objectName(batchID string, index int) string {
	ts := s.now().UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)

	return fmt.Sprintf("%s-%s-%s-%d.png", generatedImagePrefix, ts, batchID, index+1)
}

func (s *Synthesizer) requestPrompt(variation string) string {
	return s.recordedPrompt(variation) + "."
}

func (s *Synthesizer) recordedPrompt(variation string) string {
	return s.cfg.PromptPrefix + variation
}

type slotState int

const (
	slotPending slotState = iota
	slotRetrying
	slotSucceeded
	slotDropped
)

func (s slotState) String() string {
	switch s {
	case slotPending:
		return "pending"
	case slotRetrying:
		return "retrying"
	case slotSucceeded:
		return "succeeded"
	case slotDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// slot описывает одну единицу генерации: pending -> retrying(n) -> succeeded | dropped.
type slot struct {
	index       int
	variation   string
	state       slotState
	retries     int
	providerURL string
	lastErr     error
}

func newSlot(index int, variation string) *slot {
	return &slot{index: index, variation: variation, state: slotPending}
}

func (s *slot) done() bool {
	return s.state == slotSucceeded || s.state == slotDropped
}

// advance применяет результат очередной попытки.
func (s *slot) advance(url string, err error, maxRetries int) {
	if err == nil {
		s.state = slotSucceeded
		s.providerURL = url
		return
	}

	s.lastErr = err
	if s.retries >= maxRetries {
		s.state = slotDropped
		return
	}

	s.retries++
	s.state = slotRetrying
}

func (s *slot) drop(err error) {
	s.lastErr = err
	s.state = slotDropped
}
