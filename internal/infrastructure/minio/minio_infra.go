package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/infrastructure"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/jitter"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
)

const (
	generatedPrefix = "generated/"
	cacheControl    = "max-age=3600"

	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

var cleanupBackoff = jitter.Backoff{Base: time.Second, Max: 4 * time.Second, Factor: jitter.DefaultJitter}

// MinioInfrastructure сохраняет сгенерированные изображения в MinIO и подчищает осиротевшие объекты.
type MinioInfrastructure struct {
	minioRepo   usecase.ImageRepository
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
}

func NewMinioInfrastructure(minioRepo usecase.ImageRepository, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		minioRepo:   minioRepo,
		logger:      logger,
		shutdownCtx: shutdownCtx,
	}
}

// StoreImage кладёт изображение в бакет под generated/<name> и возвращает его публичный URL.
// Если контекст запроса отменён во время загрузки, объект удаляется в фоне.
func (m *MinioInfrastructure) StoreImage(ctx context.Context, req *usecase.StoreImageReq) (string, error) {
	const op = "MinioInfrastructure.StoreImage"

	if len(req.Data) == 0 {
		return "", e.Wrap(op, fmt.Errorf("%w: empty image", e.ErrPersistence))
	}

	contentType := infrastructure.MediaType(req.ContentType)
	if _, err := infrastructure.GetExtensionFromMIME(contentType); err != nil {
		return "", e.Wrap(op, fmt.Errorf("%w: %s: %w", e.ErrPersistence, req.ContentType, err))
	}

	image := domain.NewImage(generatedPrefix+req.Name, req.Data, contentType, cacheControl)

	key, err := m.minioRepo.Upload(ctx, image)
	if err != nil {
		return "", e.Wrap(op, fmt.Errorf("%w: %w", e.ErrPersistence, err))
	}

	if ctx.Err() != nil {
		m.CleanupImages([]string{key})
		return "", e.Wrap(op, fmt.Errorf("%w: %w", e.ErrPersistence, ctx.Err()))
	}

	return m.minioRepo.PublicURL(key), nil
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"
	m.logger.Infof("%s: cleaning up %d uploaded keys", op, len(keys))

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.minioRepo.Delete(ctx, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Warnf("%s: giving up on key=%s: %v", op, key, err)
				break
			}

			if !cleanupBackoff.Wait(ctx, attempt) {
				m.logger.Warnf("%s: interrupted by shutdown, key=%s", op, key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}
