package minio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/domain"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageRepo struct {
	mu        sync.Mutex
	uploaded  []*domain.Image
	deleted   []string
	uploadErr error
}

func (f *fakeImageRepo) Upload(_ context.Context, image *domain.Image) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploaded = append(f.uploaded, image)
	return image.ObjectKey, nil
}

func (f *fakeImageRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeImageRepo) PublicURL(key string) string {
	return "https://storage.local/" + key
}

func TestStoreImage(t *testing.T) {
	repo := &fakeImageRepo{}
	m := NewMinioInfrastructure(repo, logger.NewNop(), context.Background())

	url, err := m.StoreImage(context.Background(),
		usecase.NewStoreImageReq("dalle-generated-x-1.png", []byte{1, 2}, "image/png; charset=binary"))
	require.NoError(t, err)
	assert.Equal(t, "https://storage.local/generated/dalle-generated-x-1.png", url)

	require.Len(t, repo.uploaded, 1)
	assert.Equal(t, "image/png", repo.uploaded[0].ContentType)
	assert.Equal(t, "max-age=3600", repo.uploaded[0].CacheControl)
	assert.Equal(t, int64(2), repo.uploaded[0].Size())
}

func TestStoreImage_Errors(t *testing.T) {
	m := NewMinioInfrastructure(&fakeImageRepo{}, logger.NewNop(), context.Background())

	_, err := m.StoreImage(context.Background(), usecase.NewStoreImageReq("a.png", nil, "image/png"))
	require.ErrorIs(t, err, e.ErrPersistence)

	_, err = m.StoreImage(context.Background(), usecase.NewStoreImageReq("a.gif", []byte{1}, "image/gif"))
	require.ErrorIs(t, err, e.ErrPersistence)

	m = NewMinioInfrastructure(&fakeImageRepo{uploadErr: errors.New("bucket gone")}, logger.NewNop(), context.Background())
	_, err = m.StoreImage(context.Background(), usecase.NewStoreImageReq("a.png", []byte{1}, "image/png"))
	require.ErrorIs(t, err, e.ErrPersistence)
}

func TestStoreImage_CancelledRequestCleansUp(t *testing.T) {
	repo := &fakeImageRepo{}
	m := NewMinioInfrastructure(repo, logger.NewNop(), context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.StoreImage(ctx, usecase.NewStoreImageReq("a.png", []byte{1}, "image/png"))
	require.ErrorIs(t, err, context.Canceled)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	require.NoError(t, m.WaitForCleanup(waitCtx))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Equal(t, []string{"generated/a.png"}, repo.deleted)
}
