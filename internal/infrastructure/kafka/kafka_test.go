package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutboxRepo struct {
	mu        sync.Mutex
	batches   [][]*usecase.OutboxEvent
	processed []int64
	requeued  int
	purged    []time.Duration
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return event, nil
}

func (f *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, _ int) ([]*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) RequeueStale(_ context.Context, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued++
	return 0, nil
}

func (f *fakeOutboxRepo) PurgeProcessed(_ context.Context, retention time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purged = append(f.purged, retention)
	return 1, nil
}

type fakeProducer struct {
	mu   sync.Mutex
	keys []string
	fail map[string]error
}

func (f *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[req.Key]; err != nil {
		return err
	}
	f.keys = append(f.keys, req.Key)
	return nil
}

func event(id int64, aggregateID string) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{ID: id, EventID: "e", EventType: usecase.AssetCreated, AggregateID: aggregateID}
}

func TestOutboxWorker_Drain(t *testing.T) {
	repo := &fakeOutboxRepo{batches: [][]*usecase.OutboxEvent{
		{event(1, "a-1"), event(2, "a-2")},
		{event(3, "p-1")},
	}}
	producer := &fakeProducer{fail: map[string]error{"a-2": errors.New("connection refused")}}

	w := NewOutboxWorker(repo, logger.NewNop(), producer, "")
	w.drain(context.Background())

	assert.Equal(t, []string{"a-1", "p-1"}, producer.keys)
	assert.Equal(t, []int64{1, 3}, repo.processed)
}

func TestOutboxWorker_StopsWhenNothingSent(t *testing.T) {
	repo := &fakeOutboxRepo{batches: [][]*usecase.OutboxEvent{{event(1, "a-1")}, {event(2, "a-2")}}}
	producer := &fakeProducer{fail: map[string]error{"a-1": errors.New("broker not available")}}

	w := NewOutboxWorker(repo, logger.NewNop(), producer, "")
	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Empty(t, repo.processed)
}

func TestOutboxWorker_RequeuesPeriodically(t *testing.T) {
	repo := &fakeOutboxRepo{}
	w := NewOutboxWorker(repo, logger.NewNop(), &fakeProducer{}, "")
	w.requeuePeriod = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.requeued >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestOutboxWorker_MaintainPurgesProcessed(t *testing.T) {
	repo := &fakeOutboxRepo{}
	w := NewOutboxWorker(repo, logger.NewNop(), &fakeProducer{}, "")
	w.retention = time.Hour

	w.maintain(context.Background())

	assert.Equal(t, []time.Duration{time.Hour}, repo.purged)
	assert.Equal(t, 1, repo.requeued)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp: i/o timeout")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(usecase.NewWriteRawMessageReq("a-1", []byte{1}))
	assert.Equal(t, []byte("a-1"), msg.Key)
	assert.Equal(t, []byte{1}, msg.Value)
}
