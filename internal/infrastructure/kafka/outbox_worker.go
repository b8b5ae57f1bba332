package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/jitter"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	defaultBatchSize     = 10
	defaultStaleAfter    = 5 * time.Minute
	defaultRequeuePeriod = time.Minute
	defaultRetention     = 7 * 24 * time.Hour
	notificationWait     = 30 * time.Second
)

var reconnectBackoff = jitter.Backoff{Base: time.Second, Max: 30 * time.Second, Factor: jitter.DefaultJitter}

// OutboxRepository: хранилище outbox с обслуживанием очереди.
type OutboxRepository interface {
	usecase.OutboxRepository
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
	PurgeProcessed(ctx context.Context, retention time.Duration) (int64, error)
}

// OutboxWorker переносит события из outbox в Kafka: при старте, по NOTIFY outbox_pending
// и периодически для событий, зависших в processing.
type OutboxWorker struct {
	repo      OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	dbConnStr string

	batchSize     int
	staleAfter    time.Duration
	requeuePeriod time.Duration
	retention     time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxWorker(
	repo OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:          repo,
		logger:        logger,
		producer:      producer,
		dbConnStr:     dbConnStr,
		batchSize:     defaultBatchSize,
		staleAfter:    defaultStaleAfter,
		requeuePeriod: defaultRequeuePeriod,
		retention:     defaultRetention,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()
}

// Stop останавливает воркер и дожидается завершения горутин.
func (w *OutboxWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return e.Wrap("OutboxWorker.Stop", ctx.Err())
	}
}

func (w *OutboxWorker) run(ctx context.Context) {
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.requeuePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.maintain(ctx)
		}
	}
}

// maintain возвращает зависшие события в очередь и чистит старые отправленные.
func (w *OutboxWorker) maintain(ctx context.Context) {
	if purged, err := w.repo.PurgeProcessed(ctx, w.retention); err != nil {
		w.logger.Warnf("purge processed outbox events failed: %v", err)
	} else if purged > 0 {
		w.logger.Debugf("Purged %d processed outbox events", purged)
	}

	n, err := w.repo.RequeueStale(ctx, w.staleAfter)
	if err != nil {
		w.logger.Warnf("requeue stale outbox events failed: %v", err)
		return
	}
	if n > 0 {
		w.logger.Infof("Requeued %d stale outbox events", n)
		w.drain(ctx)
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		c, err := pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err := c.Exec(ctx, "LISTEN "+usecase.OutboxChannel); err != nil {
			_ = c.Close(ctx)
			return e.Wrap("failed to LISTEN", err)
		}

		conn = c
		w.logger.Infof("Subscribed to '%s' channel", usecase.OutboxChannel)
		return nil
	}

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		if conn == nil {
			if err := connect(); err != nil {
				w.logger.Warnf("LISTEN connect failed: %v", err)
				if !reconnectBackoff.Wait(ctx, attempt) {
					return
				}
				attempt++
				continue
			}
			attempt = 0
		}

		waitCtx, cancel := context.WithTimeout(ctx, notificationWait)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				_ = conn.Close(context.Background())
				return
			}
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			w.logger.Warnf("LISTEN connection lost: %v. Reconnecting...", err)
			_ = conn.Close(context.Background())
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == usecase.OutboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока они не закончатся.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch отправляет пачку событий. Неотправленные остаются в processing
// и вернутся в очередь через RequeueStale.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	sent := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.logger.Warnf("outbox event %s (%s) not sent: %v", event.EventID, event.EventType, err)
			continue
		}
		sent++

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	// ничего не ушло: Kafka недоступна, не крутим цикл вхолостую
	return sent > 0, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.Payload))
	if err != nil {
		if isRetryableError(err) {
			return e.Wrap("temporary Kafka failure, will retry", err)
		}
		return e.Wrap("permanent Kafka failure", err)
	}

	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
