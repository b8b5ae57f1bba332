package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const outboxColumns = "id, event_id, event_type, aggregate_id, payload, status, created_at, processed_at"

// OutboxEventRepo хранит события изменения каталога до их отправки в Kafka.
type OutboxEventRepo struct {
	pool *pgxpool.Pool
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool: pool,
		conv: conv,
	}
}

// Create пишет событие в транзакции вызывающего; NOTIFY доставится только после её коммита.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	const op = "OutboxEventRepo.Create"

	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (event_id, event_type, aggregate_id, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, query,
		model.EventID, model.EventType, model.AggregateID, model.Payload, model.Status, model.CreatedAt,
	).Scan(&model.ID, &model.CreatedAt)
	switch {
	case postgresDuplicate(err):
		return nil, e.Wrap(op, fmt.Errorf("event %s already exists", event.EventID))
	case err != nil:
		return nil, e.Wrap(op, err)
	}

	if _, err := tx.Exec(ctx, "SELECT pg_notify($1, $2)", usecase.OutboxChannel, model.EventType); err != nil {
		return nil, e.Wrap(op, err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing забирает до limit pending-событий в порядке создания.
// SKIP LOCKED позволяет нескольким воркерам разбирать очередь без пересечений.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	const op = "OutboxEventRepo.GetAndMarkAsProcessing"

	query := `
		WITH claimed AS (
			SELECT id FROM outbox_events
			WHERE status = $2
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		UPDATE outbox_events ev
		SET status = $1, processing_started_at = now()
		FROM claimed
		WHERE ev.id = claimed.id
		RETURNING ` + prefixed("ev", outboxColumns)

	rows, err := o.pool.Query(ctx, query, usecase.Processing, usecase.Pending, limit)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[converter.OutboxEventModel])
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// RETURNING не гарантирует порядок
	sortByCreatedAt(models)

	return o.conv.ToArrEntity(models), nil
}

// MarkAsProcessed идемпотентен: уже обработанное событие не трогается.
func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = now()
		WHERE id = $2 AND status = $3
	`

	if _, err := o.pool.Exec(ctx, query, usecase.Processed, id, usecase.Processing); err != nil {
		return e.Wrap("OutboxEventRepo.MarkAsProcessed", fmt.Errorf("event %d: %w", id, err))
	}

	return nil
}

// RequeueStale возвращает в pending события, застрявшие в processing дольше olderThan.
func (o *OutboxEventRepo) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NULL
		WHERE status = $2 AND processing_started_at < now() - make_interval(secs => $3)
	`

	res, err := o.pool.Exec(ctx, query, usecase.Pending, usecase.Processing, olderThan.Seconds())
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return res.RowsAffected(), nil
}

// PurgeProcessed удаляет отправленные события старше retention.
func (o *OutboxEventRepo) PurgeProcessed(ctx context.Context, retention time.Duration) (int64, error) {
	query := `
		DELETE FROM outbox_events
		WHERE status = $1 AND processed_at < now() - make_interval(secs => $2)
	`

	res, err := o.pool.Exec(ctx, query, usecase.Processed, retention.Seconds())
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return res.RowsAffected(), nil
}
