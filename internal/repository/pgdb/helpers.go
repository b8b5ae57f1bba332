package pgdb

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/DRSN-tech/nudge-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/nudge-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation = "23505"
	codeInvalidText     = "22P02"
)

// postgresDuplicate сообщает о нарушении уникального ограничения.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// notFound: строки нет либо id не является корректным uuid.
func notFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeInvalidText
}

// querier: общий интерфейс пула и транзакции для чтения.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// readerFromCtx возвращает транзакцию из контекста, если она есть, иначе пул.
func readerFromCtx(ctx context.Context, pool querier) querier {
	if tx, err := tr.TxFromCtx(ctx); err == nil {
		return tx
	}

	return pool
}

// prefixed добавляет алиас таблицы к списку колонок: "a, b" -> "t.a, t.b".
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, c := range parts {
		parts[i] = alias + "." + strings.TrimSpace(c)
	}

	return strings.Join(parts, ", ")
}

func sortByCreatedAt(models []*converter.OutboxEventModel) {
	sort.SliceStable(models, func(i, j int) bool {
		return models[i].CreatedAt.Before(models[j].CreatedAt)
	})
}
