package pgdb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgresErrors(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, postgresDuplicate(dup))
	assert.False(t, postgresDuplicate(errors.New("boom")))

	assert.True(t, notFound(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.True(t, notFound(&pgconn.PgError{Code: "22P02"}))
	assert.False(t, notFound(&pgconn.PgError{Code: "23505"}))
}

func TestAssetFilter(t *testing.T) {
	where, args := assetFilter(&usecase.ListAssetsReq{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = assetFilter(&usecase.ListAssetsReq{
		ListReq:   usecase.ListReq{Search: "neon"},
		Tags:      []string{"hero"},
		ProjectID: "p-1",
	})
	assert.Equal(t,
		"WHERE project_id = $1 AND is_public AND tags @> $2 AND "+
			"(filename ILIKE $3 OR keywords ILIKE $3 OR emotion ILIKE $3 OR look_and_feel ILIKE $3)",
		where)
	assert.Equal(t, []any{"p-1", []string{"hero"}, "%neon%"}, args)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "ev.id, ev.status", prefixed("ev", "id,  status"))
	assert.Contains(t, prefixed("ev", outboxColumns), "ev.processed_at")
}

func TestSortByCreatedAt(t *testing.T) {
	now := time.Now()
	models := []*converter.OutboxEventModel{
		{ID: 2, CreatedAt: now.Add(time.Second)},
		{ID: 1, CreatedAt: now},
	}

	sortByCreatedAt(models)
	assert.Equal(t, int64(1), models[0].ID)
	assert.Equal(t, int64(2), models[1].ID)
}
