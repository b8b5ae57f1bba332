package tr

import (
	"context"
	"testing"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx удовлетворяет pgx.Tx; методы не вызываются.
type fakeTx struct {
	pgx.Tx
}

func TestTxFromCtx(t *testing.T) {
	_, err := TxFromCtx(context.Background())
	require.ErrorIs(t, err, e.ErrTransactionNotFound)

	tx := &fakeTx{}
	got, err := TxFromCtx(WithTx(context.Background(), tx))
	require.NoError(t, err)
	assert.Same(t, tx, got)
}
