package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryError_Cancelaciones(t *testing.T) {
	assert.Equal(t, context.Canceled, queryError("x", context.Canceled))

	err := queryError("list batches", &pgconn.PgError{Code: "57014"})
	assert.ErrorIs(t, err, context.Canceled)

	boom := errors.New("boom")
	err = queryError("list batches", boom)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "list batches")
}

func TestUTCDate_NormalizaMedianoche(t *testing.T) {
	assert.Nil(t, utcDate(nil))

	loc := time.FixedZone("CST", -6*3600)
	in := time.Date(2026, 1, 20, 0, 0, 0, 0, loc)
	got := utcDate(&in)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC), *got)
}
