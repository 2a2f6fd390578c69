package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestSerializationFailure(t *testing.T) {
	require.True(t, SerializationFailure(&pgconn.PgError{Code: "40001"}))
	require.True(t, SerializationFailure(&pgconn.PgError{Code: "40P01"}))
	require.True(t, SerializationFailure(fmt.Errorf("pos: next sale number: %w", &pgconn.PgError{Code: "40001"})))

	require.False(t, SerializationFailure(nil))
	require.False(t, SerializationFailure(errors.New("boom")))
	require.False(t, SerializationFailure(&pgconn.PgError{Code: "23505"}))
}
