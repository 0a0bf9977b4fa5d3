//go:build integration

package database

import (
	"context"
	"testing"

	"github.com/cloo-solutions/resumechat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_Connects(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)

	pool, err := NewPool(ctx, Config{URL: pc.ConnectionString(), MaxConns: 4})
	require.NoError(t, err)
	defer pool.Close()

	var one int
	require.NoError(t, pool.QueryRow(ctx, "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
	assert.Equal(t, int32(4), pool.Config().MaxConns)
}
