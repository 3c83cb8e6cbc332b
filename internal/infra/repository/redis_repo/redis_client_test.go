package redis_repo

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientOptions(t *testing.T) {
	opts := clientOptions("cache:6379")
	require.Equal(t, "cache:6379", opts.Addr)
	require.Equal(t, defaultDialTimeout, opts.DialTimeout)

	opts = clientOptions("cache:6379", WithPassword("pw"), WithDB(2), WithPoolSize(5), WithDialTimeout(time.Second))
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 5, opts.PoolSize)
	require.Equal(t, time.Second, opts.DialTimeout)
}

func TestConnectUnreachable(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	client, err := Connect(context.Background(), addr, WithDialTimeout(200*time.Millisecond))
	require.Error(t, err)
	require.Contains(t, err.Error(), addr)
	require.Nil(t, client)
}
