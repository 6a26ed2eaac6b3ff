package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	relaygrpc "github.com/Saoudyahya/tournament-stream-relay/pkg/grpc"
)

func startBufconn(t *testing.T) (*GRPCServer, *relaygrpc.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(zerolog.Nop())
	go func() { _ = srv.Serve(lis) }()

	client, err := relaygrpc.NewHealthClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
		srv.Stop()
	})
	return srv, client
}

func TestGRPCHealthTracksServingState(t *testing.T) {
	srv, client := startBufconn(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := client.Check(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)

	srv.SetServing(true)

	st, err = client.Check(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	st, err = client.Check(ctx, ServiceName)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)
}

func TestGRPCHealthUnknownService(t *testing.T) {
	_, client := startBufconn(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Check(ctx, "no-such-service")
	assert.Error(t, err)
}
