// Command healthcheck probes the relay's gRPC health endpoint and exits
// non-zero unless it reports SERVING. It is meant for container probes.
package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	relaygrpc "github.com/Saoudyahya/tournament-stream-relay/pkg/grpc"
)

const fallbackAddr = "localhost:9090"

func main() {
	var (
		addr    = flag.String("addr", defaultAddr(os.Getenv("GRPC_PORT")), "gRPC health address (host:port)")
		service = flag.String("service", "", "service name to check, empty for the whole server")
		timeout = flag.Duration("timeout", 3*time.Second, "probe timeout")
	)
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "healthcheck").Logger()
	os.Exit(run(logger, *addr, *service, *timeout))
}

// defaultAddr uses GRPC_PORT only when it is a port number, so values such
// as "off" fall back to the standard port.
func defaultAddr(port string) string {
	if n, err := strconv.Atoi(port); err == nil && n > 0 && n < 65536 {
		return "localhost:" + port
	}
	return fallbackAddr
}

// run returns the process exit code: 0 serving, 1 unhealthy, 2 client setup.
func run(logger zerolog.Logger, addr, service string, timeout time.Duration) int {
	client, err := relaygrpc.NewHealthClient(addr)
	if err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("health client")
		return 2
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	st, err := client.Check(ctx, service)
	if err != nil {
		logger.Error().Err(err).Str("addr", addr).Msg("health check failed")
		return 1
	}
	if st != healthpb.HealthCheckResponse_SERVING {
		logger.Warn().Str("status", st.String()).Msg("not serving")
		return 1
	}
	logger.Info().Str("status", st.String()).Msg("serving")
	return 0
}
