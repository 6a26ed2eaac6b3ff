// pkg/grpc/clients.go
package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient queries a grpc.health.v1.Health endpoint.
type HealthClient struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewHealthClient connects lazily to address over plaintext. Extra dial
// options are appended after the defaults.
func NewHealthClient(address string, opts ...grpc.DialOption) (*HealthClient, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create health client for %s: %w", address, err)
	}

	return &HealthClient{
		conn:   conn,
		client: healthpb.NewHealthClient(conn),
	}, nil
}

// Check returns the serving status of service ("" for the whole server).
func (c *HealthClient) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check %q: %w", service, err)
	}
	return resp.GetStatus(), nil
}

func (c *HealthClient) Close() error {
	return c.conn.Close()
}
