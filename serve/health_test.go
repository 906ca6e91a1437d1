package serve

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestReporterFlipsPluginStatus(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = srv.Serve(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	conn, err := grpc.NewClient(
		fmt.Sprintf("localhost:%d", srv.Port()),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()
	client := grpc_health_v1.NewHealthClient(conn)

	check := func(service string) (*grpc_health_v1.HealthCheckResponse, error) {
		checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer checkCancel()
		return client.Check(checkCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
	}

	// The host itself serves from the start.
	resp, err := check("")
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	// A plugin that never enabled is unknown to the protocol.
	_, err = check("markdown-notes")
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))

	reporter := srv.Health()
	reporter.SetServing("markdown-notes", true)

	resp, err = check("markdown-notes")
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	reporter.SetServing("markdown-notes", false)

	resp, err = check("markdown-notes")
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestNopReporter(t *testing.T) {
	// Exists so hosts without a health endpoint can still wire the
	// lifecycle; it only has to not blow up.
	var r NopReporter
	r.SetServing("anything", true)
	r.SetServing("anything", false)
}
