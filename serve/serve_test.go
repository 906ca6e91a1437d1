package serve

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 50051, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.GracefulTimeout)
	assert.Empty(t, cfg.TLSCertFile)
	assert.Empty(t, cfg.TLSKeyFile)
	assert.Empty(t, cfg.LocalMode)
}

func TestNewServer(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)
	require.NotNil(t, srv)
	defer srv.Stop()

	assert.NotNil(t, srv.GRPCServer())
	assert.NotNil(t, srv.Health())
	assert.Greater(t, srv.Port(), 0)
}

func TestNewServerTLSFailure(t *testing.T) {
	srv, err := NewServer(&Config{
		Port:            0,
		GracefulTimeout: time.Second,
		TLSCertFile:     "/nonexistent/cert.pem",
		TLSKeyFile:      "/nonexistent/key.pem",
	})
	assert.Error(t, err)
	assert.Nil(t, srv)
}

func TestServerGracefulStop(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(context.Background())
	}()
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	srv.GracefulStop()
	assert.Less(t, time.Since(start), 2*time.Second, "no active requests, stop should be quick")

	select {
	case err := <-errCh:
		assert.NoError(t, err, "a stopped server is a clean exit")
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after GracefulStop")
	}
}

func TestServerStop(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(context.Background())
	}()
	time.Sleep(100 * time.Millisecond)

	srv.Stop()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Stop")
	}
}

func TestServerContextCancellation(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestServerPort(t *testing.T) {
	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
	require.NoError(t, err)
	defer srv.Stop()

	assert.Greater(t, srv.Port(), 0)
}

func TestEndpoint(t *testing.T) {
	t.Run("default is localhost with bound port", func(t *testing.T) {
		srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second})
		require.NoError(t, err)
		defer srv.Stop()

		assert.Regexp(t, `^localhost:\d+$`, srv.Endpoint())
	})

	t.Run("advertise address without port gets the bound port", func(t *testing.T) {
		srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second, AdvertiseAddr: "plugins.internal"})
		require.NoError(t, err)
		defer srv.Stop()

		assert.Regexp(t, `^plugins\.internal:\d+$`, srv.Endpoint())
	})

	t.Run("advertise address with port wins as-is", func(t *testing.T) {
		srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second, AdvertiseAddr: "plugins.internal:9000"})
		require.NoError(t, err)
		defer srv.Stop()

		assert.Equal(t, "plugins.internal:9000", srv.Endpoint())
	})

	t.Run("local mode advertises the socket", func(t *testing.T) {
		socketPath := t.TempDir() + "/atrium.sock"
		srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second, LocalMode: socketPath})
		require.NoError(t, err)
		defer srv.Stop()

		assert.Equal(t, "unix://"+socketPath, srv.Endpoint())
	})
}

func TestLocalMode(t *testing.T) {
	socketPath := t.TempDir() + "/host.sock"

	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second, LocalMode: socketPath})
	require.NoError(t, err)

	info, err := os.Stat(socketPath)
	require.NoError(t, err, "socket should exist while the server lives")
	assert.NotEqual(t, os.FileMode(0), info.Mode()&os.ModeSocket)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	srv.Stop()

	_, err = os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket should be removed after shutdown")
}

func TestLocalModeReplacesStaleSocket(t *testing.T) {
	socketPath := t.TempDir() + "/stale.sock"

	f, err := os.Create(socketPath)
	require.NoError(t, err)
	f.Close()

	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second, LocalMode: socketPath})
	require.NoError(t, err)
	defer srv.Stop()

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.NotEqual(t, os.FileMode(0), info.Mode()&os.ModeSocket, "stale file should be replaced by a socket")
}

func TestLocalModeCleanupOnError(t *testing.T) {
	socketPath := t.TempDir() + "/cleanup.sock"

	srv, err := NewServer(&Config{
		Port:            0,
		GracefulTimeout: time.Second,
		LocalMode:       socketPath,
		TLSCertFile:     "/nonexistent/cert.pem",
		TLSKeyFile:      "/nonexistent/key.pem",
	})
	require.Error(t, err)
	require.Nil(t, srv)

	_, err = os.Stat(socketPath)
	assert.True(t, os.IsNotExist(err), "socket should be cleaned up when construction fails")
}

func TestLocalModeHealthCheckViaSocket(t *testing.T) {
	socketPath := t.TempDir() + "/health.sock"

	srv, err := NewServer(&Config{Port: 0, GracefulTimeout: time.Second, LocalMode: socketPath})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = srv.Serve(ctx)
	}()
	time.Sleep(100 * time.Millisecond)

	conn, err := grpc.NewClient("unix://"+socketPath, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer checkCancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(checkCtx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)
}
