package helperapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func socketClient(socketPath string) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", socketPath)
			},
		},
	}
}

func TestServer_ServesOverUnixSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "api.sock")
	handler := NewHandler(&mockEngine{enabled: true}, nil, nil, "dev", discardLogger())
	srv := NewServer(Config{SocketPath: socketPath}, handler, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	// Wait for the socket to appear.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socketPath); err == nil {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	client := socketClient(socketPath)
	resp, err := client.Get("http://localhost/v1/enabled")
	if err != nil {
		t.Fatalf("GET /v1/enabled: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	client.CloseIdleConnections()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Start returned %v, want context.Canceled", err)
	}

	// Socket file is removed on shutdown.
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("socket file still present after shutdown: %v", err)
	}
}

func TestServer_RemovesStaleSocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "api.sock")

	// Plant a stale socket from a previous run.
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("plant stale socket: %v", err)
	}
	ln.Close()
	if _, err := os.Stat(socketPath); err != nil {
		// Close removed it; recreate as a plain file to simulate staleness.
		if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
			t.Fatalf("plant stale file: %v", err)
		}
	}

	handler := NewHandler(&mockEngine{}, nil, nil, "dev", discardLogger())
	srv := NewServer(Config{SocketPath: socketPath}, handler, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	var got bool
	for time.Now().Before(deadline) {
		client := socketClient(socketPath)
		resp, err := client.Get("http://localhost/v1/status")
		if err == nil {
			resp.Body.Close()
			client.CloseIdleConnections()
			got = resp.StatusCode == http.StatusOK
			break
		}
		client.CloseIdleConnections()
		time.Sleep(5 * time.Millisecond)
	}
	if !got {
		t.Error("server never became reachable over a previously stale socket path")
	}

	cancel()
	<-done
}
