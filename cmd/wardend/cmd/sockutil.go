package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/oliverames/warden/internal/helperapi"
)

// newSocketClient creates an HTTP client that connects via Unix socket.
func newSocketClient(socketPath string) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(_ context.Context, _, _ string) (net.Conn, error) {
				return net.Dial("unix", socketPath)
			},
		},
	}
}

// socketURL returns a URL for the given path using the Unix socket.
func socketURL(path string) string {
	return "http://localhost" + path
}

// socketGet performs a GET request to the local daemon via Unix socket.
func socketGet(socketPath, path string) (*http.Response, error) {
	client := newSocketClient(socketPath)
	resp, err := client.Get(socketURL(path))
	if err != nil {
		return nil, fmt.Errorf("daemon not running or socket unavailable at %s: %w", socketPath, err)
	}
	return resp, nil
}

// socketDo performs a request with the given method and JSON body. body may
// be nil.
func socketDo(socketPath, method, path string, body []byte) (*http.Response, error) {
	client := newSocketClient(socketPath)
	req, err := http.NewRequest(method, socketURL(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon not running or socket unavailable at %s: %w", socketPath, err)
	}
	return resp, nil
}

// controlSocketPath returns the socket path from the --socket flag or the
// package default.
func controlSocketPath() string {
	if socketPath != "" {
		return socketPath
	}
	return helperapi.DefaultSocketPath
}
