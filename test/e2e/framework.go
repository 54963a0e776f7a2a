package e2e

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/marmos91/staticd/internal/logger"
	"github.com/marmos91/staticd/pkg/adapter/httpd"
	"github.com/marmos91/staticd/pkg/content"
	"github.com/marmos91/staticd/pkg/server"
)

// TestContext provides a complete testing environment with:
// - A site directory the test populates
// - A running StaticServer with an HTTP adapter on an ephemeral port
// - Cleanup mechanisms
type TestContext struct {
	T       testing.TB
	Config  *TestConfig
	Server  *server.StaticServer
	Adapter *httpd.HTTPAdapter
	SiteDir string
	Port    int
	Client  *http.Client
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewTestContext creates a new test environment with the specified
// configuration and starts the server.
func NewTestContext(t testing.TB, config *TestConfig) *TestContext {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())

	tc := &TestContext{
		T:       t,
		Config:  config,
		SiteDir: filepath.Join(t.TempDir(), "www"),
		ctx:     ctx,
		cancel:  cancel,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
	}

	if err := os.MkdirAll(tc.SiteDir, 0755); err != nil {
		t.Fatalf("Failed to create site directory: %v", err)
	}

	tc.startServer()

	return tc
}

// startServer starts the StaticServer with the configured dispatcher
func (tc *TestContext) startServer() {
	tc.T.Helper()

	// Functional tests, keep output clean
	logger.SetLevel("ERROR")

	root, err := content.New(tc.SiteDir, tc.Config.ContainPaths)
	if err != nil {
		tc.T.Fatalf("Failed to open content root: %v", err)
	}

	tc.Adapter = httpd.New(httpd.HTTPConfig{
		Enabled:    true,
		Port:       0,
		Dispatcher: tc.Config.Dispatcher,
		Workers:    tc.Config.Workers,
		QueueSize:  tc.Config.QueueSize,
	}, nil) // nil = no metrics

	tc.Server = server.New(root)
	tc.Server.SetStopTimeout(10 * time.Second)

	if err := tc.Server.AddAdapter(tc.Adapter); err != nil {
		tc.T.Fatalf("Failed to add HTTP adapter: %v", err)
	}

	tc.wg.Add(1)
	go func() {
		defer tc.wg.Done()
		if err := tc.Server.Serve(tc.ctx); err != nil && !errors.Is(err, context.Canceled) {
			tc.T.Logf("Server error: %v", err)
		}
	}()

	tc.waitForServer()
}

// waitForServer waits for the adapter to bind and accept connections
func (tc *TestContext) waitForServer() {
	tc.T.Helper()

	timeout := time.After(10 * time.Second)
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			tc.T.Fatal("Timeout waiting for server to start")
		case <-ticker.C:
			port := tc.Adapter.Port()
			if port == 0 {
				continue
			}
			conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
			if err == nil {
				// An empty connection is closed without a response.
				_ = conn.Close()
				tc.Port = port
				return
			}
		}
	}
}

// Cleanup stops the server and waits for it to drain
func (tc *TestContext) Cleanup() {
	tc.T.Helper()

	if tc.cancel != nil {
		tc.cancel()
	}

	tc.wg.Wait()
}

// WriteFile creates a file under the site directory, creating parents.
func (tc *TestContext) WriteFile(relativePath string, data []byte) {
	tc.T.Helper()

	path := filepath.Join(tc.SiteDir, relativePath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		tc.T.Fatalf("Failed to create directory for %s: %v", relativePath, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		tc.T.Fatalf("Failed to write %s: %v", relativePath, err)
	}
}

// URL returns the absolute URL for a request path
func (tc *TestContext) URL(path string) string {
	return fmt.Sprintf("http://127.0.0.1:%d%s", tc.Port, path)
}

// Get fetches path with the standard HTTP client and returns the status code,
// the Content-Type header and the body read to EOF.
func (tc *TestContext) Get(path string) (int, string, []byte) {
	tc.T.Helper()

	resp, err := tc.Client.Get(tc.URL(path))
	if err != nil {
		tc.T.Fatalf("GET %s failed: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tc.T.Fatalf("Failed to read body of %s: %v", path, err)
	}

	return resp.StatusCode, resp.Header.Get("Content-Type"), body
}

// Raw sends request on a fresh connection and returns everything the server
// writes before closing it.
func (tc *TestContext) Raw(request string) []byte {
	tc.T.Helper()

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", tc.Port), 2*time.Second)
	if err != nil {
		tc.T.Fatalf("Failed to dial server: %v", err)
	}
	defer func() { _ = conn.Close() }()

	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	if _, err := io.WriteString(conn, request); err != nil {
		tc.T.Fatalf("Failed to send request: %v", err)
	}
	// Half-close so a server blocked in its single read sees EOF.
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}

	resp, err := io.ReadAll(conn)
	if err != nil {
		tc.T.Fatalf("Failed to read response: %v", err)
	}
	return resp
}

// GetConfig returns the test configuration
func (tc *TestContext) GetConfig() *TestConfig {
	return tc.Config
}

// GetPort returns the server port
func (tc *TestContext) GetPort() int {
	return tc.Port
}
