package main

// Notes:
// - Shared test infrastructure: a fixed-clock Environment, a static font
//   source and mock generators/pools for batch rendering.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	cover "github.com/alnah/go-cover"
	"github.com/alnah/go-cover/internal/fontresolve"
)

// fixedNow is 2024-03-15 18:30:00 in the platform zone.
var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// fixedRun is the run directory name for fixedNow.
const fixedRun = "20240315_183000"

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment
// ---------------------------------------------------------------------------

// testEnv holds an Environment and its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an Environment with a fixed clock, no environment
// variables and the Go fonts in place of host discovery.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	h, err := fontresolve.NewHandle("Go", goregular.TTF, gobold.TTF)
	if err != nil {
		t.Fatalf("NewHandle() error = %v", err)
	}

	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &Environment{
			Now:     func() time.Time { return fixedNow },
			Stdout:  &stdout,
			Stderr:  &stderr,
			Getenv:  mapEnv(nil),
			Logger:  zap.NewNop(),
			Fonts:   fontresolve.Static(h),
			NewPool: newGeneratorPool,
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

// mapEnv returns a Getenv backed by m.
func mapEnv(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock generator and pool
// ---------------------------------------------------------------------------

// mockGenerator records requests and returns a fake artifact or err.
type mockGenerator struct {
	mu       sync.Mutex
	requests []cover.Request
	paths    []string
	err      error
	calls    chan struct{} // optional, signaled after each call
}

func (m *mockGenerator) Generate(_ context.Context, req cover.Request, path string) (*cover.Artifact, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.paths = append(m.paths, path)
	m.mu.Unlock()

	if m.calls != nil {
		defer func() { m.calls <- struct{}{} }()
	}
	if m.err != nil {
		return nil, m.err
	}
	return &cover.Artifact{Path: path, Size: 2048, Format: cover.FormatPNG, Width: cover.Width, Height: cover.Height}, nil
}

// mockPool hands out a single shared generator.
type mockPool struct {
	gen        *mockGenerator
	size       int
	acquireErr error
	acquired   atomic.Int32
	released   atomic.Int32
	closed     atomic.Bool
}

func (p *mockPool) Acquire() (CoverGenerator, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired.Add(1)
	return p.gen, nil
}

func (p *mockPool) Release(CoverGenerator) { p.released.Add(1) }

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.closed.Store(true)
	return nil
}

// errBrowserDown is a render failure used by batch tests.
var errBrowserDown = errors.Join(cover.ErrBrowserConnect, errors.New("chrome exited"))
