//go:build integration

package cover

// Notes:
// - Integration test setup: shared GeneratorPool for all browser tests
// - testPool is initialized in TestMain and closed after all tests complete
// - acquireGenerator helper provides automatic cleanup via t.Cleanup()
// - Pool size is capped at 4 for CI environments to avoid resource exhaustion

import (
	"os"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Configuration
// ---------------------------------------------------------------------------

// testTimeout bounds a single markup render.
const testTimeout = 30 * time.Second

// testPool is the shared GeneratorPool for all integration tests.
var testPool *GeneratorPool

// ---------------------------------------------------------------------------
// TestMain - Integration Test Setup and Teardown
// ---------------------------------------------------------------------------

func TestMain(m *testing.M) {
	poolSize := ResolvePoolSize(0)
	if poolSize > 4 {
		poolSize = 4
	}

	testPool = NewGeneratorPool(poolSize, WithTimeout(testTimeout))

	code := m.Run()

	_ = testPool.Close()
	os.Exit(code)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// acquireGenerator gets a generator from the shared pool with automatic cleanup.
func acquireGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := testPool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	t.Cleanup(func() { testPool.Release(g) })
	return g
}
