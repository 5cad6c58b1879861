package cover

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Compile-time interface check.
var _ interface {
	Acquire() (*Generator, error)
	Release(*Generator)
	Size() int
	Close() error
} = (*GeneratorPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

// countingPool returns a pool whose generators are created by a counting
// constructor.
func countingPool(t *testing.T, n int, failFirst bool) (*GeneratorPool, *atomic.Int32) {
	t.Helper()
	var created atomic.Int32
	p := NewGeneratorPool(n, WithFontSource(goFonts(t)))
	p.newFn = func(opts ...Option) (*Generator, error) {
		if created.Add(1) == 1 && failFirst {
			return nil, ErrBrowserConnect
		}
		return NewGenerator(opts...)
	}
	return p, &created
}

func TestGeneratorPool_LazyCreation(t *testing.T) {
	t.Parallel()

	p, created := countingPool(t, 2, false)
	defer func() { _ = p.Close() }()

	if created.Load() != 0 {
		t.Fatalf("created = %d before Acquire, want 0", created.Load())
	}

	g1, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	p.Release(g1)

	g2, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if g2 != g1 {
		t.Error("released generator should be reused")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
	p.Release(g2)
}

func TestGeneratorPool_BlocksAtCapacity(t *testing.T) {
	t.Parallel()

	p, created := countingPool(t, 1, false)
	defer func() { _ = p.Close() }()

	g, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	got := make(chan *Generator, 1)
	go func() {
		g2, _ := p.Acquire()
		got <- g2
	}()

	select {
	case <-got:
		t.Fatal("Acquire should block while the only generator is in use")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(g)
	select {
	case g2 := <-got:
		if g2 != g {
			t.Error("blocked Acquire should receive the released generator")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Acquire did not unblock after Release")
	}
	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
}

func TestGeneratorPool_CreationFailureFreesSlot(t *testing.T) {
	t.Parallel()

	p, _ := countingPool(t, 1, true)
	defer func() { _ = p.Close() }()

	if _, err := p.Acquire(); !errors.Is(err, ErrBrowserConnect) {
		t.Fatalf("Acquire() error = %v, want %v", err, ErrBrowserConnect)
	}
	g, err := p.Acquire()
	if err != nil || g == nil {
		t.Errorf("second Acquire() = %v, %v; want a generator", g, err)
	}
}

func TestGeneratorPool_Close(t *testing.T) {
	t.Parallel()

	p, _ := countingPool(t, 2, false)
	g, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	p.Release(g) // no-op after Close
	if _, err := p.Acquire(); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Acquire() after Close error = %v, want %v", err, ErrPoolClosed)
	}
}

func TestGeneratorPool_ConcurrentUse(t *testing.T) {
	t.Parallel()

	p, created := countingPool(t, 3, false)
	defer func() { _ = p.Close() }()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := p.Acquire()
			if err != nil {
				t.Errorf("Acquire() error = %v", err)
				return
			}
			time.Sleep(time.Millisecond)
			p.Release(g)
		}()
	}
	wg.Wait()

	if n := created.Load(); n < 1 || n > 3 {
		t.Errorf("created = %d, want 1..3", n)
	}
}

func TestNewGeneratorPool_MinimumSize(t *testing.T) {
	t.Parallel()

	p := NewGeneratorPool(0)
	defer func() { _ = p.Close() }()
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1", p.Size())
	}
}
