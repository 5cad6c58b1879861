package main

import (
	"context"
	"fmt"

	cover "github.com/alnah/go-cover"
)

// CoverGenerator is the subset of *cover.Generator used by batch renders.
type CoverGenerator interface {
	Generate(ctx context.Context, req cover.Request, path string) (*cover.Artifact, error)
}

// Compile-time interface implementation check.
var _ CoverGenerator = (*cover.Generator)(nil)

// Pool abstracts generator pool operations for testability.
type Pool interface {
	Acquire() (CoverGenerator, error)
	Release(CoverGenerator)
	Size() int
	Close() error
}

// poolAdapter exposes a *cover.GeneratorPool as a Pool.
type poolAdapter struct {
	pool *cover.GeneratorPool
}

// newGeneratorPool creates a pool of n lazily launched generators.
func newGeneratorPool(n int, opts ...cover.Option) Pool {
	return &poolAdapter{pool: cover.NewGeneratorPool(n, opts...)}
}

func (a *poolAdapter) Acquire() (CoverGenerator, error) {
	g, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Release returns g to the pool. Panics if g did not come from this pool.
func (a *poolAdapter) Release(g CoverGenerator) {
	gen, ok := g.(*cover.Generator)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", g))
	}
	a.pool.Release(gen)
}

func (a *poolAdapter) Size() int { return a.pool.Size() }

func (a *poolAdapter) Close() error { return a.pool.Close() }
