package worker

import "context"

// Pool bounds the number of CPU-heavy jobs running at once. Password hashing
// is deliberately slow; funneling it through a fixed number of slots keeps a
// burst of login attempts from starving unrelated request handling.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool with the given number of slots.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Do runs fn once a slot is free, returning the context error if the caller
// gives up while waiting. fn itself is not interrupted once started.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	fn()
	return nil
}

// Size reports the pool capacity.
func (p *Pool) Size() int {
	return cap(p.slots)
}
