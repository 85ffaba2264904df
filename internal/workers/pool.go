package workers

import "context"

// Pool bounds how many CPU-heavy pipeline stages run at once. Callers
// run their work on their own goroutine; the pool only gates entry.
type Pool struct {
	sem chan struct{}
}

func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Size returns the pool capacity.
func (p *Pool) Size() int {
	return cap(p.sem)
}

// Do acquires a slot, runs fn and releases the slot. Waiting for a slot
// respects context cancellation; once fn starts it runs to completion.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()
	return fn()
}
