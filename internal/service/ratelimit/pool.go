package ratelimit

import "context"

// Pool is a bounded concurrency pool: it admits at most size holders at a
// time. It is the only shared mutable resource on the ingestion path and is
// passed explicitly to the client rather than living as global state.
type Pool struct {
	slots chan struct{}
}

func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Acquire blocks until a slot frees or the context is done.
func (p *Pool) Acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire takes a slot without blocking.
func (p *Pool) TryAcquire() bool {
	select {
	case p.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees a slot. Callers must pair every successful Acquire with
// exactly one Release, on every exit path.
func (p *Pool) Release() {
	select {
	case <-p.slots:
	default:
	}
}

// InUse reports the number of held slots.
func (p *Pool) InUse() int { return len(p.slots) }

// Size reports the pool capacity.
func (p *Pool) Size() int { return cap(p.slots) }
