package ocrdriver

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Pool runs OCR jobs with bounded concurrency, so a burst of incoming
// receipts can't spin up one goroutine (and one gosseract client) per
// image. SetLimit keeps at most `workers` jobs in flight; the rest queue
// on Go.
type Pool struct {
	group *errgroup.Group
}

// NewPool creates a Pool bound to ctx with the given worker count.
func NewPool(ctx context.Context, workers int) (*Pool, context.Context) {
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	return &Pool{group: g}, gctx
}

// Go schedules fn, blocking if the pool is already at capacity.
func (p *Pool) Go(fn func() error) {
	p.group.Go(fn)
}

// Wait blocks until every scheduled job has returned, and reports the first
// non-nil error encountered.
func (p *Pool) Wait() error {
	return p.group.Wait()
}
