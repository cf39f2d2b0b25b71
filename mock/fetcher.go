// Package mock provides function-field mocks of the boardarch interfaces.
package mock

import (
	"context"

	"github.com/fwojciec/boardarch"
)

var _ boardarch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of boardarch.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ boardarch.HostLimiter = (*HostLimiter)(nil)

// HostLimiter is a mock implementation of boardarch.HostLimiter.
type HostLimiter struct {
	WaitFn func(ctx context.Context, host string) error
}

func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, host)
}
