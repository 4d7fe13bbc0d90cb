// Package store persists whole collections as serialized documents under a
// logical key. Backends never interpret the payload.
package store

import (
	"context"
	"errors"
)

// Logical collection keys.
const (
	Clients       = "clients"
	Diagnostics   = "diagnostics"
	Checklists    = "checklists"
	Indicators    = "indicators"
	CurrentClient = "currentClient"
)

// ErrUnavailable is returned when a backend refuses calls, for example while
// its circuit breaker is open.
var ErrUnavailable = errors.New("store unavailable")

type Store interface {
	// Load returns the payload saved under key. ok is false when nothing
	// has been saved yet.
	Load(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Save replaces the payload under key.
	Save(ctx context.Context, key string, payload []byte) error
	Close() error
}

type prefixed struct {
	next   Store
	prefix string
}

// WithPrefix namespaces every key of next, e.g. "auri_" + "clients".
func WithPrefix(next Store, prefix string) Store {
	if prefix == "" {
		return next
	}
	return &prefixed{next: next, prefix: prefix}
}

func (p *prefixed) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return p.next.Load(ctx, p.prefix+key)
}

func (p *prefixed) Save(ctx context.Context, key string, payload []byte) error {
	return p.next.Save(ctx, p.prefix+key, payload)
}

func (p *prefixed) Close() error {
	return p.next.Close()
}
