package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerStore fails fast with ErrUnavailable once the wrapped backend keeps
// failing, instead of letting every request wait on a dead connection.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStore(next Store, name string) *BreakerStore {
	return &BreakerStore{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    30 * time.Second,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.6
			},
		}),
	}
}

type loadResult struct {
	payload []byte
	ok      bool
}

func (s *BreakerStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		payload, ok, err := s.next.Load(ctx, key)
		if err != nil {
			return nil, err
		}
		return loadResult{payload: payload, ok: ok}, nil
	})
	if err != nil {
		return nil, false, s.translate(err)
	}
	out := res.(loadResult)
	return out.payload, out.ok, nil
}

func (s *BreakerStore) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Save(ctx, key, payload)
	})
	if err != nil {
		return s.translate(err)
	}
	return nil
}

func (s *BreakerStore) Close() error {
	return s.next.Close()
}

func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, s.cb.Name(), err)
	}
	return err
}
