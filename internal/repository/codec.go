package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nurpe/aterrozero-consultancy/internal/store"
)

type validator interface {
	Validate() error
}

// loadCollection decodes the collection saved under key. A missing key yields
// an empty collection; anything unreadable is a CorruptDataError.
func loadCollection[T validator](ctx context.Context, st store.Store, key string) ([]T, error) {
	payload, ok, err := st.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return []T{}, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &CorruptDataError{Key: key, Index: -1, Err: err}
	}

	items := make([]T, 0, len(raw))
	for i, msg := range raw {
		var item T
		if err := json.Unmarshal(msg, &item); err != nil {
			return nil, &CorruptDataError{Key: key, Index: i, Err: err}
		}
		if err := item.Validate(); err != nil {
			return nil, &CorruptDataError{Key: key, Index: i, Err: err}
		}
		items = append(items, item)
	}
	return items, nil
}

func saveCollection[T any](ctx context.Context, st store.Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := st.Save(ctx, key, payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
