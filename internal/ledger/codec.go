package ledger

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON reads key and decodes it into T. The zero T is returned when the key is absent.
func GetJSON[T any](ctx context.Context, r Reader, key Key) (T, bool, error) {
	var out T
	raw, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("%w: decode %s: %v", ErrCodec, key, err)
	}
	return out, true, nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, tx Tx, key Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrCodec, key, err)
	}
	return tx.Set(ctx, key, raw)
}
