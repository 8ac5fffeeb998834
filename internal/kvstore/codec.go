package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Read loads the slot at key and decodes it into T. A missing slot, a storage
// error, or malformed JSON all yield the caller-supplied default unchanged;
// Read never fails toward the caller.
//
// When both the persisted value and the default encode to JSON objects (not
// arrays), the result is the shallow merge of the two with persisted fields
// winning. Fields later added to a default struct therefore appear for
// existing installs without a migration step. Arrays and primitives are
// replaced wholesale.
func Read[T any](ctx context.Context, s Store, key string, def T) T {
	raw, err := s.Get(ctx, key)
	if err != nil || raw == nil {
		return def
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return def
	}

	defRaw, err := json.Marshal(def)
	if err != nil {
		return def
	}
	var defAny any
	if err := json.Unmarshal(defRaw, &defAny); err != nil {
		return def
	}

	final := parsed
	if defMap, ok := defAny.(map[string]any); ok {
		if parsedMap, ok := parsed.(map[string]any); ok {
			merged := make(map[string]any, len(defMap)+len(parsedMap))
			for k, v := range defMap {
				merged[k] = v
			}
			for k, v := range parsedMap {
				merged[k] = v
			}
			final = merged
		}
	}

	buf, err := json.Marshal(final)
	if err != nil {
		return def
	}

	var out T
	if err := json.Unmarshal(buf, &out); err != nil {
		return def
	}
	return out
}

// Write serializes value to JSON and stores it at key, overwriting any
// existing entry. Unlike Read, failures are reported: callers decide whether
// a lost write-back matters. A failed Write never corrupts other slots.
func Write(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal slot %q: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

// Remove deletes the slot at key. Idempotent if the slot is already absent.
func Remove(ctx context.Context, s Store, key string) error {
	if err := s.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove slot %q: %w", key, err)
	}
	return nil
}

// PurgeKeys removes every given slot, atomically when the store supports it.
func PurgeKeys(ctx context.Context, s Store, keys ...string) error {
	if p, ok := s.(Purger); ok {
		return p.Purge(ctx, keys...)
	}
	for _, key := range keys {
		if err := s.Delete(ctx, key); err != nil {
			return fmt.Errorf("purge slot %q: %w", key, err)
		}
	}
	return nil
}
