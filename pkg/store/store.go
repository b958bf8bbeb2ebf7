package store

import "context"

// Store is the key-value persistence boundary for progression snapshots.
// Values are opaque strings (JSON documents in practice).
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// has never been written; that is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// MultiGetter is implemented by stores that can read several keys in one round trip.
type MultiGetter interface {
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
}

// GetMany reads keys from s, using a single round trip when s supports it.
// Missing keys are absent from the result.
func GetMany(ctx context.Context, s Store, keys []string) (map[string]string, error) {
	if mg, ok := s.(MultiGetter); ok {
		return mg.GetMany(ctx, keys)
	}

	values := make(map[string]string, len(keys))
	for _, key := range keys {
		value, found, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if found {
			values[key] = value
		}
	}
	return values, nil
}
