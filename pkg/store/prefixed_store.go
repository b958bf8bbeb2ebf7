package store

import (
	"context"
	"fmt"
	"strings"
)

// PrefixedStore namespaces every key of an underlying Store.
type PrefixedStore struct {
	inner  Store
	prefix string
}

// NewPrefixedStore wraps inner so that every key is stored as prefix+key.
func NewPrefixedStore(inner Store, prefix string) *PrefixedStore {
	return &PrefixedStore{inner: inner, prefix: prefix}
}

// PlayerPrefix returns the key prefix for one player's snapshots.
func PlayerPrefix(playerID string) string {
	return fmt.Sprintf("player:%s:", playerID)
}

// ForPlayer namespaces inner to a single player.
func ForPlayer(inner Store, playerID string) *PrefixedStore {
	return NewPrefixedStore(inner, PlayerPrefix(playerID))
}

func (s *PrefixedStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *PrefixedStore) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *PrefixedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// GetMany reads keys through the inner store and strips the prefix from the result.
func (s *PrefixedStore) GetMany(ctx context.Context, keys []string) (map[string]string, error) {
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = s.prefix + key
	}

	values, err := GetMany(ctx, s.inner, full)
	if err != nil {
		return nil, err
	}

	result := make(map[string]string, len(values))
	for key, value := range values {
		result[strings.TrimPrefix(key, s.prefix)] = value
	}
	return result, nil
}
