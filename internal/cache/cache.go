// Package cache stores looked-up profiles so repeated lookups of the same
// handle skip the network.
//
// KEYS AND VALUES:
// Every entry lives at "user:" + handle, where handle is already normalized
// (lowercased) by the validator. The value is the JSON encoding of either a
// model.Profile or the not-found marker {"notFound":true}.
//
// Entries are permanent: nothing here expires or deletes them.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sakif/profile-lookup/internal/apperror"
	"github.com/sakif/profile-lookup/internal/model"
	"github.com/sakif/profile-lookup/internal/repository"
)

const keyPrefix = "user:"

// Key returns the storage key for a normalized handle.
func Key(handle string) string {
	return keyPrefix + handle
}

// ProfileCache wraps a string key/value store with profile (de)serialization.
type ProfileCache struct {
	store repository.KVStore
}

// New creates a ProfileCache over store.
func New(store repository.KVStore) *ProfileCache {
	return &ProfileCache{store: store}
}

// Get returns the cached profile or not-found marker for handle.
// found is false when nothing was ever written for handle.
// A stored value that is not valid JSON returns an apperror.ErrCorrupt error.
func (c *ProfileCache) Get(ctx context.Context, handle string) (*model.Profile, bool, error) {
	key := Key(handle)

	raw, found, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	var p model.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false, apperror.Corrupt(key, err)
	}

	return &p, true, nil
}

// Put writes p under handle, overwriting any previous entry.
func (c *ProfileCache) Put(ctx context.Context, handle string, p *model.Profile) error {
	if p == nil {
		p = model.NotFoundMarker()
	}

	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", handle, err)
	}

	if err := c.store.Set(ctx, Key(handle), string(b)); err != nil {
		return fmt.Errorf("cache: writing %s: %w", Key(handle), err)
	}

	return nil
}
