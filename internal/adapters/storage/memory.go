package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryAssetStore is an in-memory AssetStore, used in tests and by the
// local emulator when no build output is configured.
type MemoryAssetStore struct {
	mu     sync.RWMutex
	assets map[string]*memoryAsset
}

type memoryAsset struct {
	data         []byte
	contentType  string
	lastModified time.Time
	etag         string
}

// NewMemoryAssetStore creates a new MemoryAssetStore instance
func NewMemoryAssetStore() *MemoryAssetStore {
	return &MemoryAssetStore{
		assets: make(map[string]*memoryAsset),
	}
}

// Put adds or replaces an asset. An empty contentType is derived from the key.
func (m *MemoryAssetStore) Put(key string, data []byte, ct string) error {
	if err := validateKey(key); err != nil {
		return NewStorageError("Put", key, err, false)
	}
	if ct == "" {
		ct = contentType(key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.assets[key] = &memoryAsset{
		data:         append([]byte(nil), data...),
		contentType:  ct,
		lastModified: now,
		etag:         fmt.Sprintf("%d-%d", len(data), now.Unix()),
	}
	return nil
}

// Remove deletes an asset if present
func (m *MemoryAssetStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assets, key)
}

// Retrieve implements AssetStore.Retrieve
func (m *MemoryAssetStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	asset, exists := m.assets[key]
	if !exists {
		return nil, NewStorageError("Retrieve", key, ErrAssetNotFound, false)
	}
	return append([]byte(nil), asset.data...), nil
}

// Exists implements AssetStore.Exists
func (m *MemoryAssetStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.assets[key]
	return exists, nil
}

// Stat implements AssetStore.Stat
func (m *MemoryAssetStore) Stat(ctx context.Context, key string) (*AssetInfo, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Stat", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	asset, exists := m.assets[key]
	if !exists {
		return nil, NewStorageError("Stat", key, ErrAssetNotFound, false)
	}
	info := asset.info(key)
	return &info, nil
}

// List implements AssetStore.List
func (m *MemoryAssetStore) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.assets))
	for key := range m.assets {
		if opts.Prefix != "" && !strings.HasPrefix(key, opts.Prefix) {
			continue
		}
		if opts.Marker != "" && key <= opts.Marker {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := &ListResult{}
	for _, key := range keys {
		if len(result.Assets) >= maxResults {
			result.IsTruncated = true
			result.NextMarker = result.Assets[len(result.Assets)-1].Key
			break
		}
		result.Assets = append(result.Assets, m.assets[key].info(key))
	}
	return result, nil
}

// Close implements AssetStore.Close
func (m *MemoryAssetStore) Close() error {
	return nil
}

// Len returns the number of stored assets
func (m *MemoryAssetStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.assets)
}

func (a *memoryAsset) info(key string) AssetInfo {
	return AssetInfo{
		Key:          key,
		Size:         int64(len(a.data)),
		ContentType:  a.contentType,
		LastModified: a.lastModified,
		ETag:         a.etag,
	}
}
