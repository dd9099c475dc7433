package storage

import (
	"context"

	"lambda-http-adapter/internal/retry"
)

// RetryableAssetStore wraps an AssetStore with retry logic
type RetryableAssetStore struct {
	store  AssetStore
	config *retry.Config
}

// NewRetryableAssetStore creates a new RetryableAssetStore
func NewRetryableAssetStore(store AssetStore, config *retry.Config) *RetryableAssetStore {
	if config == nil {
		config = retry.DefaultConfig()
	}

	return &RetryableAssetStore{
		store:  store,
		config: config,
	}
}

func (r *RetryableAssetStore) do(ctx context.Context, op retry.Operation) error {
	return retry.Do(ctx, r.config, op, IsRetryable)
}

// Retrieve implements AssetStore.Retrieve with retry logic
func (r *RetryableAssetStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	var result []byte
	err := r.do(ctx, func(ctx context.Context) error {
		data, err := r.store.Retrieve(ctx, key)
		if err != nil {
			return err
		}
		result = data
		return nil
	})
	return result, err
}

// Exists implements AssetStore.Exists with retry logic
func (r *RetryableAssetStore) Exists(ctx context.Context, key string) (bool, error) {
	var result bool
	err := r.do(ctx, func(ctx context.Context) error {
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			return err
		}
		result = exists
		return nil
	})
	return result, err
}

// Stat implements AssetStore.Stat with retry logic
func (r *RetryableAssetStore) Stat(ctx context.Context, key string) (*AssetInfo, error) {
	var result *AssetInfo
	err := r.do(ctx, func(ctx context.Context) error {
		info, err := r.store.Stat(ctx, key)
		if err != nil {
			return err
		}
		result = info
		return nil
	})
	return result, err
}

// List implements AssetStore.List with retry logic
func (r *RetryableAssetStore) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	var result *ListResult
	err := r.do(ctx, func(ctx context.Context) error {
		listResult, err := r.store.List(ctx, opts)
		if err != nil {
			return err
		}
		result = listResult
		return nil
	})
	return result, err
}

// Close implements AssetStore.Close
func (r *RetryableAssetStore) Close() error {
	return r.store.Close()
}
