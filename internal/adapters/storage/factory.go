package storage

import (
	"fmt"
	"strings"

	"lambda-http-adapter/internal/retry"
)

// StoreType represents the type of AssetStore implementation
type StoreType string

const (
	StoreTypeLocal  StoreType = "local"
	StoreTypeMemory StoreType = "memory"
)

// Factory creates AssetStore instances based on configuration
type Factory struct {
	retryConfig *retry.Config
}

// NewFactory creates a new storage factory
func NewFactory(retryConfig *retry.Config) *Factory {
	return &Factory{
		retryConfig: retryConfig,
	}
}

// DefaultFactory returns a factory with default retry configuration
func DefaultFactory() *Factory {
	return NewFactory(retry.DefaultConfig())
}

// Create creates an AssetStore from config
func (f *Factory) Create(config *Config) (AssetStore, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	var (
		store AssetStore
		err   error
	)
	switch StoreType(strings.ToLower(config.Type)) {
	case StoreTypeLocal:
		store, err = NewLocalAssetStore(config.BasePath)
	case StoreTypeMemory:
		store = NewMemoryAssetStore()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}

	if f.retryConfig != nil {
		store = NewRetryableAssetStore(store, f.retryConfig)
	}
	return store, nil
}

// CreateFromConfig is a convenience function to create a store from config
func CreateFromConfig(config *Config) (AssetStore, error) {
	return DefaultFactory().Create(config)
}
