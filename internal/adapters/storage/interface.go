package storage

import (
	"context"
	"time"
)

// AssetInfo describes one file of the static build output
type AssetInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
}

// ListOptions provides options for listing assets
type ListOptions struct {
	Prefix     string `json:"prefix,omitempty"`
	MaxResults int    `json:"max_results,omitempty"`
	Marker     string `json:"marker,omitempty"` // For pagination
}

// ListResult represents the result of a list operation
type ListResult struct {
	Assets      []AssetInfo `json:"assets"`
	NextMarker  string      `json:"next_marker,omitempty"`
	IsTruncated bool        `json:"is_truncated"`
}

// AssetStore gives read access to the static build output.
// Keys are slash-separated paths relative to the output root, without a
// leading slash.
type AssetStore interface {
	// Retrieve gets an asset by key
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Exists checks if an asset exists at the given key
	Exists(ctx context.Context, key string) (bool, error)

	// Stat returns metadata for an asset
	Stat(ctx context.Context, key string) (*AssetInfo, error)

	// List returns assets in key order
	List(ctx context.Context, opts *ListOptions) (*ListResult, error)

	// Close cleans up any resources used by the store
	Close() error
}

// Config selects and configures an AssetStore
type Config struct {
	Type     string `mapstructure:"type" validate:"required,oneof=local memory"`
	BasePath string `mapstructure:"base_path" validate:"required_if=Type local"`
}

// ListAll pages through every asset in store.
func ListAll(ctx context.Context, store AssetStore, prefix string) ([]AssetInfo, error) {
	var (
		assets []AssetInfo
		marker string
	)
	for {
		result, err := store.List(ctx, &ListOptions{Prefix: prefix, Marker: marker})
		if err != nil {
			return nil, err
		}
		assets = append(assets, result.Assets...)
		if !result.IsTruncated || result.NextMarker == "" {
			return assets, nil
		}
		marker = result.NextMarker
	}
}
