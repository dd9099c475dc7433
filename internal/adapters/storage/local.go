package storage

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultMaxResults = 1000

// LocalAssetStore implements AssetStore for a build output directory
type LocalAssetStore struct {
	basePath string
}

// NewLocalAssetStore opens the directory at basePath
func NewLocalAssetStore(basePath string) (*LocalAssetStore, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStorageError("Open", "", err, false)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Open", "", ErrAssetNotFound, false)
		}
		return nil, NewStorageError("Open", "", err, true)
	}
	if !info.IsDir() {
		return nil, NewStorageError("Open", "", ErrNotADirectory, false)
	}

	return &LocalAssetStore{basePath: absPath}, nil
}

// BasePath returns the absolute directory the store reads from
func (l *LocalAssetStore) BasePath() string {
	return l.basePath
}

// Retrieve implements AssetStore.Retrieve
func (l *LocalAssetStore) Retrieve(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Retrieve", key, err, false)
	}

	data, err := os.ReadFile(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Retrieve", key, ErrAssetNotFound, false)
		}
		return nil, NewStorageError("Retrieve", key, err, true)
	}

	return data, nil
}

// Exists implements AssetStore.Exists
func (l *LocalAssetStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStorageError("Exists", key, err, false)
	}

	info, err := os.Stat(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStorageError("Exists", key, err, true)
	}

	return !info.IsDir(), nil
}

// Stat implements AssetStore.Stat
func (l *LocalAssetStore) Stat(ctx context.Context, key string) (*AssetInfo, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStorageError("Stat", key, err, false)
	}

	info, err := os.Stat(l.getFilePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStorageError("Stat", key, ErrAssetNotFound, false)
		}
		return nil, NewStorageError("Stat", key, err, true)
	}
	if info.IsDir() {
		return nil, NewStorageError("Stat", key, ErrAssetNotFound, false)
	}

	asset := assetInfo(key, info)
	return &asset, nil
}

// List implements AssetStore.List
func (l *LocalAssetStore) List(ctx context.Context, opts *ListOptions) (*ListResult, error) {
	if opts == nil {
		opts = &ListOptions{}
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	var assets []AssetInfo
	err := filepath.WalkDir(l.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(relPath)

		if opts.Prefix != "" && !strings.HasPrefix(key, opts.Prefix) {
			return nil
		}
		if opts.Marker != "" && key <= opts.Marker {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		assets = append(assets, assetInfo(key, info))
		return nil
	})
	if err != nil {
		return nil, NewStorageError("List", "", err, true)
	}

	// WalkDir order differs from key order when names contain bytes below '/'.
	sort.Slice(assets, func(i, j int) bool { return assets[i].Key < assets[j].Key })

	result := &ListResult{Assets: assets}
	if len(assets) > maxResults {
		result.Assets = assets[:maxResults]
		result.IsTruncated = true
		result.NextMarker = result.Assets[maxResults-1].Key
	}
	return result, nil
}

// Close implements AssetStore.Close
func (l *LocalAssetStore) Close() error {
	return nil
}

func (l *LocalAssetStore) getFilePath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	// Prevent directory traversal
	if strings.HasPrefix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return ErrInvalidKey
		}
	}

	return nil
}

func contentType(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func assetInfo(key string, info fs.FileInfo) AssetInfo {
	return AssetInfo{
		Key:          key,
		Size:         info.Size(),
		ContentType:  contentType(key),
		LastModified: info.ModTime(),
		ETag:         fmt.Sprintf("%d-%d", info.Size(), info.ModTime().Unix()),
	}
}
