package storage

import (
	"context"
	"testing"
)

func TestMemoryAssetStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAssetStore()
	defer store.Close()

	for _, key := range []string{"b.css", "a.js", "c/index.html"} {
		if err := store.Put(key, []byte(key), ""); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	t.Run("RetrieveReturnsCopy", func(t *testing.T) {
		data, err := store.Retrieve(ctx, "a.js")
		if err != nil {
			t.Fatalf("Retrieve failed: %v", err)
		}
		data[0] = 'x'
		again, _ := store.Retrieve(ctx, "a.js")
		if string(again) != "a.js" {
			t.Errorf("stored data was modified: %q", again)
		}
	})

	t.Run("ContentTypeFromKey", func(t *testing.T) {
		info, err := store.Stat(ctx, "b.css")
		if err != nil {
			t.Fatalf("Stat failed: %v", err)
		}
		if info.ContentType != "text/css; charset=utf-8" {
			t.Errorf("ContentType mismatch: got %q", info.ContentType)
		}
	})

	t.Run("ListIsSorted", func(t *testing.T) {
		result, err := store.List(ctx, &ListOptions{MaxResults: 2})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(result.Assets) != 2 || result.Assets[0].Key != "a.js" || result.Assets[1].Key != "b.css" {
			t.Fatalf("unexpected page: %+v", result.Assets)
		}
		if !result.IsTruncated || result.NextMarker != "b.css" {
			t.Errorf("expected a truncated page ending at b.css, got %+v", result)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		store.Remove("c/index.html")
		if exists, _ := store.Exists(ctx, "c/index.html"); exists {
			t.Error("asset should be removed")
		}
		if store.Len() != 2 {
			t.Errorf("expected 2 assets, got %d", store.Len())
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		if _, err := store.Stat(ctx, "missing"); !IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}
