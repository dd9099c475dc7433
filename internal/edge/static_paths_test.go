package edge

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"lambda-http-adapter/internal/adapters/storage"
)

func TestStaticPathSet(t *testing.T) {
	t.Run("LeadingSlashAdded", func(t *testing.T) {
		s := NewStaticPathSet("index.html", "/a.css", "")
		if !s.Contains("/index.html") || !s.Contains("/a.css") {
			t.Errorf("unexpected paths: %v", s.Paths())
		}
		if s.Len() != 2 {
			t.Errorf("expected 2 paths, got %d", s.Len())
		}
	})

	t.Run("LoadManifest", func(t *testing.T) {
		s, err := LoadStaticPathSet(strings.NewReader(`["/b.js", "/a/index.html"]`))
		if err != nil {
			t.Fatalf("LoadStaticPathSet failed: %v", err)
		}
		if !reflect.DeepEqual(s.Paths(), []string{"/a/index.html", "/b.js"}) {
			t.Errorf("unexpected paths: %v", s.Paths())
		}
	})

	t.Run("LoadInvalidManifest", func(t *testing.T) {
		if _, err := LoadStaticPathSet(strings.NewReader(`{"a": 1}`)); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("ManifestRoundTrip", func(t *testing.T) {
		data, err := json.Marshal(NewStaticPathSet("/b", "/a"))
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		if string(data) != `["/a","/b"]` {
			t.Errorf("unexpected manifest: %s", data)
		}

		empty, _ := json.Marshal(NewStaticPathSet())
		if string(empty) != `[]` {
			t.Errorf("empty set should marshal as [], got %s", empty)
		}
	})

	t.Run("FromStorage", func(t *testing.T) {
		store := storage.NewMemoryAssetStore()
		store.Put("index.html", []byte("home"), "")
		store.Put("_app/start.js", []byte("js"), "")

		s, err := StaticPathSetFromStorage(context.Background(), store)
		if err != nil {
			t.Fatalf("StaticPathSetFromStorage failed: %v", err)
		}
		if !reflect.DeepEqual(s.Paths(), []string{"/_app/start.js", "/index.html"}) {
			t.Errorf("unexpected paths: %v", s.Paths())
		}
	})
}
