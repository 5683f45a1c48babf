package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stores lists every backend that can run without external infrastructure.
func stores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			info, err := store.Put(ctx, "offspring/o1/contract.pdf", strings.NewReader("payload"), PutOptions{
				ContentType: "application/pdf",
				Metadata:    map[string]string{"uploadedBy": "kerstin"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len("payload")) {
				t.Fatalf("size mismatch: %d", info.Size)
			}

			got, rc, err := store.Get(ctx, "offspring/o1/contract.pdf")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer func() { _ = rc.Close() }()
			body, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(body) != "payload" {
				t.Fatalf("content mismatch: %q", body)
			}
			if got.ContentType != "application/pdf" {
				t.Fatalf("content type lost: %q", got.ContentType)
			}
			if got.Metadata["uploadedBy"] != "kerstin" {
				t.Fatalf("metadata lost: %+v", got.Metadata)
			}
		})
	}
}

func TestPutRejectsExistingKey(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Put(ctx, "k", strings.NewReader("a"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Put(ctx, "k", strings.NewReader("b"), PutOptions{}); err == nil {
				t.Fatalf("second put on the same key must fail")
			}
		})
	}
}

func TestDeleteReportsExistence(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := store.Put(ctx, "k", strings.NewReader("a"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			existed, err := store.Delete(ctx, "k")
			if err != nil || !existed {
				t.Fatalf("delete existing: %v %v", existed, err)
			}
			existed, err = store.Delete(ctx, "k")
			if err != nil || existed {
				t.Fatalf("delete missing must be (false, nil): %v %v", existed, err)
			}
		})
	}
}

func TestListByPrefixSorted(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"offspring/o1/b.pdf", "offspring/o1/a.pdf", "offspring/o2/c.pdf"} {
				if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}
			infos, err := store.List(ctx, "offspring/o1/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 {
				t.Fatalf("expected 2 keys, got %d", len(infos))
			}
			if infos[0].Key != "offspring/o1/a.pdf" || infos[1].Key != "offspring/o1/b.pdf" {
				t.Fatalf("list not key ascending: %+v", infos)
			}
		})
	}
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "../escape", "/absolute", "a/../../escape"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestFilesystemWritesMetaSidecar(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	if _, err := store.Put(context.Background(), "docs/a.txt", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "docs", "a.txt.meta")); err != nil {
		t.Fatalf("meta sidecar missing: %v", err)
	}
}

func TestPresignURLCapabilities(t *testing.T) {
	ctx := context.Background()

	if _, err := NewMemory().PresignURL(ctx, "k", SignedURLOptions{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("memory presign must be unsupported, got %v", err)
	}

	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	u, err := fsStore.PresignURL(ctx, "docs/a.txt", SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(u, "http://local.blob/") {
		t.Fatalf("unexpected url %q", u)
	}
	if _, err := fsStore.PresignURL(ctx, "docs/a.txt", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("non-GET presign must be unsupported, got %v", err)
	}
}

func TestOpenSelectsDriverFromEnv(t *testing.T) {
	t.Setenv("BREEDCORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %s", store.Driver())
	}

	t.Setenv("BREEDCORE_BLOB_DRIVER", "carrier-pigeon")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("unknown driver must fail")
	}
}
