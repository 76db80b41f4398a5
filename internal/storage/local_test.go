package storage

import (
	"bytes"
	"context"
	"io"
	"testing"
)

func newTestAdapter(t *testing.T) *LocalAdapter {
	t.Helper()
	adapter, err := NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalAdapter failed: %v", err)
	}
	return adapter
}

func TestLocalAdapter_PutGet(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	if err := adapter.Put(ctx, "books/b1/book.json", bytes.NewReader([]byte(`{"id":"b1"}`))); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rc, err := adapter.Get(ctx, "books/b1/book.json")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != `{"id":"b1"}` {
		t.Errorf("unexpected content: %s", data)
	}
}

func TestLocalAdapter_GetMissing(t *testing.T) {
	adapter := newTestAdapter(t)
	if _, err := adapter.Get(context.Background(), "nope.json"); err == nil {
		t.Fatal("expected error for missing blob")
	}
}

func TestLocalAdapter_Exists(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	exists, err := adapter.Exists(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("expected missing blob to not exist")
	}

	adapter.Put(ctx, "a/b.txt", bytes.NewReader([]byte("x")))

	exists, err = adapter.Exists(ctx, "a/b.txt")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected stored blob to exist")
	}
}

func TestLocalAdapter_Delete(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	adapter.Put(ctx, "x.txt", bytes.NewReader([]byte("x")))
	if err := adapter.Delete(ctx, "x.txt"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if exists, _ := adapter.Exists(ctx, "x.txt"); exists {
		t.Error("blob still exists after delete")
	}

	// Deleting a missing blob is not an error.
	if err := adapter.Delete(ctx, "x.txt"); err != nil {
		t.Errorf("repeat delete failed: %v", err)
	}
}

func TestLocalAdapter_List(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()

	adapter.Put(ctx, "books/b1/book.json", bytes.NewReader([]byte("1")))
	adapter.Put(ctx, "books/b1/raw.epub", bytes.NewReader([]byte("2")))
	adapter.Put(ctx, "books/b2/book.json", bytes.NewReader([]byte("3")))
	adapter.Put(ctx, "other/ignore.txt", bytes.NewReader([]byte("4")))

	paths, err := adapter.List(ctx, "books/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %d: %v", len(paths), paths)
	}
	for _, p := range paths {
		if p[:6] != "books/" {
			t.Errorf("unexpected path outside prefix: %s", p)
		}
	}
}
