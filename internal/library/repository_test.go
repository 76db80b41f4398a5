package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/softcover/softcover/internal/storage"
	"github.com/softcover/softcover/pkg/types"
)

// newRepos returns one repository per backend, each on fresh temp state.
func newRepos(t *testing.T) map[string]Repository {
	t.Helper()

	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("create local adapter: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })

	boltRepo, err := NewBoltRepository(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("create bolt repository: %v", err)
	}
	t.Cleanup(func() { boltRepo.Close() })

	return map[string]Repository{
		"storage": NewStorageRepository(adapter),
		"bolt":    boltRepo,
	}
}

func sampleBook(id string) *types.Book {
	return &types.Book{
		ID:        id,
		Title:     "Sample",
		Author:    "Author",
		Format:    "epub",
		Status:    types.StatusUploaded,
		AddedDate: time.Now().Truncate(time.Second),
		Bookmarks: []types.Bookmark{},
	}
}

func TestRepository_BookLifecycle(t *testing.T) {
	for backend, repo := range newRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			book := sampleBook("b1")

			if err := repo.SaveBook(ctx, book); err != nil {
				t.Fatalf("SaveBook failed: %v", err)
			}

			got, err := repo.GetBook(ctx, "b1")
			if err != nil {
				t.Fatalf("GetBook failed: %v", err)
			}
			if got.ID != "b1" || got.Title != "Sample" || got.Status != types.StatusUploaded {
				t.Errorf("unexpected book: %+v", got)
			}

			// Save is a replace.
			book.Status = types.StatusReady
			if err := repo.SaveBook(ctx, book); err != nil {
				t.Fatalf("second SaveBook failed: %v", err)
			}
			got, err = repo.GetBook(ctx, "b1")
			if err != nil {
				t.Fatalf("GetBook after update failed: %v", err)
			}
			if got.Status != types.StatusReady {
				t.Errorf("expected updated status, got %s", got.Status)
			}

			if _, err := repo.GetBook(ctx, "missing"); err == nil {
				t.Error("expected error for missing book")
			}
		})
	}
}

func TestRepository_ListBooks(t *testing.T) {
	for backend, repo := range newRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			books, err := repo.ListBooks(ctx)
			if err != nil {
				t.Fatalf("ListBooks on empty shelf failed: %v", err)
			}
			if len(books) != 0 {
				t.Errorf("expected empty shelf, got %d books", len(books))
			}

			repo.SaveBook(ctx, sampleBook("b1"))
			repo.SaveBook(ctx, sampleBook("b2"))

			books, err = repo.ListBooks(ctx)
			if err != nil {
				t.Fatalf("ListBooks failed: %v", err)
			}
			if len(books) != 2 {
				t.Errorf("expected 2 books, got %d", len(books))
			}
		})
	}
}

func TestRepository_Chapters(t *testing.T) {
	for backend, repo := range newRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			chapters := []*types.Chapter{
				{ID: "chapter_001", BookID: "b1", Number: 1, Title: "One", Content: "<p>1</p>"},
				{ID: "chapter_002", BookID: "b1", Number: 2, Title: "Two", Content: "<p>2</p>"},
			}
			if err := repo.SaveChapters(ctx, "b1", chapters); err != nil {
				t.Fatalf("SaveChapters failed: %v", err)
			}

			got, err := repo.ListChapters(ctx, "b1")
			if err != nil {
				t.Fatalf("ListChapters failed: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 chapters, got %d", len(got))
			}
			// Reading order survives the round trip.
			if got[0].ID != "chapter_001" || got[1].ID != "chapter_002" {
				t.Errorf("chapter order lost: %s, %s", got[0].ID, got[1].ID)
			}

			if _, err := repo.ListChapters(ctx, "missing"); err == nil {
				t.Error("expected error for missing chapters")
			}
		})
	}
}

func TestRepository_Styles(t *testing.T) {
	for backend, repo := range newRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			// Absent styles read back as empty, not as an error.
			styles, err := repo.ListStyles(ctx, "b1")
			if err != nil {
				t.Fatalf("ListStyles before save failed: %v", err)
			}
			if len(styles) != 0 {
				t.Errorf("expected no styles, got %d", len(styles))
			}

			saved := []string{"body { margin: 1em }", "h1 { font-size: 2em }"}
			if err := repo.SaveStyles(ctx, "b1", saved); err != nil {
				t.Fatalf("SaveStyles failed: %v", err)
			}

			styles, err = repo.ListStyles(ctx, "b1")
			if err != nil {
				t.Fatalf("ListStyles failed: %v", err)
			}
			if len(styles) != 2 {
				t.Fatalf("expected 2 stylesheets, got %d", len(styles))
			}
			// Declaration order survives the round trip.
			if styles[0] != saved[0] || styles[1] != saved[1] {
				t.Errorf("stylesheet order lost: %q", styles)
			}
		})
	}
}

func TestRepository_RawFile(t *testing.T) {
	for backend, repo := range newRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			raw := []byte("PK\x03\x04 fake archive bytes")

			if err := repo.SaveRawFile(ctx, "b1", raw, "epub"); err != nil {
				t.Fatalf("SaveRawFile failed: %v", err)
			}

			data, format, err := repo.GetRawFile(ctx, "b1")
			if err != nil {
				t.Fatalf("GetRawFile failed: %v", err)
			}
			if format != "epub" {
				t.Errorf("expected format epub, got %s", format)
			}
			if string(data) != string(raw) {
				t.Error("raw bytes did not round trip")
			}

			if _, _, err := repo.GetRawFile(ctx, "missing"); err == nil {
				t.Error("expected error for missing raw file")
			}
		})
	}
}

func TestRepository_DeleteBook(t *testing.T) {
	for backend, repo := range newRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			repo.SaveBook(ctx, sampleBook("b1"))
			repo.SaveChapters(ctx, "b1", []*types.Chapter{{ID: "chapter_001", Number: 1}})
			repo.SaveStyles(ctx, "b1", []string{"body {}"})
			repo.SaveRawFile(ctx, "b1", []byte("raw"), "pdf")

			if err := repo.DeleteBook(ctx, "b1"); err != nil {
				t.Fatalf("DeleteBook failed: %v", err)
			}

			if _, err := repo.GetBook(ctx, "b1"); err == nil {
				t.Error("book record survived delete")
			}
			if _, err := repo.ListChapters(ctx, "b1"); err == nil {
				t.Error("chapters survived delete")
			}
			if styles, err := repo.ListStyles(ctx, "b1"); err != nil || len(styles) != 0 {
				t.Errorf("styles survived delete: %q (err %v)", styles, err)
			}
			if _, _, err := repo.GetRawFile(ctx, "b1"); err == nil {
				t.Error("raw file survived delete")
			}
		})
	}
}

func TestNewRepository_BackendSelection(t *testing.T) {
	adapter, err := storage.NewLocalAdapter(t.TempDir())
	if err != nil {
		t.Fatalf("create adapter: %v", err)
	}
	defer adapter.Close()

	t.Run("default is storage", func(t *testing.T) {
		repo, err := NewRepository(types.LibraryConfig{}, adapter)
		if err != nil {
			t.Fatalf("NewRepository failed: %v", err)
		}
		if _, ok := repo.(*StorageRepository); !ok {
			t.Errorf("expected StorageRepository, got %T", repo)
		}
	})

	t.Run("bolt backend", func(t *testing.T) {
		cfg := types.LibraryConfig{
			Backend: "bolt",
			Bolt:    types.BoltOpts{Path: filepath.Join(t.TempDir(), "lib.db")},
		}
		repo, err := NewRepository(cfg, adapter)
		if err != nil {
			t.Fatalf("NewRepository failed: %v", err)
		}
		defer repo.Close()
		if _, ok := repo.(*BoltRepository); !ok {
			t.Errorf("expected BoltRepository, got %T", repo)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := NewRepository(types.LibraryConfig{Backend: "redis"}, adapter); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
