// Package library persists the bookshelf: Book records with their
// bookmarks and reading progress, the extracted chapter model, and the
// raw uploaded files. Two backends exist, selected by configuration:
// JSON records on a storage adapter, or a bbolt key-value file.
package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/softcover/softcover/internal/storage"
	"github.com/softcover/softcover/pkg/types"
)

// rawFormats are the source formats tried when fetching a raw file.
var rawFormats = []string{"epub", "pdf"}

// Repository is the bookshelf persistence boundary. The extraction engine
// never touches it; the API layer records extraction results through it.
type Repository interface {
	// SaveBook stores or replaces a book record.
	SaveBook(ctx context.Context, book *types.Book) error

	// GetBook retrieves a book record by ID.
	GetBook(ctx context.Context, bookID string) (*types.Book, error)

	// ListBooks returns every book on the shelf.
	ListBooks(ctx context.Context) ([]*types.Book, error)

	// DeleteBook removes a book record plus its chapters and raw file.
	DeleteBook(ctx context.Context, bookID string) error

	// SaveChapters stores a book's extracted chapter sequence, replacing
	// any previous one.
	SaveChapters(ctx context.Context, bookID string, chapters []*types.Chapter) error

	// ListChapters returns a book's chapters in reading order.
	ListChapters(ctx context.Context, bookID string) ([]*types.Chapter, error)

	// SaveStyles stores the stylesheet text declared by a book's manifest.
	SaveStyles(ctx context.Context, bookID string, styles []string) error

	// ListStyles returns a book's stylesheet text. Books extracted without
	// stylesheets yield an empty list, not an error.
	ListStyles(ctx context.Context, bookID string) ([]string, error)

	// SaveRawFile stores the uploaded source bytes.
	SaveRawFile(ctx context.Context, bookID string, data []byte, format string) error

	// GetRawFile retrieves the uploaded source bytes and their format.
	GetRawFile(ctx context.Context, bookID string) ([]byte, string, error)

	// Close releases backend resources.
	Close() error
}

// StorageRepository keeps JSON records on a storage adapter:
// books/<id>/book.json, books/<id>/chapters.json, books/<id>/raw.<format>.
type StorageRepository struct {
	storage storage.Adapter
}

// NewStorageRepository creates a repository over the given adapter.
func NewStorageRepository(adapter storage.Adapter) *StorageRepository {
	return &StorageRepository{storage: adapter}
}

// SaveBook stores or replaces a book record.
func (r *StorageRepository) SaveBook(ctx context.Context, book *types.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	return r.storage.Put(ctx, bookPath(book.ID), bytes.NewReader(data))
}

// GetBook retrieves a book record by ID.
func (r *StorageRepository) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	rc, err := r.storage.Get(ctx, bookPath(bookID))
	if err != nil {
		return nil, fmt.Errorf("get book record: %w", err)
	}
	defer rc.Close()

	var book types.Book
	if err := json.NewDecoder(rc).Decode(&book); err != nil {
		return nil, fmt.Errorf("decode book record: %w", err)
	}
	return &book, nil
}

// ListBooks returns every book on the shelf, skipping records that can no
// longer be read or decoded.
func (r *StorageRepository) ListBooks(ctx context.Context) ([]*types.Book, error) {
	paths, err := r.storage.List(ctx, "books/")
	if err != nil {
		return nil, fmt.Errorf("list book records: %w", err)
	}

	books := make([]*types.Book, 0)
	for _, p := range paths {
		if path.Base(p) != "book.json" {
			continue
		}
		rc, err := r.storage.Get(ctx, p)
		if err != nil {
			continue
		}
		var book types.Book
		decodeErr := json.NewDecoder(rc).Decode(&book)
		rc.Close()
		if decodeErr != nil {
			continue
		}
		books = append(books, &book)
	}
	return books, nil
}

// DeleteBook removes a book record plus its chapters and raw file.
func (r *StorageRepository) DeleteBook(ctx context.Context, bookID string) error {
	paths, err := r.storage.List(ctx, path.Join("books", bookID)+"/")
	if err != nil {
		return fmt.Errorf("list book blobs: %w", err)
	}
	for _, p := range paths {
		if err := r.storage.Delete(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// SaveChapters stores the chapter sequence as one ordered document.
func (r *StorageRepository) SaveChapters(ctx context.Context, bookID string, chapters []*types.Chapter) error {
	data, err := json.Marshal(chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters: %w", err)
	}
	return r.storage.Put(ctx, chaptersPath(bookID), bytes.NewReader(data))
}

// ListChapters returns a book's chapters in reading order.
func (r *StorageRepository) ListChapters(ctx context.Context, bookID string) ([]*types.Chapter, error) {
	rc, err := r.storage.Get(ctx, chaptersPath(bookID))
	if err != nil {
		return nil, fmt.Errorf("get chapters: %w", err)
	}
	defer rc.Close()

	var chapters []*types.Chapter
	if err := json.NewDecoder(rc).Decode(&chapters); err != nil {
		return nil, fmt.Errorf("decode chapters: %w", err)
	}
	return chapters, nil
}

// SaveStyles stores the stylesheet text as one document next to the
// chapters.
func (r *StorageRepository) SaveStyles(ctx context.Context, bookID string, styles []string) error {
	data, err := json.Marshal(styles)
	if err != nil {
		return fmt.Errorf("marshal styles: %w", err)
	}
	return r.storage.Put(ctx, stylesPath(bookID), bytes.NewReader(data))
}

// ListStyles returns a book's stylesheet text, empty when none were
// declared.
func (r *StorageRepository) ListStyles(ctx context.Context, bookID string) ([]string, error) {
	exists, err := r.storage.Exists(ctx, stylesPath(bookID))
	if err != nil {
		return nil, fmt.Errorf("check styles: %w", err)
	}
	if !exists {
		return nil, nil
	}

	rc, err := r.storage.Get(ctx, stylesPath(bookID))
	if err != nil {
		return nil, fmt.Errorf("get styles: %w", err)
	}
	defer rc.Close()

	var styles []string
	if err := json.NewDecoder(rc).Decode(&styles); err != nil {
		return nil, fmt.Errorf("decode styles: %w", err)
	}
	return styles, nil
}

// SaveRawFile stores the uploaded source bytes.
func (r *StorageRepository) SaveRawFile(ctx context.Context, bookID string, data []byte, format string) error {
	return r.storage.Put(ctx, rawPath(bookID, format), bytes.NewReader(data))
}

// GetRawFile retrieves the uploaded source bytes, trying each supported
// format suffix.
func (r *StorageRepository) GetRawFile(ctx context.Context, bookID string) ([]byte, string, error) {
	for _, format := range rawFormats {
		p := rawPath(bookID, format)
		exists, err := r.storage.Exists(ctx, p)
		if err != nil || !exists {
			continue
		}
		rc, err := r.storage.Get(ctx, p)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read raw file: %w", err)
		}
		return data, format, nil
	}
	return nil, "", fmt.Errorf("raw file not found for book %s", bookID)
}

// Close is a no-op; the adapter is owned by the caller.
func (r *StorageRepository) Close() error {
	return nil
}

func bookPath(bookID string) string {
	return path.Join("books", bookID, "book.json")
}

func chaptersPath(bookID string) string {
	return path.Join("books", bookID, "chapters.json")
}

func stylesPath(bookID string) string {
	return path.Join("books", bookID, "styles.json")
}

func rawPath(bookID, format string) string {
	return path.Join("books", bookID, "raw."+format)
}
