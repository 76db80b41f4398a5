package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/softcover/softcover/pkg/types"
)

var (
	booksBucket    = []byte("books")
	chaptersBucket = []byte("chapters")
	stylesBucket   = []byte("styles")
	filesBucket    = []byte("files")
	formatsBucket  = []byte("formats")
)

// BoltRepository keeps the bookshelf in a single bbolt file: book and
// chapter records as JSON values, raw files as plain bytes, all keyed by
// book ID.
type BoltRepository struct {
	db *bolt.DB
}

// NewBoltRepository opens (creating if needed) the bbolt file at dbPath
// and ensures the buckets exist.
func NewBoltRepository(dbPath string) (*BoltRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open library database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{booksBucket, chaptersBucket, stylesBucket, filesBucket, formatsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create library buckets: %w", err)
	}

	return &BoltRepository{db: db}, nil
}

// SaveBook stores or replaces a book record.
func (r *BoltRepository) SaveBook(ctx context.Context, book *types.Book) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).Put([]byte(book.ID), data)
	})
}

// GetBook retrieves a book record by ID.
func (r *BoltRepository) GetBook(ctx context.Context, bookID string) (*types.Book, error) {
	var book *types.Book
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(booksBucket).Get([]byte(bookID))
		if v == nil {
			return fmt.Errorf("book not found: %s", bookID)
		}
		book = new(types.Book)
		return json.Unmarshal(v, book)
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ListBooks returns every book on the shelf, skipping undecodable records.
func (r *BoltRepository) ListBooks(ctx context.Context) ([]*types.Book, error) {
	books := make([]*types.Book, 0)
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(booksBucket).ForEach(func(k, v []byte) error {
			var book types.Book
			if err := json.Unmarshal(v, &book); err != nil {
				return nil
			}
			books = append(books, &book)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// DeleteBook removes a book record plus its chapters and raw file.
func (r *BoltRepository) DeleteBook(ctx context.Context, bookID string) error {
	key := []byte(bookID)
	return r.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{booksBucket, chaptersBucket, stylesBucket, filesBucket, formatsBucket} {
			if err := tx.Bucket(name).Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveChapters stores the chapter sequence as one ordered document.
func (r *BoltRepository) SaveChapters(ctx context.Context, bookID string, chapters []*types.Chapter) error {
	data, err := json.Marshal(chapters)
	if err != nil {
		return fmt.Errorf("marshal chapters: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(chaptersBucket).Put([]byte(bookID), data)
	})
}

// ListChapters returns a book's chapters in reading order.
func (r *BoltRepository) ListChapters(ctx context.Context, bookID string) ([]*types.Chapter, error) {
	var chapters []*types.Chapter
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(chaptersBucket).Get([]byte(bookID))
		if v == nil {
			return fmt.Errorf("chapters not found for book %s", bookID)
		}
		return json.Unmarshal(v, &chapters)
	})
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

// SaveStyles stores the stylesheet text as one document keyed by book ID.
func (r *BoltRepository) SaveStyles(ctx context.Context, bookID string, styles []string) error {
	data, err := json.Marshal(styles)
	if err != nil {
		return fmt.Errorf("marshal styles: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stylesBucket).Put([]byte(bookID), data)
	})
}

// ListStyles returns a book's stylesheet text, empty when none were
// declared.
func (r *BoltRepository) ListStyles(ctx context.Context, bookID string) ([]string, error) {
	var styles []string
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stylesBucket).Get([]byte(bookID))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &styles)
	})
	if err != nil {
		return nil, err
	}
	return styles, nil
}

// SaveRawFile stores the uploaded source bytes and remembers their format.
func (r *BoltRepository) SaveRawFile(ctx context.Context, bookID string, data []byte, format string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(filesBucket).Put([]byte(bookID), data); err != nil {
			return err
		}
		return tx.Bucket(formatsBucket).Put([]byte(bookID), []byte(format))
	})
}

// GetRawFile retrieves the uploaded source bytes and their format.
func (r *BoltRepository) GetRawFile(ctx context.Context, bookID string) ([]byte, string, error) {
	var data []byte
	var format string
	err := r.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(filesBucket).Get([]byte(bookID))
		if v == nil {
			return fmt.Errorf("raw file not found for book %s", bookID)
		}
		// Values are only valid inside the transaction.
		data = append([]byte(nil), v...)
		format = string(tx.Bucket(formatsBucket).Get([]byte(bookID)))
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

// Close closes the underlying database file.
func (r *BoltRepository) Close() error {
	return r.db.Close()
}
