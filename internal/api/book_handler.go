// Package api implements the HTTP endpoints for the bookshelf: uploads,
// extraction status, chapter and page retrieval, bookmarks, and reading
// progress.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/softcover/softcover/internal/extract"
	"github.com/softcover/softcover/internal/library"
	"github.com/softcover/softcover/internal/progress"
	"github.com/softcover/softcover/pkg/types"
)

// maxUploadBytes caps multipart upload memory.
const maxUploadBytes = 100 << 20

// BookHandler handles book-related API endpoints.
type BookHandler struct {
	repo    library.Repository
	factory extract.Factory
	pdf     *extract.PDFExtractor
	logger  *zap.Logger
}

// NewBookHandler creates a new book handler.
func NewBookHandler(repo library.Repository, factory extract.Factory, pdf *extract.PDFExtractor, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		repo:    repo,
		factory: factory,
		pdf:     pdf,
		logger:  logger,
	}
}

// UploadBook handles POST /api/v1/books.
func (h *BookHandler) UploadBook(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.ListBooks(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	author := r.FormValue("author")

	// Detect format from the filename extension.
	ext := strings.ToLower(filepath.Ext(header.Filename))
	format := strings.TrimPrefix(ext, ".")
	if format == "" {
		respondError(w, "Could not detect file format", http.StatusBadRequest)
		return
	}
	if _, err := h.factory.GetExtractor(format); err != nil {
		respondError(w, fmt.Sprintf("Unsupported format: %s", format), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	if title == "" {
		title = strings.TrimSuffix(header.Filename, ext)
	}

	newBook := &types.Book{
		ID:         uuid.NewString(),
		Title:      title,
		Author:     author,
		SourcePath: header.Filename,
		Format:     format,
		Status:     types.StatusUploaded,
		AddedDate:  time.Now(),
		Bookmarks:  []types.Bookmark{},
	}

	ctx := r.Context()
	if err := h.repo.SaveBook(ctx, newBook); err != nil {
		h.logger.Error("failed to save book record", zap.String("book_id", newBook.ID), zap.Error(err))
		respondError(w, "Failed to save book", http.StatusInternalServerError)
		return
	}
	if err := h.repo.SaveRawFile(ctx, newBook.ID, data, format); err != nil {
		h.logger.Error("failed to save raw file", zap.String("book_id", newBook.ID), zap.Error(err))
		respondError(w, "Failed to save raw file", http.StatusInternalServerError)
		return
	}

	bookID := newBook.ID
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				h.logger.Error("panic during extraction",
					zap.String("book_id", bookID),
					zap.Any("panic", rec))
				h.updateBookError(context.Background(), bookID, fmt.Sprintf("extraction panic: %v", rec))
			}
		}()
		h.processBook(bookID, data, format)
	}()

	respondJSON(w, newBook, http.StatusCreated)
}

// processBook runs extraction in the background and records the outcome.
func (h *BookHandler) processBook(bookID string, data []byte, format string) {
	ctx := context.Background()

	book, err := h.repo.GetBook(ctx, bookID)
	if err != nil {
		h.logger.Error("book record vanished before extraction", zap.String("book_id", bookID), zap.Error(err))
		return
	}
	book.Status = types.StatusExtracting
	if err := h.repo.SaveBook(ctx, book); err != nil {
		h.logger.Warn("failed to record extracting status", zap.String("book_id", bookID), zap.Error(err))
	}

	extractor, err := h.factory.GetExtractor(format)
	if err != nil {
		h.updateBookError(ctx, bookID, err.Error())
		return
	}

	result, err := extractor.Extract(ctx, data)
	if err != nil {
		h.logger.Error("extraction failed",
			zap.String("book_id", bookID),
			zap.String("format", format),
			zap.Error(err))
		h.updateBookError(ctx, bookID, err.Error())
		return
	}

	for _, chapter := range result.Chapters {
		chapter.BookID = bookID
	}
	if len(result.Chapters) > 0 {
		if err := h.repo.SaveChapters(ctx, bookID, result.Chapters); err != nil {
			h.updateBookError(ctx, bookID, fmt.Sprintf("save chapters: %v", err))
			return
		}
	}
	if len(result.Styles) > 0 {
		if err := h.repo.SaveStyles(ctx, bookID, result.Styles); err != nil {
			h.updateBookError(ctx, bookID, fmt.Sprintf("save styles: %v", err))
			return
		}
	}

	// Re-read the record before stamping ready: bookmark, progress, or
	// last-opened writes may have landed while extraction ran.
	book, err = h.repo.GetBook(ctx, bookID)
	if err != nil {
		h.logger.Error("book record vanished during extraction", zap.String("book_id", bookID), zap.Error(err))
		return
	}
	book.Status = types.StatusReady
	book.Error = ""
	book.Progress = types.Progress{
		CurrentPosition: book.Progress.CurrentPosition,
		TotalPositions:  result.Positions(),
		Percentage:      book.Progress.Percentage,
	}
	if err := h.repo.SaveBook(ctx, book); err != nil {
		h.logger.Error("failed to record ready status", zap.String("book_id", bookID), zap.Error(err))
		return
	}

	h.logger.Info("book extracted",
		zap.String("book_id", bookID),
		zap.String("format", format),
		zap.Int("chapters", len(result.Chapters)),
		zap.Int("pages", result.TotalPages))
}

// updateBookError marks a book as failed with the given message.
func (h *BookHandler) updateBookError(ctx context.Context, bookID, errorMsg string) {
	book, err := h.repo.GetBook(ctx, bookID)
	if err != nil || book == nil {
		return
	}
	book.Status = types.StatusError
	book.Error = errorMsg
	if err := h.repo.SaveBook(ctx, book); err != nil {
		h.logger.Error("failed to record error status", zap.String("book_id", bookID), zap.Error(err))
	}
}

// ListBooks handles GET /api/v1/books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	books, err := h.repo.ListBooks(r.Context())
	if err != nil {
		h.logger.Error("failed to list books", zap.Error(err))
		respondError(w, "Failed to list books", http.StatusInternalServerError)
		return
	}
	respondJSON(w, books, http.StatusOK)
}

// GetBook handles GET /api/v1/books/:id. Opening a book stamps its
// last-opened time.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodDelete:
		h.DeleteBook(w, r)
		return
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	book, err := h.repo.GetBook(r.Context(), bookID)
	if err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}

	book.LastOpened = time.Now()
	if err := h.repo.SaveBook(r.Context(), book); err != nil {
		h.logger.Warn("failed to stamp last opened", zap.String("book_id", bookID), zap.Error(err))
	}

	respondJSON(w, book, http.StatusOK)
}

// DeleteBook handles DELETE /api/v1/books/:id.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	if _, err := h.repo.GetBook(r.Context(), bookID); err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}
	if err := h.repo.DeleteBook(r.Context(), bookID); err != nil {
		h.logger.Error("failed to delete book", zap.String("book_id", bookID), zap.Error(err))
		respondError(w, "Failed to delete book", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]string{"deleted": bookID}, http.StatusOK)
}

// ListChapters handles GET /api/v1/books/:id/chapters.
func (h *BookHandler) ListChapters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	chapters, err := h.repo.ListChapters(r.Context(), bookID)
	if err != nil {
		respondError(w, "Chapters not found", http.StatusNotFound)
		return
	}
	respondJSON(w, chapters, http.StatusOK)
}

// ListStyles handles GET /api/v1/books/:id/styles. Books extracted
// without stylesheets respond with an empty list.
func (h *BookHandler) ListStyles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}
	if _, err := h.repo.GetBook(r.Context(), bookID); err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}

	styles, err := h.repo.ListStyles(r.Context(), bookID)
	if err != nil {
		h.logger.Error("failed to list styles", zap.String("book_id", bookID), zap.Error(err))
		respondError(w, "Failed to list styles", http.StatusInternalServerError)
		return
	}
	if styles == nil {
		styles = []string{}
	}
	respondJSON(w, styles, http.StatusOK)
}

// GetPage handles GET /api/v1/books/:id/pages/:n. Pages are rendered on
// demand from the stored source file.
func (h *BookHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	parts := strings.Split(r.URL.Path, "/pages/")
	if len(parts) < 2 {
		respondError(w, "Page number required", http.StatusBadRequest)
		return
	}
	pageNum, err := strconv.Atoi(parts[1])
	if err != nil || pageNum < 1 {
		respondError(w, "Invalid page number", http.StatusBadRequest)
		return
	}

	book, err := h.repo.GetBook(r.Context(), bookID)
	if err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}
	if book.Format != "pdf" {
		respondError(w, "Book has no pages", http.StatusBadRequest)
		return
	}
	if book.Progress.TotalPositions > 0 && pageNum > book.Progress.TotalPositions {
		respondError(w, fmt.Sprintf("Page %d out of range", pageNum), http.StatusNotFound)
		return
	}

	data, _, err := h.repo.GetRawFile(r.Context(), bookID)
	if err != nil {
		respondError(w, "Source file not found", http.StatusNotFound)
		return
	}

	page, err := h.pdf.RenderPage(r.Context(), data, pageNum)
	if err != nil {
		h.logger.Error("page render failed",
			zap.String("book_id", bookID),
			zap.Int("page", pageNum),
			zap.Error(err))
		respondError(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	respondJSON(w, page, http.StatusOK)
}

// bookmarkRequest is the add-bookmark payload.
type bookmarkRequest struct {
	Position    int    `json:"position"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Bookmarks handles /api/v1/books/:id/bookmarks and
// /api/v1/books/:id/bookmarks/:bookmarkId.
func (h *BookHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	book, err := h.repo.GetBook(r.Context(), bookID)
	if err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(w, book.Bookmarks, http.StatusOK)

	case http.MethodPost:
		var req bookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Position < 1 || (book.Progress.TotalPositions > 0 && req.Position > book.Progress.TotalPositions) {
			respondError(w, "Bookmark position out of range", http.StatusBadRequest)
			return
		}
		bookmark := types.Bookmark{
			ID:          uuid.NewString(),
			Position:    req.Position,
			Title:       req.Title,
			Description: req.Description,
			CreatedAt:   time.Now(),
		}
		book.Bookmarks = append(book.Bookmarks, bookmark)
		if err := h.repo.SaveBook(r.Context(), book); err != nil {
			respondError(w, "Failed to save bookmark", http.StatusInternalServerError)
			return
		}
		respondJSON(w, bookmark, http.StatusCreated)

	case http.MethodDelete:
		parts := strings.Split(r.URL.Path, "/bookmarks/")
		if len(parts) < 2 || parts[1] == "" {
			respondError(w, "Bookmark ID required", http.StatusBadRequest)
			return
		}
		bookmarkID := parts[1]
		kept := book.Bookmarks[:0]
		found := false
		for _, bm := range book.Bookmarks {
			if bm.ID == bookmarkID {
				found = true
				continue
			}
			kept = append(kept, bm)
		}
		if !found {
			respondError(w, "Bookmark not found", http.StatusNotFound)
			return
		}
		book.Bookmarks = kept
		if err := h.repo.SaveBook(r.Context(), book); err != nil {
			respondError(w, "Failed to delete bookmark", http.StatusInternalServerError)
			return
		}
		respondJSON(w, map[string]string{"deleted": bookmarkID}, http.StatusOK)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// progressRequest is the update-progress payload.
type progressRequest struct {
	CurrentPosition int `json:"current_position"`
}

// UpdateProgress handles PUT /api/v1/books/:id/progress.
func (h *BookHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bookID := extractIDFromPath(r.URL.Path, "/api/v1/books/")
	if bookID == "" {
		respondError(w, "Book ID required", http.StatusBadRequest)
		return
	}

	book, err := h.repo.GetBook(r.Context(), bookID)
	if err != nil {
		respondError(w, "Book not found", http.StatusNotFound)
		return
	}

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	total := book.Progress.TotalPositions
	current := progress.Clamp(req.CurrentPosition, total)
	book.Progress = types.Progress{
		CurrentPosition: current,
		TotalPositions:  total,
		Percentage:      progress.Percentage(current, total),
	}
	if err := h.repo.SaveBook(r.Context(), book); err != nil {
		respondError(w, "Failed to save progress", http.StatusInternalServerError)
		return
	}
	respondJSON(w, book.Progress, http.StatusOK)
}

// Helper functions

func extractIDFromPath(path, prefix string) string {
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) > 0 {
		return parts[0]
	}
	return ""
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
