package types

import "time"

// Book statuses as the extraction lifecycle advances.
const (
	StatusUploaded   = "uploaded"
	StatusExtracting = "extracting"
	StatusReady      = "ready"
	StatusError      = "error"
)

// Book is the persistent bookshelf record for one source file.
type Book struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author,omitempty"`
	SourcePath string     `json:"source_path"`
	Format     string     `json:"format"` // "epub" or "pdf"
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	AddedDate  time.Time  `json:"added_date"`
	LastOpened time.Time  `json:"last_opened"`
	Bookmarks  []Bookmark `json:"bookmarks"`
	Progress   Progress   `json:"progress"`
}

// Bookmark marks a chapter or page ordinal inside a book. Bookmark IDs are
// unique within the owning book.
type Bookmark struct {
	ID          string    `json:"id"`
	Position    int       `json:"position"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Progress records how far the reader has advanced through a book.
// Percentage is round(current/total*100), clamped to [0,100].
type Progress struct {
	CurrentPosition int `json:"current_position"`
	TotalPositions  int `json:"total_positions"`
	Percentage      int `json:"percentage"`
}

// Chapter is one unit of displayable markup extracted from an archive-format
// book. Number is the 1-based ordinal in reading order; ID is derived from it
// and stays stable across repeated extractions of the same bytes.
type Chapter struct {
	ID      string `json:"id"`
	BookID  string `json:"book_id,omitempty"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Page is one unit of displayable markup reconstructed from a page-oriented
// document. PageNumber is 1-based.
type Page struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// ExtractResult is what an extractor hands back for one source file.
// Archive-format books fill Chapters, plus any stylesheet text the manifest
// declared. Page-oriented books only report how many pages exist, since page
// markup is reconstructed on demand.
type ExtractResult struct {
	Chapters   []*Chapter `json:"chapters,omitempty"`
	Styles     []string   `json:"styles,omitempty"`
	TotalPages int        `json:"total_pages,omitempty"`
}

// Positions returns the number of navigable positions in the result:
// chapters for archive books, pages for page-oriented ones.
func (r *ExtractResult) Positions() int {
	if len(r.Chapters) > 0 {
		return len(r.Chapters)
	}
	return r.TotalPages
}
