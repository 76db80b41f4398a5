// Package sanitize prepares raw chapter markup for display and derives
// human-readable chapter titles from it.
package sanitize

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMaxTitleLength caps derived titles when no explicit cap is configured.
const DefaultMaxTitleLength = 120

var (
	scriptPattern = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
	metaPattern   = regexp.MustCompile(`(?is)<meta\b[^>]*>`)
	linkPattern   = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	bodyPattern   = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
)

// entityReplacer decodes the five standard named entities. Every other
// entity is left untouched: the display layer renders markup, and numeric
// references survive as-is.
var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// Sanitizer cleans content markup for display. The zero value is not
// usable; construct with New.
type Sanitizer struct {
	maxTitleLength int
}

// New returns a Sanitizer whose derived titles are capped at maxTitleLength
// runes. Non-positive values fall back to DefaultMaxTitleLength.
func New(maxTitleLength int) *Sanitizer {
	if maxTitleLength <= 0 {
		maxTitleLength = DefaultMaxTitleLength
	}
	return &Sanitizer{maxTitleLength: maxTitleLength}
}

// Content sanitizes one content file's raw markup for display. Script
// blocks, style blocks, and meta/link tags are removed, the five standard
// named entities are decoded, and surrounding whitespace is trimmed. If a
// <body> wrapper is present only its inner markup is returned; all other
// tags are preserved so the display layer can render them.
//
// The original markup is intentionally NOT re-parsed and re-serialized: a
// round-trip through an HTML parser re-escapes decoded entities, which
// would undo the entity contract above.
func (s *Sanitizer) Content(raw string) string {
	cleaned := scriptPattern.ReplaceAllString(raw, "")
	cleaned = stylePattern.ReplaceAllString(cleaned, "")
	cleaned = metaPattern.ReplaceAllString(cleaned, "")
	cleaned = linkPattern.ReplaceAllString(cleaned, "")
	cleaned = entityReplacer.Replace(cleaned)
	cleaned = strings.TrimSpace(cleaned)

	if m := bodyPattern.FindStringSubmatch(cleaned); m != nil {
		return strings.TrimSpace(m[1])
	}
	return cleaned
}

// titlePatterns are tried in priority order; the first pattern whose match
// still has text after tag stripping wins.
var titlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`),
	regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`),
	regexp.MustCompile(`(?is)<h2[^>]*>(.*?)</h2>`),
	regexp.MustCompile(`(?is)<h3[^>]*>(.*?)</h3>`),
}

// ChapterTitle derives a display title for a chapter from its raw markup,
// searching <title>, then <h1>, <h2>, <h3>. When nothing usable is found
// the title is synthesized from the chapter's ordinal.
func (s *Sanitizer) ChapterTitle(raw string, ordinal int) string {
	for _, p := range titlePatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			if title := s.TitleText(m[1]); title != "" {
				return title
			}
		}
	}
	return fmt.Sprintf("Chapter %d", ordinal)
}

// TitleText strips all markup from fragment, collapses whitespace runs and
// blank lines to single spaces, and caps the result at the configured rune
// length. Used only for titles; display content keeps its tags.
func (s *Sanitizer) TitleText(fragment string) string {
	text, err := stripTags(fragment)
	if err != nil {
		return ""
	}
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > s.maxTitleLength {
		text = string(runes[:s.maxTitleLength])
	}
	return text
}

// stripTags extracts plain text from an HTML fragment, skipping script and
// style content entirely.
func stripTags(fragment string) (string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader([]byte(fragment)))

	var buf strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return buf.String(), nil
			}
			return "", err

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				skipDepth++
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skipDepth > 0 {
				skipDepth--
			}

		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tokenizer.Text())
				buf.WriteByte(' ')
			}
		}
	}
}
