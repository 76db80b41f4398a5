package sanitize

import (
	"strings"
	"testing"
)

func TestContent(t *testing.T) {
	s := New(0)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "strips script blocks",
			raw:  "<p>keep</p><script>alert(1)</script><p>also</p>",
			want: "<p>keep</p><p>also</p>",
		},
		{
			name: "strips style blocks",
			raw:  "<style>p { color: red }</style><p>text</p>",
			want: "<p>text</p>",
		},
		{
			name: "strips meta and link tags",
			raw:  `<meta charset="utf-8"><link rel="stylesheet" href="a.css"><p>x</p>`,
			want: "<p>x</p>",
		},
		{
			name: "decodes standard entities",
			raw:  "<p>Fish &amp; Chips &lt;tasty&gt; &quot;yes&quot; &apos;ok&apos;</p>",
			want: `<p>Fish & Chips <tasty> "yes" 'ok'</p>`,
		},
		{
			name: "leaves numeric references alone",
			raw:  "<p>&#8212; and &#x2014;</p>",
			want: "<p>&#8212; and &#x2014;</p>",
		},
		{
			name: "isolates body content",
			raw:  "<html><head><title>T</title></head><body class=\"x\"><p>inner</p></body></html>",
			want: "<p>inner</p>",
		},
		{
			name: "trims surrounding whitespace",
			raw:  "  \n <p>a</p> \n ",
			want: "<p>a</p>",
		},
		{
			name: "whitespace only becomes empty",
			raw:  "   \n\t  ",
			want: "",
		},
		{
			name: "preserves structural tags",
			raw:  "<div><em>em</em> <strong>strong</strong></div>",
			want: "<div><em>em</em> <strong>strong</strong></div>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Content(tt.raw)
			if got != tt.want {
				t.Errorf("Content(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestContent_DoesNotReEscapeEntities(t *testing.T) {
	s := New(0)
	got := s.Content("<p>a &amp; b</p>")
	if strings.Contains(got, "&amp;") {
		t.Errorf("decoded ampersand was re-escaped: %q", got)
	}
	if got != "<p>a & b</p>" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestChapterTitle(t *testing.T) {
	s := New(0)

	tests := []struct {
		name    string
		raw     string
		ordinal int
		want    string
	}{
		{
			name:    "prefers title element",
			raw:     "<html><head><title>The Title</title></head><body><h1>Heading</h1></body></html>",
			ordinal: 1,
			want:    "The Title",
		},
		{
			name:    "falls back to h1",
			raw:     "<body><h1>First Heading</h1><h2>Sub</h2></body>",
			ordinal: 2,
			want:    "First Heading",
		},
		{
			name:    "falls back to h2 then h3",
			raw:     "<body><h3>Deep Heading</h3></body>",
			ordinal: 3,
			want:    "Deep Heading",
		},
		{
			name:    "empty title element skipped in favor of h1",
			raw:     "<title>   </title><h1>Real</h1>",
			ordinal: 1,
			want:    "Real",
		},
		{
			name:    "nested markup stripped from title",
			raw:     "<h1>Chapter <em>One</em></h1>",
			ordinal: 1,
			want:    "Chapter One",
		},
		{
			name:    "synthesizes from ordinal when nothing found",
			raw:     "<p>No headings here.</p>",
			ordinal: 7,
			want:    "Chapter 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ChapterTitle(tt.raw, tt.ordinal)
			if got != tt.want {
				t.Errorf("ChapterTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTitleText_CollapsesWhitespace(t *testing.T) {
	s := New(0)
	got := s.TitleText("  A \n\n  Very\t Spaced   Title  ")
	if got != "A Very Spaced Title" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
}

func TestTitleText_CapsLength(t *testing.T) {
	s := New(10)
	got := s.TitleText("abcdefghijklmnop")
	if got != "abcdefghij" {
		t.Errorf("expected 10-rune cap, got %q", got)
	}

	// The cap counts runes, not bytes.
	s2 := New(3)
	got2 := s2.TitleText("héllo")
	if got2 != "hél" {
		t.Errorf("expected rune-based cap, got %q", got2)
	}
}

func TestNew_DefaultCap(t *testing.T) {
	s := New(-1)
	long := strings.Repeat("x", DefaultMaxTitleLength+50)
	got := s.TitleText(long)
	if len(got) != DefaultMaxTitleLength {
		t.Errorf("expected default cap %d, got %d", DefaultMaxTitleLength, len(got))
	}
}
