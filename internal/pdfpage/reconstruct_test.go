package pdfpage

import (
	"reflect"
	"testing"
)

func TestGroupLines(t *testing.T) {
	r := NewReconstructor(10)

	t.Run("groups nearby runs onto one line", func(t *testing.T) {
		// Y values are top-down here. 100 and 104 share a line; 140 starts
		// a new one.
		runs := []TextRun{
			{Text: "B", X: 50, Y: 104},
			{Text: "A", X: 10, Y: 100},
			{Text: "C", X: 10, Y: 140},
		}

		lines := r.GroupLines(runs)
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if got := joinLine(lines[0]); got != "AB" {
			t.Errorf("first line: expected AB, got %s", got)
		}
		if got := joinLine(lines[1]); got != "C" {
			t.Errorf("second line: expected C, got %s", got)
		}
	})

	t.Run("orders within a line by X", func(t *testing.T) {
		runs := []TextRun{
			{Text: "world", X: 100, Y: 50},
			{Text: "hello ", X: 10, Y: 52},
		}
		lines := r.GroupLines(runs)
		if len(lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(lines))
		}
		if got := joinLine(lines[0]); got != "hello world" {
			t.Errorf("expected 'hello world', got %q", got)
		}
	})

	t.Run("difference exactly at tolerance splits lines", func(t *testing.T) {
		runs := []TextRun{
			{Text: "A", X: 0, Y: 100},
			{Text: "B", X: 0, Y: 110},
		}
		lines := r.GroupLines(runs)
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines at exact tolerance, got %d", len(lines))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if lines := r.GroupLines(nil); lines != nil {
			t.Errorf("expected nil for empty input, got %v", lines)
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		runs := []TextRun{
			{Text: "B", X: 50, Y: 10},
			{Text: "A", X: 10, Y: 10},
		}
		snapshot := make([]TextRun, len(runs))
		copy(snapshot, runs)
		r.GroupLines(runs)
		if !reflect.DeepEqual(runs, snapshot) {
			t.Error("GroupLines mutated its input")
		}
	})
}

func TestGroupLines_CustomTolerance(t *testing.T) {
	// With a wide tolerance the same runs collapse onto one line.
	narrow := NewReconstructor(5)
	wide := NewReconstructor(20)

	runs := []TextRun{
		{Text: "A", X: 0, Y: 100},
		{Text: "B", X: 10, Y: 108},
	}

	if got := len(narrow.GroupLines(runs)); got != 2 {
		t.Errorf("tolerance 5: expected 2 lines, got %d", got)
	}
	if got := len(wide.GroupLines(runs)); got != 1 {
		t.Errorf("tolerance 20: expected 1 line, got %d", got)
	}
}

func TestNewReconstructor_DefaultTolerance(t *testing.T) {
	r := NewReconstructor(0)
	if r.tolerance != DefaultLineTolerance {
		t.Errorf("expected default tolerance %v, got %v", DefaultLineTolerance, r.tolerance)
	}
}

func TestPageMarkup(t *testing.T) {
	r := NewReconstructor(10)

	t.Run("flips bottom-up coordinates into reading order", func(t *testing.T) {
		// Higher native Y means nearer the top of the page.
		runs := []TextRun{
			{Text: "bottom line", X: 10, Y: 50},
			{Text: "top line", X: 10, Y: 700},
		}
		got := r.PageMarkup(runs, 792)
		want := "<p>top line</p>\n<p>bottom line</p>"
		if got != want {
			t.Errorf("PageMarkup = %q, want %q", got, want)
		}
	})

	t.Run("escapes angle brackets only", func(t *testing.T) {
		runs := []TextRun{
			{Text: `x < y > z & "q"`, X: 0, Y: 100},
		}
		got := r.PageMarkup(runs, 200)
		want := `<p>x &lt; y &gt; z & "q"</p>`
		if got != want {
			t.Errorf("PageMarkup = %q, want %q", got, want)
		}
	})

	t.Run("drops whitespace-only lines", func(t *testing.T) {
		runs := []TextRun{
			{Text: "   ", X: 0, Y: 300},
			{Text: "real", X: 0, Y: 100},
		}
		got := r.PageMarkup(runs, 400)
		if got != "<p>real</p>" {
			t.Errorf("expected blank line dropped, got %q", got)
		}
	})

	t.Run("no runs yields empty markup", func(t *testing.T) {
		if got := r.PageMarkup(nil, 792); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

func joinLine(line []TextRun) string {
	var out string
	for _, run := range line {
		out += run.Text
	}
	return out
}
