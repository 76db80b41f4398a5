package archive

import (
	"archive/zip"
	"bytes"
	"testing"
)

// buildZip assembles an in-memory ZIP with entries in the given order.
func buildZip(t *testing.T, entries [][2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e[0])
		if err != nil {
			t.Fatalf("create entry %s: %v", e[0], err)
		}
		if _, err := w.Write([]byte(e[1])); err != nil {
			t.Fatalf("write entry %s: %v", e[0], err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestOpen_PreservesEntryOrder(t *testing.T) {
	data := buildZip(t, [][2]string{
		{"zeta.html", "z"},
		{"alpha.html", "a"},
		{"mid/beta.html", "b"},
	})

	a, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	want := []string{"zeta.html", "alpha.html", "mid/beta.html"}
	got := a.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if a.Len() != 3 {
		t.Errorf("expected Len 3, got %d", a.Len())
	}
}

func TestOpen_ReadsEntryContent(t *testing.T) {
	data := buildZip(t, [][2]string{
		{"chapter1.xhtml", "<html><body>Hello</body></html>"},
	})

	a, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	content, ok := a.Read("chapter1.xhtml")
	if !ok {
		t.Fatal("expected entry chapter1.xhtml to exist")
	}
	if string(content) != "<html><body>Hello</body></html>" {
		t.Errorf("unexpected content: %s", content)
	}

	if _, ok := a.Read("missing.xhtml"); ok {
		t.Error("expected missing entry to report !ok")
	}
}

func TestOpen_SkipsDirectories(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("OEBPS/"); err != nil {
		t.Fatalf("create dir entry: %v", err)
	}
	w, err := zw.Create("OEBPS/ch1.html")
	if err != nil {
		t.Fatalf("create file entry: %v", err)
	}
	w.Write([]byte("x"))
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	a, err := Open(buf.Bytes())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if a.Len() != 1 {
		t.Errorf("expected 1 file entry, got %d", a.Len())
	}
}

func TestOpen_RejectsNonZip(t *testing.T) {
	if _, err := Open([]byte("this is not a zip archive")); err == nil {
		t.Fatal("expected error for non-zip bytes")
	}
}

func TestReadFold(t *testing.T) {
	data := buildZip(t, [][2]string{
		{"META-INF/Container.xml", "<container/>"},
	})

	a, err := Open(data)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, ok := a.ReadFold("META-INF/container.xml"); !ok {
		t.Error("expected case-insensitive match")
	}
	if _, ok := a.ReadFold("META-INF/other.xml"); ok {
		t.Error("expected no match for different name")
	}
}
