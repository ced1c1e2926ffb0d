package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestLocalPutCreatesDirAndReturnsFilename(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads", "nested")
	l := NewLocal(dir, echo.New().Logger)
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	loc, err := l.Put(context.Background(), []byte("%PDF-1.4"), "Intro Book.pdf")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if strings.ContainsAny(loc, `/\`) {
		t.Fatalf("locator should be a bare filename, got %q", loc)
	}
	if !strings.HasPrefix(loc, "20240102030405_") || !strings.HasSuffix(loc, "_Intro_Book.pdf") {
		t.Errorf("unexpected locator %q", loc)
	}
	got, err := os.ReadFile(filepath.Join(dir, loc))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(got) != "%PDF-1.4" {
		t.Errorf("stored bytes = %q", got)
	}
}

func TestLocalPutExistingDir(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, echo.New().Logger)
	for i := 0; i < 2; i++ {
		if _, err := l.Put(context.Background(), []byte("x"), "a.txt"); err != nil {
			t.Fatalf("Put #%d: %v", i, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 files, got %d", len(entries))
	}
}

func TestLocalPutEmpty(t *testing.T) {
	l := NewLocal(t.TempDir(), echo.New().Logger)
	if _, err := l.Put(context.Background(), nil, "a.pdf"); !errors.Is(err, ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}

func TestLocalPutUnwritableDir(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLocal(filepath.Join(blocker, "uploads"), echo.New().Logger)
	if _, err := l.Put(context.Background(), []byte("data"), "a.pdf"); !errors.Is(err, ErrStore) {
		t.Errorf("expected ErrStore, got %v", err)
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNormalizeDownscalesWideImages(t *testing.T) {
	data := testPNG(t, 400, 200)
	out, name := Normalize(data, "banner.png", 100)
	if name != "banner.jpg" {
		t.Errorf("name = %q, want banner.jpg", name)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("size = %v, want 100x50", img.Bounds())
	}
}

func TestNormalizeLeavesOtherData(t *testing.T) {
	small := testPNG(t, 50, 50)
	if out, name := Normalize(small, "icon.png", 100); !bytes.Equal(out, small) || name != "icon.png" {
		t.Error("narrow image should be untouched")
	}
	pdf := []byte("%PDF-1.4 not an image")
	if out, name := Normalize(pdf, "doc.pdf", 100); !bytes.Equal(out, pdf) || name != "doc.pdf" {
		t.Error("non-image data should be untouched")
	}
	wide := testPNG(t, 400, 10)
	if out, _ := Normalize(wide, "wide.png", 0); !bytes.Equal(out, wide) {
		t.Error("maxWidth 0 should disable processing")
	}
}
