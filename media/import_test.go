package media_test

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"wbc/media"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestImportUploads(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "2024", "06"), 0o755); err != nil {
		t.Fatal(err)
	}

	writePNG(t, filepath.Join(dir, "2024", "06", "photo.png"), 400, 300)
	writePNG(t, filepath.Join(dir, "banner.png"), 120, 80)
	// leftovers from a previous run must not be re-imported
	writePNG(t, filepath.Join(dir, "banner-150x150.png"), 150, 150)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := openStore(t)
	stats, err := s.ImportUploads(context.Background(), media.ImportOptions{
		UploadsDir: dir,
		BaseURL:    "https://site.test/wp-content/uploads",
	})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Scanned != 3 || stats.Imported != 2 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}

	// sorted path order: 2024/06/photo.png before banner.png
	photo, err := s.Attachment(context.Background(), 1)
	if err != nil || photo == nil {
		t.Fatalf("photo attachment: %v, %+v", err, photo)
	}
	if photo.URL != "https://site.test/wp-content/uploads/2024/06/photo.png" {
		t.Errorf("photo url = %q", photo.URL)
	}
	if photo.MIME != "image/png" {
		t.Errorf("photo mime = %q", photo.MIME)
	}
	if photo.Sizes["thumbnail"] != "https://site.test/wp-content/uploads/2024/06/photo-150x150.png" {
		t.Errorf("thumbnail = %q", photo.Sizes["thumbnail"])
	}
	if photo.Sizes["medium"] != "https://site.test/wp-content/uploads/2024/06/photo-300x225.png" {
		t.Errorf("medium = %q", photo.Sizes["medium"])
	}
	if _, ok := photo.Sizes["large"]; ok {
		t.Error("a 400px wide image must not grow a large variant")
	}
	if photo.Sizes["full"] != photo.URL {
		t.Errorf("full = %q", photo.Sizes["full"])
	}

	for _, derived := range []string{
		filepath.Join(dir, "2024", "06", "photo-150x150.png"),
		filepath.Join(dir, "2024", "06", "photo-300x225.png"),
	} {
		if _, err := os.Stat(derived); err != nil {
			t.Errorf("derived file missing: %v", err)
		}
	}

	// too small for every ladder step except the cropped thumbnail
	banner, err := s.Attachment(context.Background(), 2)
	if err != nil || banner == nil {
		t.Fatalf("banner attachment: %v, %+v", err, banner)
	}
	if _, ok := banner.Sizes["medium"]; ok {
		t.Error("a 120px wide image must not grow a medium variant")
	}
	if banner.Sizes["thumbnail"] == "" {
		t.Error("the cropped thumbnail is always derived")
	}
}

func TestImportUploadsStableIDs(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 100, 100)
	writePNG(t, filepath.Join(dir, "b.png"), 100, 100)

	s := openStore(t)
	if _, err := s.ImportUploads(context.Background(), media.ImportOptions{
		UploadsDir: dir,
		BaseURL:    "https://site.test/u",
		StartID:    10,
	}); err != nil {
		t.Fatal(err)
	}
	// a second run over the unchanged tree assigns the same IDs
	if _, err := s.ImportUploads(context.Background(), media.ImportOptions{
		UploadsDir: dir,
		BaseURL:    "https://site.test/u",
		StartID:    10,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	a, _ := s.Attachment(context.Background(), 10)
	if a == nil || a.URL != "https://site.test/u/a.png" {
		t.Errorf("attachment 10 = %+v", a)
	}
	b, _ := s.Attachment(context.Background(), 11)
	if b == nil || b.URL != "https://site.test/u/b.png" {
		t.Errorf("attachment 11 = %+v", b)
	}
}
