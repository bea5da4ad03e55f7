package policydesk

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{0x20, 0x40, 0x80, 0xff})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestProcessImageShrinksWideImages(t *testing.T) {
	img, data, err := processImage(pngOf(t, 2400, 1000), "wide.png")
	if err != nil {
		t.Fatalf("processImage: %v", err)
	}
	if img.Width != maxImageWidth || img.Height != 500 {
		t.Errorf("size = %dx%d, want %dx500", img.Width, img.Height, maxImageWidth)
	}
	if img.Size != len(data) || img.OriginalName != "wide.png" {
		t.Errorf("metadata mismatch: %+v", img)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("output is not JPEG: %v", err)
	}
}

func TestProcessImageKeepsSmallImages(t *testing.T) {
	img, _, err := processImage(pngOf(t, 300, 200), "small.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Width != 300 || img.Height != 200 {
		t.Errorf("size = %dx%d, want 300x200", img.Width, img.Height)
	}
}

func TestProcessImageRejectsGarbage(t *testing.T) {
	if _, _, err := processImage(strings.NewReader("not an image"), "x.png"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestImageFilename(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		want string
	}{
		{"Cover Photo.PNG", "cover-photo-20240315-a1b2c3d4e5f6.jpg"},
		{"../../etc/passwd", "passwd-20240315-a1b2c3d4e5f6.jpg"},
		{"정책 표지.jpg", "정책-표지-20240315-a1b2c3d4e5f6.jpg"},
		{".png", "20240315-a1b2c3d4e5f6.jpg"},
	}
	for _, tt := range tests {
		if got := imageFilename(tt.name, now, "a1b2c3d4e5f6"); got != tt.want {
			t.Errorf("imageFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestPlaceholderJPEG(t *testing.T) {
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(placeholderCard()))
	if err != nil {
		t.Fatalf("card placeholder: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 450 {
		t.Errorf("card size = %dx%d", cfg.Width, cfg.Height)
	}
	cfg, err = jpeg.DecodeConfig(bytes.NewReader(placeholderThumb()))
	if err != nil {
		t.Fatalf("thumb placeholder: %v", err)
	}
	if cfg.Width != 96 || cfg.Height != 96 {
		t.Errorf("thumb size = %dx%d", cfg.Width, cfg.Height)
	}
}
