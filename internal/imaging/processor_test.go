// Copyright (c) 2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/foliolab/folio/internal/model"
)

func testProcessor(t *testing.T) *Processor {
	t.Helper()
	return NewProcessor(t.TempDir())
}

// testJPEG renders a width x height JPEG in memory.
func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestProcessOriginal(t *testing.T) {
	p := testProcessor(t)
	data := testJPEG(t, 640, 480)

	result, err := p.ProcessOriginal(bytes.NewReader(data), "test-id", "photo.jpg")
	if err != nil {
		t.Fatalf("ProcessOriginal failed: %v", err)
	}

	if result.Width != 640 || result.Height != 480 {
		t.Errorf("got dimensions %dx%d, want 640x480", result.Width, result.Height)
	}
	if result.MimeType != model.MimeTypeJPEG {
		t.Errorf("got mime type %q, want %q", result.MimeType, model.MimeTypeJPEG)
	}
	if result.FilePath != filepath.Join("originals", "test-id", "photo.jpg") {
		t.Errorf("unexpected file path %q", result.FilePath)
	}
	if _, err := os.Stat(filepath.Join(p.uploadDir, result.FilePath)); err != nil {
		t.Errorf("original file not written: %v", err)
	}
}

func TestProcessOriginal_PNG(t *testing.T) {
	p := testProcessor(t)

	img := image.NewRGBA(image.Rect(0, 0, 10, 20))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}

	result, err := p.ProcessOriginal(&buf, "png-id", "pixel.png")
	if err != nil {
		t.Fatalf("ProcessOriginal failed: %v", err)
	}
	if result.MimeType != model.MimeTypePNG {
		t.Errorf("got mime type %q, want %q", result.MimeType, model.MimeTypePNG)
	}
	if result.Width != 10 || result.Height != 20 {
		t.Errorf("got dimensions %dx%d, want 10x20", result.Width, result.Height)
	}
}

func TestProcessOriginal_InvalidData(t *testing.T) {
	p := testProcessor(t)

	if _, err := p.ProcessOriginal(bytes.NewReader([]byte("not an image")), "bad", "bad.jpg"); err == nil {
		t.Fatal("expected error for non-image data")
	}
}

func TestSaveRaw(t *testing.T) {
	p := testProcessor(t)
	data := []byte("%PDF-1.4 fake document")

	path, size, err := p.SaveRaw(bytes.NewReader(data), "doc-id", "resume.pdf")
	if err != nil {
		t.Fatalf("SaveRaw failed: %v", err)
	}
	if size != int64(len(data)) {
		t.Errorf("got size %d, want %d", size, len(data))
	}
	stored, err := os.ReadFile(filepath.Join(p.uploadDir, path))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(stored, data) {
		t.Error("stored file does not match input")
	}
}

func TestCreateVariant(t *testing.T) {
	p := testProcessor(t)
	data := testJPEG(t, 2000, 1000)

	original, err := p.ProcessOriginal(bytes.NewReader(data), "var-id", "wide.jpg")
	if err != nil {
		t.Fatalf("ProcessOriginal failed: %v", err)
	}

	sourcePath := filepath.Join(p.uploadDir, original.FilePath)
	config := model.ImageVariants[model.VariantThumb]
	result, err := p.CreateVariant(sourcePath, "var-id", "wide.jpg", config, model.VariantThumb)
	if err != nil {
		t.Fatalf("CreateVariant failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected variant for oversized source")
	}
	if result.Width > config.Width || result.Height > config.Height {
		t.Errorf("variant %dx%d exceeds bounds %dx%d", result.Width, result.Height, config.Width, config.Height)
	}
	// Fit preserves aspect ratio, never crops
	if result.Width != config.Width {
		t.Errorf("wide image should be bound by width: got %d, want %d", result.Width, config.Width)
	}
}

func TestCreateVariant_SkipsSmallSource(t *testing.T) {
	p := testProcessor(t)
	data := testJPEG(t, 100, 100)

	original, err := p.ProcessOriginal(bytes.NewReader(data), "small-id", "small.jpg")
	if err != nil {
		t.Fatalf("ProcessOriginal failed: %v", err)
	}

	sourcePath := filepath.Join(p.uploadDir, original.FilePath)
	result, err := p.CreateVariant(sourcePath, "small-id", "small.jpg", model.ImageVariants[model.VariantLarge], model.VariantLarge)
	if err != nil {
		t.Fatalf("CreateVariant failed: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result for source smaller than variant, got %+v", result)
	}
}

func TestCreateAllVariants(t *testing.T) {
	p := testProcessor(t)
	data := testJPEG(t, 1000, 800)

	original, err := p.ProcessOriginal(bytes.NewReader(data), "all-id", "mid.jpg")
	if err != nil {
		t.Fatalf("ProcessOriginal failed: %v", err)
	}

	sourcePath := filepath.Join(p.uploadDir, original.FilePath)
	results, err := p.CreateAllVariants(sourcePath, "all-id", "mid.jpg")
	if err != nil {
		t.Fatalf("CreateAllVariants failed: %v", err)
	}

	// 1000x800 source fits inside large (1280) and display (1920),
	// so only the smaller variants apply.
	got := map[string]bool{}
	for _, r := range results {
		got[r.Name] = true
	}
	for _, want := range []string{model.VariantThumb, model.VariantMedium} {
		if !got[want] {
			t.Errorf("missing %s variant, got %v", want, got)
		}
	}
	if got[model.VariantLarge] || got[model.VariantDisplay] {
		t.Errorf("unexpected oversized variants: %v", got)
	}
}

func TestDeleteMediaFiles(t *testing.T) {
	p := testProcessor(t)
	data := testJPEG(t, 800, 600)

	original, err := p.ProcessOriginal(bytes.NewReader(data), "del-id", "gone.jpg")
	if err != nil {
		t.Fatalf("ProcessOriginal failed: %v", err)
	}
	sourcePath := filepath.Join(p.uploadDir, original.FilePath)
	if _, err := p.CreateAllVariants(sourcePath, "del-id", "gone.jpg"); err != nil {
		t.Fatalf("CreateAllVariants failed: %v", err)
	}

	if err := p.DeleteMediaFiles("del-id"); err != nil {
		t.Fatalf("DeleteMediaFiles failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(p.uploadDir, "originals", "del-id")); !os.IsNotExist(err) {
		t.Error("originals directory still exists after delete")
	}
	if _, err := os.Stat(filepath.Join(p.uploadDir, model.VariantThumb, "del-id")); !os.IsNotExist(err) {
		t.Error("thumb directory still exists after delete")
	}
}

func TestDeleteMediaFiles_MissingID(t *testing.T) {
	p := testProcessor(t)
	if err := p.DeleteMediaFiles("never-existed"); err != nil {
		t.Errorf("deleting nonexistent media should be a no-op, got %v", err)
	}
}

func TestApplyOrientation(t *testing.T) {
	// 2x1 image: left pixel red, right pixel blue
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	img.Set(1, 0, color.RGBA{0, 0, 255, 255})

	rotated := applyOrientation(img, 6) // 90 CW
	b := rotated.Bounds()
	if b.Dx() != 1 || b.Dy() != 2 {
		t.Fatalf("orientation 6 should swap dimensions, got %dx%d", b.Dx(), b.Dy())
	}

	flipped := applyOrientation(img, 2)
	r, _, _, _ := flipped.At(0, 0).RGBA()
	if r>>8 > 64 {
		t.Error("orientation 2 should mirror horizontally")
	}

	same := applyOrientation(img, 1)
	if same != image.Image(img) {
		t.Error("orientation 1 should return the image unchanged")
	}
}

func TestIsImage(t *testing.T) {
	p := testProcessor(t)
	tests := []struct {
		mime string
		want bool
	}{
		{model.MimeTypeJPEG, true},
		{model.MimeTypePNG, true},
		{model.MimeTypeWebP, true},
		{model.MimeTypePDF, false},
		{model.MimeTypeSVG, false},
		{"text/plain", false},
	}
	for _, tt := range tests {
		if got := p.IsImage(tt.mime); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}
