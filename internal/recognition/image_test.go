package recognition

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int, string) {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy(), format
}

func TestResizeImage(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxSize       int
		wantW, wantH  int
	}{
		{"no resize needed", 100, 80, 200, 100, 80},
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 200, 400, 100, 50, 100},
		{"square", 300, 300, 150, 150, 150},
		{"exactly max size", 128, 64, 128, 128, 64},
		{"zero max keeps size", 90, 60, 0, 90, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodePNG(createTestImage(tt.width, tt.height, color.White))
			out, err := ResizeImage(data, tt.maxSize)
			if err != nil {
				t.Fatalf("ResizeImage failed: %v", err)
			}
			w, h, format := decodeSize(t, out)
			if format != "jpeg" {
				t.Errorf("format = %q, want jpeg", format)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestResizeImage_InvalidData(t *testing.T) {
	if _, err := ResizeImage([]byte("not an image"), 100); err == nil {
		t.Error("expected error for invalid image data")
	}
}

func TestResizeImage_JPEGInput(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, createTestImage(64, 32, color.Black), nil); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	out, err := ResizeImage(buf.Bytes(), 32)
	if err != nil {
		t.Fatalf("ResizeImage failed: %v", err)
	}
	w, h, _ := decodeSize(t, out)
	if w != 32 || h != 16 {
		t.Errorf("size = %dx%d, want 32x16", w, h)
	}
}
