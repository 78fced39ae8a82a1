package util

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func testImage(t *testing.T, w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestResize(t *testing.T) {
	src := testImage(t, 200, 100)

	tests := []struct {
		output string
		width  uint
		wantW  int
		wantH  int
		format string
	}{
		{"out.jpg", 50, 50, 25, "jpeg"},
		{"out.png", 100, 100, 50, "png"},
		{"out.jpeg", 0, 200, 100, "jpeg"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		b, err := Resize(bytes.NewReader(src), &out, tt.output, tt.width, 60)
		if err != nil {
			t.Fatalf("%s: %v", tt.output, err)
		}
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("%s: got %dx%d, want %dx%d", tt.output, b.Dx(), b.Dy(), tt.wantW, tt.wantH)
		}
		_, format, err := image.Decode(&out)
		if err != nil {
			t.Fatalf("%s: decode: %v", tt.output, err)
		}
		if format != tt.format {
			t.Errorf("%s: format %q, want %q", tt.output, format, tt.format)
		}
	}
}

func TestResizeUnsupported(t *testing.T) {
	var out bytes.Buffer
	if _, err := Resize(bytes.NewReader(testImage(t, 10, 10)), &out, "out.bmp", 5, 0); err == nil {
		t.Errorf("expected error for bmp output")
	}
	if _, err := Resize(bytes.NewReader([]byte("not an image")), &out, "out.png", 5, 0); err == nil {
		t.Errorf("expected decode error")
	}
}

func TestMimeType(t *testing.T) {
	tests := map[string]string{
		"credit_card.png": "image/png",
		"a.JPG":           "image/jpeg",
		"b.gif":           "image/gif",
		"c":               "image/png",
	}
	for in, want := range tests {
		if got := MimeType(in); got != want {
			t.Errorf("MimeType(%q) = %q, want %q", in, got, want)
		}
	}
}
