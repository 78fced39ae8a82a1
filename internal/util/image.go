package util

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
)

const DefaultJPEGQuality = 85

// Resize decodes an image, scales it to width keeping the aspect ratio and
// encodes it in the format implied by the output name.
// A zero width keeps the original size.
func Resize(r io.Reader, w io.Writer, output string, width uint, quality int) (image.Rectangle, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("decode image: %w", err)
	}

	if width > 0 {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}

	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".png":
		err = png.Encode(w, img)
	case ".gif":
		err = gif.Encode(w, img, nil)
	case ".jpg", ".jpeg", "":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	default:
		return image.Rectangle{}, fmt.Errorf("unsupported image format: %s", ext)
	}
	if err != nil {
		return image.Rectangle{}, err
	}
	return img.Bounds(), nil
}

// MimeType returns the mime type for an image file name.
func MimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}
