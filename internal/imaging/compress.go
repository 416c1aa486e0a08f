// Package imaging is the compression collaborator used before photos
// enter the store: raw upload in, bounded JPEG data URL out.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

// Defaults match the capture flow: quality 0.8, longest side 1920px.
const (
	DefaultQuality      = 0.8
	DefaultMaxDimension = 1920
)

// Compress - decodes the upload, downscales it to fit maxDim on its
// longest side and re-encodes as a JPEG data URL. quality is 0..1.
func Compress(r io.Reader, quality float64, maxDim uint) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", fmt.Errorf("imaging decode: %w", err)
	}

	b := img.Bounds()
	if uint(b.Dx()) > maxDim || uint(b.Dy()) > maxDim {
		img = resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	}

	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return "", fmt.Errorf("imaging encode: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
