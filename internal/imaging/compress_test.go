package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(dataURL, prefix), "unexpected payload prefix: %.40s", dataURL)

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestCompress_DownscalesOversizedImage(t *testing.T) {
	out, err := Compress(pngFixture(t, 200, 100), DefaultQuality, 50)
	require.NoError(t, err)

	img := decodeDataURL(t, out)
	require.Equal(t, 50, img.Bounds().Dx(), "longest side capped at maxDim")
	require.Equal(t, 25, img.Bounds().Dy(), "aspect ratio preserved")
}

func TestCompress_SmallImageKeepsDimensions(t *testing.T) {
	out, err := Compress(pngFixture(t, 30, 20), DefaultQuality, 1920)
	require.NoError(t, err)

	img := decodeDataURL(t, out)
	require.Equal(t, 30, img.Bounds().Dx())
	require.Equal(t, 20, img.Bounds().Dy())
}

func TestCompress_QualityClamped(t *testing.T) {
	// out-of-range qualities must not break the encoder
	for _, q := range []float64{-1, 0, 1.5} {
		out, err := Compress(pngFixture(t, 10, 10), q, 1920)
		require.NoError(t, err, "quality %v", q)
		decodeDataURL(t, out)
	}
}

func TestCompress_RejectsGarbage(t *testing.T) {
	_, err := Compress(strings.NewReader("not an image"), DefaultQuality, 1920)
	require.Error(t, err)
}
