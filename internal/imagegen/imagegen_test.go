package imagegen

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", []byte("png"))
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("png"), got)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", []byte("1"))
	now = now.Add(2 * time.Minute)
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("b", []byte("2"))
	assert.Equal(t, []string{"b"}, c.Keys(), "stale entries are evicted on Set")
}

func TestCache_Disabled(t *testing.T) {
	c := NewCache(0)
	c.Set("a", []byte("1"))
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_DeletePrefix(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("s1/density", nil)
	c.Set("s1/heatmap", nil)
	c.Set("s2/density", nil)

	assert.Equal(t, 2, c.DeletePrefix("s1/"))
	assert.Equal(t, []string{"s2/density"}, c.Keys())
}

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGeneratePreview(t *testing.T) {
	charts := [][]byte{
		solidPNG(t, 80, 60, color.RGBA{255, 0, 0, 255}),
		solidPNG(t, 140, 70, color.RGBA{0, 255, 0, 255}),
		solidPNG(t, 50, 50, color.RGBA{0, 0, 255, 255}),
	}

	b, err := GeneratePreview(charts, PreviewData{Title: "Analyze Air Quality Data", Subtitle: "2 stations"})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, PreviewWidth, PreviewHeight), img.Bounds())

	// The centre of the first tile comes from the red chart.
	r, g, _, _ := img.At(PreviewWidth/4, PreviewHeight/4).RGBA()
	assert.Greater(t, r, g)
}

func TestGeneratePreview_BadImage(t *testing.T) {
	_, err := GeneratePreview([][]byte{[]byte("not a png")}, PreviewData{Title: "x"})
	assert.Error(t, err)
}

func TestGeneratePreview_NoCharts(t *testing.T) {
	b, err := GeneratePreview(nil, PreviewData{Title: "Analyze Air Quality Data"})
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, PreviewWidth, cfg.Width)
}

func TestFit(t *testing.T) {
	got := fit(image.Rect(0, 0, 200, 100), image.Rect(0, 0, 600, 315))
	assert.Equal(t, image.Rect(0, 0, 600, 300).Dx(), got.Dx())
	assert.Equal(t, 300, got.Dy())
	assert.Equal(t, 7, got.Min.Y)
}
