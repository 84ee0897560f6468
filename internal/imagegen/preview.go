// Package imagegen caches rendered chart images and composes the dashboard
// preview image.
package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontTitle   font.Face
	fontRegular font.Face
	fontOnce    sync.Once
	fontErr     error
)

func loadFonts() {
	fontOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse goregular: %w", err)
			return
		}
		fontRegular, err = opentype.NewFace(regular, &opentype.FaceOptions{
			Size:    28,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create regular face: %w", err)
			return
		}

		medium, err := opentype.Parse(gomedium.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse gomedium: %w", err)
			return
		}
		fontTitle, err = opentype.NewFace(medium, &opentype.FaceOptions{
			Size:    56,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			fontErr = fmt.Errorf("create title face: %w", err)
			return
		}
	})
}

// PreviewData is the text drawn over the preview.
type PreviewData struct {
	Title    string // e.g. "Analyze Air Quality Data"
	Subtitle string // e.g. "12 stations, 382,168 rows, 2013-2017"
}

// PreviewWidth and PreviewHeight are the Open Graph image dimensions.
const (
	PreviewWidth  = 1200
	PreviewHeight = 630
)

// GeneratePreview tiles up to four chart images into a 2x2 grid at preview
// dimensions and draws the text overlay.
func GeneratePreview(charts [][]byte, data PreviewData) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}
	if len(charts) == 0 {
		return GenerateFallbackPreview(data)
	}
	if len(charts) > 4 {
		charts = charts[:4]
	}

	dst := image.NewRGBA(image.Rect(0, 0, PreviewWidth, PreviewHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	tileW, tileH := PreviewWidth/2, PreviewHeight/2
	for i, b := range charts {
		src, _, err := image.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("decode chart %d: %w", i, err)
		}
		x, y := (i%2)*tileW, (i/2)*tileH
		draw.CatmullRom.Scale(dst, fit(src.Bounds(), image.Rect(x, y, x+tileW, y+tileH)), src, src.Bounds(), draw.Over, nil)
	}

	drawGradientOverlay(dst)
	drawTextOverlay(dst, data)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode preview image: %w", err)
	}
	return buf.Bytes(), nil
}

// fit returns the largest rectangle with src's aspect ratio centred in tile.
func fit(src, tile image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	tw, th := float64(tile.Dx()), float64(tile.Dy())
	scale := tw / sw
	if th/sh < scale {
		scale = th / sh
	}
	w, h := int(sw*scale), int(sh*scale)
	x := tile.Min.X + (tile.Dx()-w)/2
	y := tile.Min.Y + (tile.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// drawGradientOverlay darkens the bottom of the image for text readability.
func drawGradientOverlay(img *image.RGBA) {
	bounds := img.Bounds()
	gradientHeight := 220

	for y := bounds.Max.Y - gradientHeight; y < bounds.Max.Y; y++ {
		progress := float64(y-(bounds.Max.Y-gradientHeight)) / float64(gradientHeight)
		alpha := progress * progress * 0.85

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			orig := img.RGBAAt(x, y)
			orig.R = uint8(float64(orig.R) * (1 - alpha))
			orig.G = uint8(float64(orig.G) * (1 - alpha))
			orig.B = uint8(float64(orig.B) * (1 - alpha))
			img.SetRGBA(x, y, orig)
		}
	}
}

func drawTextOverlay(img *image.RGBA, data PreviewData) {
	white := color.RGBA{255, 255, 255, 255}
	lightGray := color.RGBA{210, 210, 210, 255}

	drawText(img, data.Title, 48, PreviewHeight-80, white, fontTitle)
	if data.Subtitle != "" {
		drawText(img, data.Subtitle, 48, PreviewHeight-32, lightGray, fontRegular)
	}
}

func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// GenerateFallbackPreview draws the text overlay on a plain gradient, for
// when no chart could be rendered.
func GenerateFallbackPreview(data PreviewData) ([]byte, error) {
	loadFonts()
	if fontErr != nil {
		return nil, fmt.Errorf("load fonts: %w", fontErr)
	}

	img := image.NewRGBA(image.Rect(0, 0, PreviewWidth, PreviewHeight))
	for y := 0; y < PreviewHeight; y++ {
		progress := float64(y) / float64(PreviewHeight)
		c := color.RGBA{uint8(20 + progress*10), uint8(30 + progress*20), uint8(50 + progress*30), 255}
		for x := 0; x < PreviewWidth; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	drawTextOverlay(img, data)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode fallback preview image: %w", err)
	}
	return buf.Bytes(), nil
}
