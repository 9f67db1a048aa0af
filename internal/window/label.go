package window

import (
	"image"
	"image/draw"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
)

const titlePadding = 4

// verticalTitle renders text bottom-to-top, for the left edge of a section
func verticalTitle(text string, log *zap.Logger) *canvas.Image {
	src, err := renderText(text, float64(theme.TextSubHeadingSize()))
	if err != nil {
		log.Warn("Failed to render section title", zap.String("title", text), zap.Error(err))
		src = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	rotated := rotateCCW(src)
	img := canvas.NewImageFromImage(rotated)
	b := rotated.Bounds()
	img.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	img.FillMode = canvas.ImageFillOriginal
	return img
}

// renderText draws text with the theme's bold font onto a tight RGBA image
func renderText(text string, size float64) (*image.RGBA, error) {
	f, err := freetype.ParseFont(theme.DefaultTextBoldFont().Content())
	if err != nil {
		return nil, err
	}

	const dpi = 72
	face := truetype.NewFace(f, &truetype.Options{Size: size, DPI: dpi})
	defer face.Close()

	width := 0
	for _, r := range text {
		if adv, ok := face.GlyphAdvance(r); ok {
			width += adv.Round()
		}
	}
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	dst := image.NewRGBA(image.Rect(0, 0, width+titlePadding*2, height+titlePadding*2))
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)

	c := freetype.NewContext()
	c.SetFont(f)
	c.SetFontSize(size)
	c.SetDPI(dpi)
	c.SetClip(dst.Bounds())
	c.SetDst(dst)
	c.SetSrc(image.NewUniform(theme.Color(theme.ColorNameForeground)))

	if _, err := c.DrawString(text, freetype.Pt(titlePadding, titlePadding+metrics.Ascent.Ceil())); err != nil {
		return nil, err
	}
	return dst, nil
}

// rotateCCW turns an image a quarter turn counter-clockwise
func rotateCCW(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			dst.SetRGBA(y, b.Dx()-1-x, src.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
