package tiles

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderFill   = color.RGBA{204, 204, 204, 255}
	placeholderStroke = color.RGBA{160, 160, 160, 255}
	placeholderBorder = color.RGBA{100, 100, 100, 255}

	blankOnce sync.Once
	blank     *image.RGBA
)

// NewPlaceholder draws a gray tile crossed by its diagonals and labelled
// with the tile key.
func NewPlaceholder(k Key) *image.RGBA {
	img := newCrossedTile()
	drawLabel(img, k.String())
	return img
}

// BlankPlaceholder returns a shared unlabelled placeholder. Callers must not
// modify it.
func BlankPlaceholder() *image.RGBA {
	blankOnce.Do(func() {
		blank = newCrossedTile()
	})
	return blank
}

func newCrossedTile() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{placeholderFill}, image.Point{}, draw.Src)

	dc := gg.NewContextForRGBA(img)
	dc.SetColor(placeholderStroke)
	dc.SetLineWidth(2)
	dc.DrawLine(0, 0, TileSize, TileSize)
	dc.DrawLine(TileSize, 0, 0, TileSize)
	dc.Stroke()

	borders := []image.Rectangle{
		image.Rect(0, 0, TileSize, 1),
		image.Rect(0, TileSize-1, TileSize, TileSize),
		image.Rect(0, 0, 1, TileSize),
		image.Rect(TileSize-1, 0, TileSize, TileSize),
	}
	for _, rect := range borders {
		draw.Draw(img, rect, &image.Uniform{placeholderBorder}, image.Point{}, draw.Src)
	}
	return img
}

func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{60, 60, 60, 255}),
		Face: face,
	}

	textWidth := d.MeasureString(text).Round()
	textHeight := face.Metrics().Height.Round()

	padding := 6
	mid := TileSize / 2
	bg := image.Rect(
		(TileSize-textWidth)/2-padding,
		mid-textHeight/2-padding,
		(TileSize+textWidth)/2+padding,
		mid+textHeight/2+padding,
	)
	draw.Draw(img, bg, &image.Uniform{color.RGBA{255, 255, 255, 220}}, image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I((TileSize - textWidth) / 2),
		Y: fixed.I(mid + textHeight/2 - 2),
	}
	d.DrawString(text)
}
