package fimg

import (
	"image"
	"image/color"
)

// XRGB is an image stored the way XRGB8888 buffers are laid out in
// memory on a little-endian machine: B, G, R, X per pixel.
type XRGB struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

func NewXRGB(r image.Rectangle) *XRGB {
	return &XRGB{
		Pix:    make([]byte, 4*r.Dx()*r.Dy()),
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
}

func (p *XRGB) PixOffset(x, y int) int {
	return ((y - p.Rect.Min.Y) * p.Stride) + (x-p.Rect.Min.X)*4
}

func (p *XRGB) Bounds() image.Rectangle {
	return p.Rect
}

func (p *XRGB) ColorModel() color.Model {
	return color.RGBAModel
}

func (p *XRGB) At(x, y int) color.Color {
	i := p.PixOffset(x, y)
	return color.RGBA{p.Pix[i+2], p.Pix[i+1], p.Pix[i], 0xFF}
}

func (p *XRGB) Set(x, y int, c color.Color) {
	r, g, b, _ := c.RGBA()

	i := p.PixOffset(x, y)
	p.Pix[i] = uint8(b >> 8)
	p.Pix[i+1] = uint8(g >> 8)
	p.Pix[i+2] = uint8(r >> 8)
	p.Pix[i+3] = 0xFF
}

// Fill sets every pixel to c without going through the color model.
func (p *XRGB) Fill(c color.RGBA) {
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		row := p.Pix[(y-p.Rect.Min.Y)*p.Stride:]
		for x := 0; x < p.Rect.Dx(); x++ {
			row[x*4] = c.B
			row[x*4+1] = c.G
			row[x*4+2] = c.R
			row[x*4+3] = 0xFF
		}
	}
}
