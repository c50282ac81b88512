package gui

import (
	"image"
	"image/color"
)

// ImageDescriptor is a compiled-in bitmap. Pixels are non-premultiplied so
// recoloring can replace RGB while keeping the alpha channel.
type ImageDescriptor struct {
	Name string
	Pix  *image.NRGBA
}

// Size returns the bitmap dimensions.
func (d *ImageDescriptor) Size() (w, h int) {
	if d == nil || d.Pix == nil {
		return 0, 0
	}
	b := d.Pix.Bounds()
	return b.Dx(), b.Dy()
}

// Image shows an ImageDescriptor. When the object is larger than the bitmap
// the bitmap is tiled; when smaller it is clipped.
type Image struct {
	*Obj
	src *ImageDescriptor
}

func (l *Lib) NewImage(parent *Obj) *Image {
	if parent == nil {
		panic("gui: image needs a parent")
	}
	img := &Image{Obj: l.newObj(KindImage, parent)}
	img.content = img
	return img
}

// SetSrc binds the bitmap and resizes the object to it.
func (img *Image) SetSrc(src *ImageDescriptor) {
	img.src = src
	img.SetSize(src.Size())
	img.invalidate()
}

func (img *Image) Src() *ImageDescriptor { return img.src }

func (img *Image) drawContent(c *canvas, clip image.Rectangle) {
	sw, sh := img.src.Size()
	if sw == 0 || sh == 0 {
		return
	}
	area := img.Coords()
	recolor := img.ImageRecolor()
	recolorOpa := img.ImageRecolorOpa()
	pix := img.src.Pix
	origin := pix.Bounds().Min

	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		sy := (y - area.Min.Y) % sh
		for x := clip.Min.X; x < clip.Max.X; x++ {
			sx := (x - area.Min.X) % sw
			p := pix.NRGBAAt(origin.X+sx, origin.Y+sy)
			if p.A == 0 {
				continue
			}
			fg := color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF}
			if recolorOpa > OpaTransp {
				fg = mix(recolor, fg, recolorOpa)
			}
			c.blend(x, y, fg, Opa(p.A))
		}
	}
}
