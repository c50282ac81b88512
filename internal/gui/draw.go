package gui

import (
	"image"
	"image/color"
	"image/draw"
)

// canvas is a stripe of the draw buffer addressed in absolute display
// coordinates.
type canvas struct {
	area image.Rectangle
	px   []color.RGBA
}

func (c *canvas) offset(x, y int) int {
	return (y-c.area.Min.Y)*c.area.Dx() + (x - c.area.Min.X)
}

func (c *canvas) fill(r image.Rectangle, col color.RGBA, opa Opa) {
	r = r.Intersect(c.area)
	if r.Empty() || opa == OpaTransp {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := c.offset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			c.px[i] = mix(col, c.px[i], opa)
			i++
		}
	}
}

func (c *canvas) blend(x, y int, col color.RGBA, opa Opa) {
	if !(image.Point{X: x, Y: y}).In(c.area) {
		return
	}
	i := c.offset(x, y)
	c.px[i] = mix(col, c.px[i], opa)
}

// clipped exposes the canvas as a draw.Image limited to clip, for drawing
// code that works on the image interfaces (font rendering).
func (c *canvas) clipped(clip image.Rectangle) draw.Image {
	return &canvasView{c: c, bounds: clip.Intersect(c.area)}
}

type canvasView struct {
	c      *canvas
	bounds image.Rectangle
}

func (v *canvasView) ColorModel() color.Model { return color.RGBAModel }
func (v *canvasView) Bounds() image.Rectangle { return v.bounds }

func (v *canvasView) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(v.bounds) {
		return color.RGBA{}
	}
	return v.c.px[v.c.offset(x, y)]
}

func (v *canvasView) Set(x, y int, col color.Color) {
	if !(image.Point{X: x, Y: y}).In(v.bounds) {
		return
	}
	r, g, b, _ := col.RGBA()
	v.c.px[v.c.offset(x, y)] = RGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// drawObj paints o and its children into c, limited to clip.
func drawObj(c *canvas, o *Obj, clip image.Rectangle) {
	coords := o.Coords()
	clip = clip.Intersect(coords)
	if clip.Empty() {
		return
	}

	c.fill(clip, o.BgColor(), o.BgOpa())

	if bw := o.BorderWidth(); bw > 0 {
		col, opa := o.BorderColor(), o.BorderOpa()
		inner := coords.Inset(bw)
		if inner.Empty() {
			c.fill(clip, col, opa)
		} else {
			top := image.Rect(coords.Min.X, coords.Min.Y, coords.Max.X, inner.Min.Y)
			bottom := image.Rect(coords.Min.X, inner.Max.Y, coords.Max.X, coords.Max.Y)
			left := image.Rect(coords.Min.X, inner.Min.Y, inner.Min.X, inner.Max.Y)
			right := image.Rect(inner.Max.X, inner.Min.Y, coords.Max.X, inner.Max.Y)
			for _, r := range []image.Rectangle{top, bottom, left, right} {
				c.fill(r.Intersect(clip), col, opa)
			}
		}
	}

	if o.content != nil {
		o.content.drawContent(c, clip)
	}

	for _, child := range o.children {
		drawObj(c, child, clip)
	}
}
