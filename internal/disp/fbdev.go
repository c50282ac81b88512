package disp

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"touchpanel/internal/convert"
)

// fbFormat is the part of fb_var_screeninfo the driver cares about.
type fbFormat struct {
	width, height int
	bpp           int
	redOffset     int
	// lineLength is the byte stride of one framebuffer row.
	lineLength int
}

// FBDev draws into a Linux framebuffer. The UI keeps its logical
// resolution; when the framebuffer differs the back buffer is scaled
// (nearest neighbour) on every flush.
type FBDev struct {
	path   string
	width  int
	height int

	fb     fbFormat
	mem    []byte
	back   *image.RGBA
	scaled *image.RGBA
	row    []byte

	dev fbHandle
}

// NewFBDev returns an unopened framebuffer driver with a logical size of
// width x height.
func NewFBDev(path string, width, height int) *FBDev {
	return &FBDev{path: path, width: width, height: height}
}

func (d *FBDev) Resolution() (w, h int) { return d.width, d.height }

// attach sets up buffers for a mapped framebuffer.
func (d *FBDev) attach(fb fbFormat, mem []byte) error {
	if fb.bpp != 16 && fb.bpp != 32 {
		return fmt.Errorf("disp: unsupported framebuffer depth %d bpp", fb.bpp)
	}
	if fb.lineLength == 0 {
		fb.lineLength = fb.width * fb.bpp / 8
	}
	if len(mem) < fb.lineLength*fb.height {
		return fmt.Errorf("disp: framebuffer mapping too small: %d bytes", len(mem))
	}
	d.fb, d.mem = fb, mem
	d.back = image.NewRGBA(image.Rect(0, 0, d.width, d.height))
	if fb.width != d.width || fb.height != d.height {
		d.scaled = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	}
	d.row = make([]byte, fb.width*fb.bpp/8)
	return nil
}

// Flush copies the stripe into the back buffer and pushes the affected
// framebuffer rows.
func (d *FBDev) Flush(area image.Rectangle, px []color.RGBA) error {
	area = area.Intersect(d.back.Bounds())
	if area.Empty() {
		return nil
	}
	w := area.Dx()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		src := px[(y-area.Min.Y)*w : (y-area.Min.Y+1)*w]
		off := d.back.PixOffset(area.Min.X, y)
		for i, c := range src {
			d.back.Pix[off+4*i] = c.R
			d.back.Pix[off+4*i+1] = c.G
			d.back.Pix[off+4*i+2] = c.B
			d.back.Pix[off+4*i+3] = 0xFF
		}
	}

	if d.scaled == nil {
		return d.pushRows(d.back, area)
	}

	// Map the stripe to framebuffer rows and rescale that band only.
	dst := image.Rect(
		area.Min.X*d.fb.width/d.width, area.Min.Y*d.fb.height/d.height,
		ceilDiv(area.Max.X*d.fb.width, d.width), ceilDiv(area.Max.Y*d.fb.height, d.height),
	)
	xdraw.NearestNeighbor.Scale(d.scaled, dst, d.back, area, xdraw.Src, nil)
	return d.pushRows(d.scaled, dst)
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// pushRows converts rows r of img (img must match the framebuffer size) into
// framebuffer memory.
func (d *FBDev) pushRows(img *image.RGBA, r image.Rectangle) error {
	r = r.Intersect(img.Bounds())
	bytesPP := d.fb.bpp / 8
	line := make([]color.RGBA, r.Dx())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		for i := range line {
			p := img.Pix[off+4*i : off+4*i+4]
			line[i] = color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
		}
		out := d.row[:len(line)*bytesPP]
		var err error
		if d.fb.bpp == 16 {
			err = convert.PackRGB565(out, line, convert.LittleEndian)
		} else {
			err = convert.PackXRGB8888(out, line, d.fb.redOffset == 0)
		}
		if err != nil {
			return err
		}
		copy(d.mem[y*d.fb.lineLength+r.Min.X*bytesPP:], out)
	}
	return nil
}
