// Package assets holds the bitmaps linked into the binary.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"touchpanel/internal/gui"
)

// thermometerPNG is authored black on transparent; callers recolor it.
//
//go:embed thermometer.png
var thermometerPNG []byte

var (
	thermoOnce sync.Once
	thermo     *gui.ImageDescriptor
	thermoErr  error
)

// Thermometer returns the decoded thermometer bitmap. Decoding happens once.
func Thermometer() (*gui.ImageDescriptor, error) {
	thermoOnce.Do(func() {
		thermo, thermoErr = decode("thermometer", thermometerPNG)
	})
	return thermo, thermoErr
}

func decode(name string, data []byte) (*gui.ImageDescriptor, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", name, err)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		b := img.Bounds()
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	return &gui.ImageDescriptor{Name: name, Pix: nrgba}, nil
}
