package gui

import "image/color"

// Opa is an 8-bit opacity, 0 transparent, 255 fully covering.
type Opa uint8

const (
	OpaTransp Opa = 0
	OpaCover  Opa = 255
)

// RGB builds an opaque pixel.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}

var (
	ColorBlack = RGB(0, 0, 0)
	ColorWhite = RGB(255, 255, 255)
	ColorBlue  = RGB(0, 0, 255)
)

// mix returns fg*opa + bg*(255-opa), channel by channel.
func mix(fg, bg color.RGBA, opa Opa) color.RGBA {
	switch opa {
	case OpaCover:
		return color.RGBA{R: fg.R, G: fg.G, B: fg.B, A: 0xFF}
	case OpaTransp:
		return bg
	}
	a := uint32(opa)
	na := 255 - a
	return color.RGBA{
		R: uint8((uint32(fg.R)*a + uint32(bg.R)*na) / 255),
		G: uint8((uint32(fg.G)*a + uint32(bg.G)*na) / 255),
		B: uint8((uint32(fg.B)*a + uint32(bg.B)*na) / 255),
		A: 0xFF,
	}
}

func packColor(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func unpackColor(v uint32) color.RGBA {
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}
