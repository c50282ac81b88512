package convert

import (
	"fmt"
	"image/color"
)

// Byte order of packed 16-bit pixels. SPI panels take big-endian words,
// Linux framebuffers in 16bpp mode are little-endian.
type ByteOrder int

const (
	BigEndian ByteOrder = iota
	LittleEndian
)

// RGB565Size returns the number of bytes PackRGB565 writes for n pixels.
func RGB565Size(n int) int { return n * 2 }

// PackRGB565 converts px into 16-bit RGB565 words stored in dst.
//
// Packing rules:
//
//   - word = R[7:3]<<11 | G[7:2]<<5 | B[7:3]
//   - BigEndian writes the high byte first, as the ILI9341 expects after
//     RAMWR; LittleEndian matches a 16bpp /dev/fb.
//   - alpha is ignored, the library always hands out opaque pixels.
func PackRGB565(dst []byte, px []color.RGBA, order ByteOrder) error {
	if len(dst) < RGB565Size(len(px)) {
		return fmt.Errorf("convert: dst holds %d bytes, need %d", len(dst), RGB565Size(len(px)))
	}
	for i, c := range px {
		w := uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3
		hi, lo := byte(w>>8), byte(w)
		if order == BigEndian {
			dst[2*i], dst[2*i+1] = hi, lo
		} else {
			dst[2*i], dst[2*i+1] = lo, hi
		}
	}
	return nil
}

// PackXRGB8888 converts px into 32-bit pixels. redFirst selects R,G,B,X
// byte order; otherwise B,G,R,X (the common little-endian XRGB layout).
func PackXRGB8888(dst []byte, px []color.RGBA, redFirst bool) error {
	if len(dst) < len(px)*4 {
		return fmt.Errorf("convert: dst holds %d bytes, need %d", len(dst), len(px)*4)
	}
	for i, c := range px {
		o := i * 4
		if redFirst {
			dst[o], dst[o+1], dst[o+2] = c.R, c.G, c.B
		} else {
			dst[o], dst[o+1], dst[o+2] = c.B, c.G, c.R
		}
		dst[o+3] = 0xFF
	}
	return nil
}
