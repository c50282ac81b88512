package gui

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LongMode controls how a label treats text that does not fit its size.
type LongMode int

const (
	// LongExpand resizes the label to the text extent whenever the text
	// changes. An explicit SetSize afterwards still wins until the next
	// SetText.
	LongExpand LongMode = iota
	// LongCrop keeps the size and clips the text.
	LongCrop
)

// TextAlign is the horizontal alignment of label text inside its area.
type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// labelFace is the only font the library ships.
var labelFace font.Face = basicfont.Face7x13

// Label is a single-line text widget.
type Label struct {
	*Obj
	text  string
	mode  LongMode
	align TextAlign
}

// NewLabel creates a label under parent with the text "Text", like a fresh
// widget on most toolkits.
func (l *Lib) NewLabel(parent *Obj) *Label {
	if parent == nil {
		panic("gui: label needs a parent")
	}
	lb := &Label{Obj: l.newObj(KindLabel, parent)}
	lb.content = lb
	lb.SetText("Text")
	return lb
}

func (lb *Label) Text() string { return lb.text }
func (lb *Label) LongMode() LongMode { return lb.mode }
func (lb *Label) TextAlign() TextAlign { return lb.align }

func (lb *Label) SetText(s string) {
	lb.text = s
	if lb.mode == LongExpand {
		lb.SetSize(textSize(s))
	}
	lb.invalidate()
}

func (lb *Label) SetLongMode(m LongMode) {
	lb.mode = m
	if m == LongExpand {
		lb.SetSize(textSize(lb.text))
	}
	lb.invalidate()
}

func (lb *Label) SetTextAlign(a TextAlign) {
	lb.align = a
	lb.invalidate()
}

// textSize returns the pixel extent of s rendered in labelFace.
func textSize(s string) (w, h int) {
	m := labelFace.Metrics()
	return font.MeasureString(labelFace, s).Ceil(), m.Height.Ceil()
}

func (lb *Label) drawContent(c *canvas, clip image.Rectangle) {
	if lb.text == "" {
		return
	}
	area := lb.Coords()
	tw, _ := textSize(lb.text)

	x := area.Min.X
	switch lb.align {
	case TextAlignCenter:
		x += (area.Dx() - tw) / 2
	case TextAlignRight:
		x += area.Dx() - tw
	}

	d := font.Drawer{
		Dst:  c.clipped(clip),
		Src:  image.NewUniform(lb.TextColor()),
		Face: labelFace,
		Dot:  fixed.P(x, area.Min.Y+labelFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(lb.text)
}
