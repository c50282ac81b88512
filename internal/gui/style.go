package gui

import "image/color"

// StyleProp identifies one style property.
type StyleProp int

const (
	PropBgColor StyleProp = iota
	PropBgOpa
	PropBorderWidth
	PropBorderColor
	PropBorderOpa
	PropTextColor
	PropImageRecolor
	PropImageRecolorOpa
)

// inherited properties are looked up on the parent chain when an object
// does not set them itself.
func (p StyleProp) inherited() bool {
	return p == PropTextColor
}

// Style is a reusable set of style properties. A Style must be initialized
// with Init before any setter is called or before it is added to an object.
// Objects keep a pointer to the style, so later changes are seen on the next
// redraw of those objects.
type Style struct {
	inited bool
	props  map[StyleProp]uint32
}

// Init clears the style and marks it ready for use.
func (s *Style) Init() {
	s.inited = true
	s.props = make(map[StyleProp]uint32)
}

// Initialized reports whether Init has been called.
func (s *Style) Initialized() bool { return s.inited }

func (s *Style) set(p StyleProp, v uint32) {
	if !s.inited {
		panic("gui: style used before Init")
	}
	s.props[p] = v
}

func (s *Style) get(p StyleProp) (uint32, bool) {
	if s == nil || !s.inited {
		return 0, false
	}
	v, ok := s.props[p]
	return v, ok
}

func (s *Style) SetBgColor(c color.RGBA) { s.set(PropBgColor, packColor(c)) }
func (s *Style) SetBgOpa(o Opa) { s.set(PropBgOpa, uint32(o)) }
func (s *Style) SetBorderWidth(w int) { s.set(PropBorderWidth, uint32(max(w, 0))) }
func (s *Style) SetBorderColor(c color.RGBA) { s.set(PropBorderColor, packColor(c)) }
func (s *Style) SetBorderOpa(o Opa) { s.set(PropBorderOpa, uint32(o)) }
func (s *Style) SetTextColor(c color.RGBA) { s.set(PropTextColor, packColor(c)) }
func (s *Style) SetImageRecolor(c color.RGBA) { s.set(PropImageRecolor, packColor(c)) }
func (s *Style) SetImageRecolorOpa(o Opa) { s.set(PropImageRecolorOpa, uint32(o)) }

// builtin defaults used when neither the object, its styles nor the theme set
// a property.
var propDefaults = map[StyleProp]uint32{
	PropBgColor:         packColor(ColorWhite),
	PropBgOpa:           uint32(OpaTransp),
	PropBorderWidth:     0,
	PropBorderColor:     packColor(ColorBlack),
	PropBorderOpa:       uint32(OpaCover),
	PropTextColor:       packColor(ColorBlack),
	PropImageRecolor:    packColor(ColorBlack),
	PropImageRecolorOpa: uint32(OpaTransp),
}

// theme returns the built-in style for a kind of object.
func theme(k Kind) *Style {
	s := &Style{}
	s.Init()
	switch k {
	case KindObj:
		s.SetBgColor(ColorWhite)
		s.SetBgOpa(OpaCover)
		s.SetBorderWidth(2)
		s.SetBorderColor(RGB(0xC0, 0xC0, 0xC0))
	case KindButton:
		s.SetBgColor(RGB(0x01, 0xA2, 0xB1))
		s.SetBgOpa(OpaCover)
		s.SetBorderWidth(2)
		s.SetBorderColor(RGB(0x01, 0x6E, 0x78))
		s.SetTextColor(ColorWhite)
	case KindLabel, KindImage:
		s.SetBgOpa(OpaTransp)
	}
	return s
}
