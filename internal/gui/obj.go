package gui

import (
	"fmt"
	"image"
	"image/color"
)

// Kind tells which widget an Obj is.
type Kind int

const (
	KindObj Kind = iota
	KindButton
	KindLabel
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindObj:
		return "obj"
	case KindButton:
		return "button"
	case KindLabel:
		return "label"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Align selects the reference point used by Obj.Align.
type Align int

const (
	AlignCenter Align = iota
	AlignInTopLeft
	AlignInTopMid
	AlignInTopRight
	AlignInBottomLeft
	AlignInBottomMid
	AlignInBottomRight
	AlignInLeftMid
	AlignInRightMid
)

// content draws the kind-specific part of an object (text, bitmap) after
// its background and border.
type content interface {
	drawContent(c *canvas, clip image.Rectangle)
}

// Obj is a node of the widget tree. A nil parent makes the object a screen.
// Objects are owned by the library; they are never freed while it runs.
type Obj struct {
	lib      *Lib
	id       int
	kind     Kind
	parent   *Obj
	children []*Obj

	// x, y are relative to the parent's top-left corner.
	x, y int
	w, h int

	styles    []*Style
	local     Style
	clickable bool
	handler   EventHandler
	content   content
}

func (l *Lib) newObj(kind Kind, parent *Obj) *Obj {
	l.lastID++
	o := &Obj{
		lib:       l,
		id:        l.lastID,
		kind:      kind,
		parent:    parent,
		clickable: kind == KindObj || kind == KindButton,
	}
	o.local.Init()
	if parent == nil {
		if l.disp != nil {
			o.w, o.h = l.disp.drv.HorRes, l.disp.drv.VerRes
		}
		l.screens = append(l.screens, o)
	} else {
		if parent.lib != l {
			panic("gui: parent belongs to another library instance")
		}
		parent.children = append(parent.children, o)
	}
	o.invalidate()
	return o
}

// NewObj creates a plain container. With a nil parent the container is a
// new screen sized to the display.
func (l *Lib) NewObj(parent *Obj) *Obj {
	return l.newObj(KindObj, parent)
}

// NewButton creates a clickable button under parent.
func (l *Lib) NewButton(parent *Obj) *Obj {
	if parent == nil {
		panic("gui: button needs a parent")
	}
	return l.newObj(KindButton, parent)
}

func (o *Obj) ID() int { return o.id }
func (o *Obj) Kind() Kind { return o.kind }
func (o *Obj) Parent() *Obj { return o.parent }
func (o *Obj) Size() (w, h int) { return o.w, o.h }
func (o *Obj) Pos() (x, y int) { return o.x, o.y }
func (o *Obj) Clickable() bool { return o.clickable }
func (o *Obj) Styles() []*Style { return append([]*Style(nil), o.styles...) }
func (o *Obj) Children() []*Obj { return append([]*Obj(nil), o.children...) }

// Screen returns the root of the tree o belongs to.
func (o *Obj) Screen() *Obj {
	s := o
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Coords returns the absolute area of the object.
func (o *Obj) Coords() image.Rectangle {
	x, y := o.x, o.y
	for p := o.parent; p != nil; p = p.parent {
		x += p.x
		y += p.y
	}
	return image.Rect(x, y, x+o.w, y+o.h)
}

// visibleArea is Coords clipped by every ancestor.
func (o *Obj) visibleArea() image.Rectangle {
	a := o.Coords()
	for p := o.parent; p != nil; p = p.parent {
		a = a.Intersect(p.Coords())
	}
	return a
}

func (o *Obj) SetPos(x, y int) {
	if o.x == x && o.y == y {
		return
	}
	o.invalidate()
	o.x, o.y = x, y
	o.invalidate()
}

func (o *Obj) SetSize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if o.w == w && o.h == h {
		return
	}
	o.invalidate()
	o.w, o.h = w, h
	o.invalidate()
}

// Align positions o relative to base (its parent when base is nil) and
// shifts the result by (dx, dy).
func (o *Obj) Align(base *Obj, a Align, dx, dy int) {
	if base == nil {
		base = o.parent
	}
	var ref image.Rectangle
	if base != nil {
		ref = base.Coords()
	} else if o.lib.disp != nil {
		ref = o.lib.disp.area()
	}

	bw, bh := ref.Dx(), ref.Dy()
	var x, y int
	switch a {
	case AlignCenter:
		x, y = (bw-o.w)/2, (bh-o.h)/2
	case AlignInTopLeft:
		x, y = 0, 0
	case AlignInTopMid:
		x, y = (bw-o.w)/2, 0
	case AlignInTopRight:
		x, y = bw-o.w, 0
	case AlignInBottomLeft:
		x, y = 0, bh-o.h
	case AlignInBottomMid:
		x, y = (bw-o.w)/2, bh-o.h
	case AlignInBottomRight:
		x, y = bw-o.w, bh-o.h
	case AlignInLeftMid:
		x, y = 0, (bh-o.h)/2
	case AlignInRightMid:
		x, y = bw-o.w, (bh-o.h)/2
	}
	absX, absY := ref.Min.X+x+dx, ref.Min.Y+y+dy

	var origin image.Point
	if o.parent != nil {
		origin = o.parent.Coords().Min
	}
	o.SetPos(absX-origin.X, absY-origin.Y)
}

// AddStyle applies a shared style. Styles added later take precedence.
func (o *Obj) AddStyle(s *Style) {
	if s == nil || !s.inited {
		panic("gui: style used before Init")
	}
	o.styles = append(o.styles, s)
	o.invalidate()
}

func (o *Obj) setLocal(p StyleProp, v uint32) {
	o.local.set(p, v)
	o.invalidate()
}

func (o *Obj) SetLocalBgColor(c color.RGBA) { o.setLocal(PropBgColor, packColor(c)) }
func (o *Obj) SetLocalBgOpa(op Opa) { o.setLocal(PropBgOpa, uint32(op)) }
func (o *Obj) SetLocalBorderWidth(w int) { o.setLocal(PropBorderWidth, uint32(max(w, 0))) }
func (o *Obj) SetLocalTextColor(c color.RGBA) { o.setLocal(PropTextColor, packColor(c)) }
func (o *Obj) SetLocalImageRecolor(c color.RGBA) { o.setLocal(PropImageRecolor, packColor(c)) }
func (o *Obj) SetLocalImageRecolorOpa(op Opa) { o.setLocal(PropImageRecolorOpa, uint32(op)) }

func (o *Obj) SetClickable(v bool) { o.clickable = v }

// SetEventHandler registers the callback invoked for input events on o.
func (o *Obj) SetEventHandler(h EventHandler) { o.handler = h }

// prop resolves a property: local value, then added styles (last added
// first), then the theme of the object's kind, then the builtin default.
// Inherited properties continue on the parent before falling back.
func (o *Obj) prop(p StyleProp) uint32 {
	for cur := o; cur != nil; cur = cur.parent {
		if v, ok := cur.ownProp(p); ok {
			return v
		}
		if !p.inherited() {
			break
		}
	}
	return propDefaults[p]
}

func (o *Obj) ownProp(p StyleProp) (uint32, bool) {
	if v, ok := o.local.get(p); ok {
		return v, true
	}
	for i := len(o.styles) - 1; i >= 0; i-- {
		if v, ok := o.styles[i].get(p); ok {
			return v, true
		}
	}
	return o.lib.theme(o.kind).get(p)
}

func (o *Obj) BgColor() color.RGBA { return unpackColor(o.prop(PropBgColor)) }
func (o *Obj) BgOpa() Opa { return Opa(o.prop(PropBgOpa)) }
func (o *Obj) BorderWidth() int { return int(o.prop(PropBorderWidth)) }
func (o *Obj) BorderColor() color.RGBA { return unpackColor(o.prop(PropBorderColor)) }
func (o *Obj) BorderOpa() Opa { return Opa(o.prop(PropBorderOpa)) }
func (o *Obj) TextColor() color.RGBA { return unpackColor(o.prop(PropTextColor)) }
func (o *Obj) ImageRecolor() color.RGBA { return unpackColor(o.prop(PropImageRecolor)) }
func (o *Obj) ImageRecolorOpa() Opa { return Opa(o.prop(PropImageRecolorOpa)) }

// invalidate marks the visible part of o for redraw when o is on the
// loaded screen.
func (o *Obj) invalidate() {
	d := o.lib.disp
	if d == nil || o.lib.active == nil || o.Screen() != o.lib.active {
		return
	}
	d.invalidate(o.visibleArea())
}

// hit returns the topmost clickable object under pt, searching children
// first. A non-clickable child lets the search fall back to its parent.
func (o *Obj) hit(pt image.Point) *Obj {
	if !pt.In(o.Coords()) {
		return nil
	}
	for i := len(o.children) - 1; i >= 0; i-- {
		if found := o.children[i].hit(pt); found != nil {
			return found
		}
	}
	if o.clickable {
		return o
	}
	return nil
}
