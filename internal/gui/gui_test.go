package gui

import (
	"image"
	"image/color"
	"testing"
)

// testPanel records flushed stripes into a full frame.
type testPanel struct {
	frame   *image.RGBA
	flushes int
	areas   []image.Rectangle
}

func newTestLib(t *testing.T, double bool) (*Lib, *testPanel) {
	t.Helper()
	const size = DefaultHorRes * 40

	lib := New()
	buf1 := make([]color.RGBA, size)
	var buf2 []color.RGBA
	if double {
		buf2 = make([]color.RGBA, size)
	}
	db, err := NewDrawBuf(buf1, buf2, size)
	if err != nil {
		t.Fatalf("NewDrawBuf() error = %v", err)
	}

	p := &testPanel{frame: image.NewRGBA(image.Rect(0, 0, DefaultHorRes, DefaultVerRes))}
	drv := NewDisplayDriver(db, func(d *Display, area image.Rectangle, px []color.RGBA) {
		if len(px) != area.Dx()*area.Dy() {
			t.Errorf("flush got %d px for area %v", len(px), area)
		}
		i := 0
		for y := area.Min.Y; y < area.Max.Y; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				p.frame.SetRGBA(x, y, px[i])
				i++
			}
		}
		p.flushes++
		p.areas = append(p.areas, area)
		d.FlushReady()
	})
	if _, err := lib.RegisterDisplay(drv); err != nil {
		t.Fatalf("RegisterDisplay() error = %v", err)
	}
	return lib, p
}

// step advances the clock past the refresh period and runs the handler.
func step(lib *Lib) {
	lib.TickInc(RefreshPeriod)
	lib.TaskHandler()
}

func TestTickInc_AccumulatesExactly(t *testing.T) {
	lib := New()
	for i := 0; i < 1000; i++ {
		lib.TickInc(1)
	}
	if got := lib.TickGet(); got != 1000 {
		t.Errorf("TickGet() = %d, want 1000", got)
	}
}

func TestTickElapsed_WrapsAround(t *testing.T) {
	lib := New()
	lib.TickInc(^uint32(0) - 4) // 5 below wrap
	prev := lib.TickGet()
	lib.TickInc(10)
	if got := lib.TickElapsed(prev); got != 10 {
		t.Errorf("TickElapsed() = %d, want 10", got)
	}
}

func TestNewDrawBuf_Validation(t *testing.T) {
	tests := map[string]struct {
		buf1, buf2 []color.RGBA
		size       int
		wantErr    error
	}{
		"nil first buffer": {
			buf1: nil, size: 10, wantErr: ErrNoBuffer,
		},
		"first too small": {
			buf1: make([]color.RGBA, 5), size: 10, wantErr: ErrBufferTooSmall,
		},
		"second too small": {
			buf1: make([]color.RGBA, 10), buf2: make([]color.RGBA, 5), size: 10, wantErr: ErrBufferTooSmall,
		},
		"single buffer ok": {
			buf1: make([]color.RGBA, 10), size: 10,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewDrawBuf(tt.buf1, tt.buf2, tt.size)
			if err != tt.wantErr {
				t.Errorf("NewDrawBuf() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegisterDisplay_RejectsSecondDisplay(t *testing.T) {
	lib, _ := newTestLib(t, true)
	db, _ := NewDrawBuf(make([]color.RGBA, DefaultHorRes), nil, DefaultHorRes)
	_, err := lib.RegisterDisplay(NewDisplayDriver(db, func(d *Display, _ image.Rectangle, _ []color.RGBA) { d.FlushReady() }))
	if err != ErrDisplayExists {
		t.Errorf("second RegisterDisplay() error = %v, want %v", err, ErrDisplayExists)
	}
}

func TestAddStyle_PanicsOnUninitializedStyle(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)

	defer func() {
		if recover() == nil {
			t.Error("AddStyle with an uninitialized style should panic")
		}
	}()
	var s Style
	scr.AddStyle(&s)
}

func TestStyleSetter_PanicsBeforeInit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("setter on an uninitialized style should panic")
		}
	}()
	var s Style
	s.SetBorderWidth(0)
}

func TestPropPrecedence(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)
	btn := lib.NewButton(scr)

	if got := btn.BorderWidth(); got != 2 {
		t.Fatalf("theme border width = %d, want 2", got)
	}

	var a, b Style
	a.Init()
	a.SetBorderWidth(5)
	b.Init()
	b.SetBorderWidth(0)
	btn.AddStyle(&a)
	btn.AddStyle(&b)
	if got := btn.BorderWidth(); got != 0 {
		t.Errorf("last added style should win, got border %d", got)
	}

	btn.SetLocalBorderWidth(3)
	if got := btn.BorderWidth(); got != 3 {
		t.Errorf("local value should win, got border %d", got)
	}
}

func TestTextColor_InheritsFromParent(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)
	btn := lib.NewButton(scr)
	lbl := lib.NewLabel(btn)

	if got := lbl.TextColor(); got != ColorWhite {
		t.Errorf("label in button text color = %v, want white from button theme", got)
	}
	btn.SetLocalTextColor(RGB(1, 2, 3))
	if got := lbl.TextColor(); got != RGB(1, 2, 3) {
		t.Errorf("label should inherit local parent color, got %v", got)
	}
}

func TestChildWithoutParent_Panics(t *testing.T) {
	lib := New()
	tests := map[string]func(){
		"button": func() { lib.NewButton(nil) },
		"label":  func() { lib.NewLabel(nil) },
		"image":  func() { lib.NewImage(nil) },
	}
	for name, create := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("creating a %s without parent should panic", name)
				}
			}()
			create()
		})
	}
}

func TestAlign(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)
	scr.SetSize(250, 330)

	bg := lib.NewObj(scr)
	bg.SetSize(250, 330)
	bg.Align(scr, AlignInTopLeft, -5, -5)
	if x, y := bg.Pos(); x != -5 || y != -5 {
		t.Errorf("top-left align pos = (%d,%d), want (-5,-5)", x, y)
	}

	btn := lib.NewButton(scr)
	btn.SetSize(200, 40)
	btn.Align(scr, AlignCenter, 0, 0)
	if x, y := btn.Pos(); x != 25 || y != 145 {
		t.Errorf("center align pos = (%d,%d), want (25,145)", x, y)
	}

	lbl := lib.NewLabel(btn)
	lbl.SetSize(84, 16)
	lbl.Align(btn, AlignCenter, 0, 0)
	if x, y := lbl.Pos(); x != 58 || y != 12 {
		t.Errorf("label pos relative to button = (%d,%d), want (58,12)", x, y)
	}
	if got, want := lbl.Coords().Min, image.Pt(25+58, 145+12); got != want {
		t.Errorf("label absolute origin = %v, want %v", got, want)
	}
}

func TestLabel_ExpandThenExplicitSize(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)
	lbl := lib.NewLabel(scr)
	lbl.SetLongMode(LongExpand)
	lbl.SetText("Emergency")

	w, h := lbl.Size()
	if w != 9*7 || h != 13 {
		t.Errorf("expanded size = %dx%d, want 63x13", w, h)
	}

	lbl.SetSize(84, 16)
	if w, h := lbl.Size(); w != 84 || h != 16 {
		t.Errorf("explicit size = %dx%d, want 84x16", w, h)
	}
}

func TestRefresh_WaitsForPeriod(t *testing.T) {
	lib, panel := newTestLib(t, true)
	scr := lib.NewObj(nil)
	lib.LoadScreen(scr)

	lib.TickInc(RefreshPeriod - 1)
	lib.TaskHandler()
	if panel.flushes != 0 {
		t.Fatalf("flushed %d times before the refresh period", panel.flushes)
	}

	lib.TickInc(1)
	lib.TaskHandler()
	if panel.flushes == 0 {
		t.Fatal("expected a flush once the refresh period elapsed")
	}
	if n := len(lib.Display().InvalidAreas()); n != 0 {
		t.Errorf("invalid areas left after refresh: %d", n)
	}
}

func TestRefresh_StripesFitBuffer(t *testing.T) {
	for name, double := range map[string]bool{"single": false, "double": true} {
		t.Run(name, func(t *testing.T) {
			lib, panel := newTestLib(t, double)
			scr := lib.NewObj(nil)
			lib.LoadScreen(scr)
			step(lib)

			// 240x320 screen, 40-row buffer.
			if panel.flushes != 8 {
				t.Errorf("flushes = %d, want 8", panel.flushes)
			}
			covered := 0
			for _, a := range panel.areas {
				if a.Dx()*a.Dy() > DefaultHorRes*40 {
					t.Errorf("stripe %v larger than draw buffer", a)
				}
				covered += a.Dx() * a.Dy()
			}
			if covered != DefaultHorRes*DefaultVerRes {
				t.Errorf("covered %d px, want full screen", covered)
			}
		})
	}
}

func TestRender_BackgroundBorderAndClip(t *testing.T) {
	lib, panel := newTestLib(t, true)
	scr := lib.NewObj(nil)
	scr.SetLocalBgColor(ColorBlack)
	scr.SetLocalBorderWidth(0)

	box := lib.NewObj(scr)
	box.SetSize(20, 20)
	box.SetPos(10, 10)
	box.SetLocalBgColor(ColorBlue)
	box.SetLocalBorderWidth(2)

	// Child hanging out of its parent is clipped.
	inner := lib.NewObj(box)
	inner.SetSize(40, 40)
	inner.SetPos(15, 15)
	inner.SetLocalBgColor(ColorWhite)
	inner.SetLocalBorderWidth(0)

	lib.LoadScreen(scr)
	step(lib)

	tests := map[string]struct {
		pt   image.Point
		want color.RGBA
	}{
		"screen background": {image.Pt(100, 100), ColorBlack},
		"box border":        {image.Pt(10, 10), RGB(0xC0, 0xC0, 0xC0)},
		"box body":          {image.Pt(15, 15), ColorBlue},
		"inner inside box":  {image.Pt(27, 27), ColorWhite},
		"inner clipped":     {image.Pt(40, 40), ColorBlack},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := panel.frame.RGBAAt(tt.pt.X, tt.pt.Y); got != tt.want {
				t.Errorf("pixel %v = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}

func TestRender_ImageRecolor(t *testing.T) {
	lib, panel := newTestLib(t, true)
	scr := lib.NewObj(nil)
	scr.SetLocalBgColor(ColorBlack)
	scr.SetLocalBorderWidth(0)

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{A: 0xFF}) // black, opaque
	img := lib.NewImage(scr)
	img.SetSrc(&ImageDescriptor{Name: "dot", Pix: src})
	img.SetPos(10, 10)
	img.SetLocalImageRecolor(ColorWhite)
	img.SetLocalImageRecolorOpa(OpaCover)

	lib.LoadScreen(scr)
	step(lib)

	if got := panel.frame.RGBAAt(11, 11); got != ColorWhite {
		t.Errorf("recolored pixel = %v, want white", got)
	}
	if got := panel.frame.RGBAAt(10, 10); got != ColorBlack {
		t.Errorf("transparent pixel = %v, want background black", got)
	}
	// 4x4 source tiled when the object is larger.
	img.SetSize(8, 8)
	step(lib)
	if got := panel.frame.RGBAAt(15, 15); got != ColorWhite {
		t.Errorf("tiled pixel = %v, want white", got)
	}
}

func TestRender_LabelText(t *testing.T) {
	lib, panel := newTestLib(t, true)
	scr := lib.NewObj(nil)
	scr.SetLocalBgColor(ColorBlack)
	scr.SetLocalBorderWidth(0)
	lbl := lib.NewLabel(scr)
	lbl.SetText("HHH")
	lbl.SetLocalTextColor(ColorWhite)
	lib.LoadScreen(scr)
	step(lib)

	lit := 0
	area := lbl.Coords()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if panel.frame.RGBAAt(x, y) == ColorWhite {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("label rendered no text pixels")
	}
	if got := panel.frame.RGBAAt(area.Max.X+5, area.Min.Y+5); got != ColorBlack {
		t.Errorf("pixel right of label = %v, want black", got)
	}
}

func TestInvalidate_OnlyActiveScreen(t *testing.T) {
	lib, _ := newTestLib(t, true)
	shown := lib.NewObj(nil)
	hidden := lib.NewObj(nil)
	lib.LoadScreen(shown)
	step(lib)

	hidden.SetLocalBgColor(ColorBlue)
	if n := len(lib.Display().InvalidAreas()); n != 0 {
		t.Errorf("change on hidden screen invalidated %d areas", n)
	}

	shown.SetLocalBgColor(ColorBlue)
	if n := len(lib.Display().InvalidAreas()); n != 1 {
		t.Errorf("change on active screen invalidated %d areas, want 1", n)
	}
}

func TestInvalidate_MergesOverlapping(t *testing.T) {
	lib, _ := newTestLib(t, true)
	d := lib.Display()
	d.invalidate(image.Rect(0, 0, 10, 10))
	d.invalidate(image.Rect(5, 0, 15, 10))
	d.invalidate(image.Rect(100, 100, 110, 110))

	got := d.InvalidAreas()
	if len(got) != 2 {
		t.Fatalf("invalid areas = %v, want 2 entries", got)
	}
	if got[0] != image.Rect(0, 0, 15, 10) {
		t.Errorf("merged area = %v, want (0,0)-(15,10)", got[0])
	}
}

func TestTaskHandler_PanicsOnReentry(t *testing.T) {
	lib, _ := newTestLib(t, true)
	scr := lib.NewObj(nil)
	lib.LoadScreen(scr)

	pressed := true
	lib.RegisterInput(InputDriver{Read: func(data *InputData) bool {
		data.Point = image.Pt(5, 5)
		if pressed {
			data.State = InputPressed
		}
		return false
	}})
	scr.SetEventHandler(func(*Obj, Event) { lib.TaskHandler() })

	defer func() {
		if recover() == nil {
			t.Error("re-entering TaskHandler from a handler should panic")
		}
	}()
	lib.TickInc(InputPeriod)
	lib.TaskHandler()
}
