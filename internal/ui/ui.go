// Package ui builds the emergency screen.
package ui

import (
	"errors"

	"touchpanel/internal/gui"
)

// Screen geometry. The screen is slightly larger than the panel and the
// background is pulled 5 px up and left so no theme border shows at the
// panel edges.
const (
	ScreenWidth  = 250
	ScreenHeight = 330

	ButtonWidth  = 200
	ButtonHeight = 40

	LabelWidth  = 84
	LabelHeight = 16
	LabelText   = "Emergency"

	IconSize    = 50
	IconOffsetX = 10
	IconOffsetY = 10

	backgroundOffset = -5
)

var ErrNoImage = errors.New("ui: icon image is missing")

// Context holds every widget of the screen plus the shared style applied to
// all of them. The widgets live as long as the library instance.
type Context struct {
	Screen     *gui.Obj
	Background *gui.Obj
	Button     *gui.Obj
	Label      *gui.Label
	Image      *gui.Image

	NoBorder gui.Style
}

// EmergencyHandler is registered on the button. Pressing it has no visible
// effect.
func EmergencyHandler(_ *gui.Obj, _ gui.Event) {}

// Build creates the widget tree on lib and loads it as the active screen.
// The caller must hold the GUI lock.
func Build(lib *gui.Lib, icon *gui.ImageDescriptor) (*Context, error) {
	if icon == nil || icon.Pix == nil {
		return nil, ErrNoImage
	}
	c := &Context{}

	c.NoBorder.Init()
	c.NoBorder.SetBorderWidth(0)

	c.Screen = lib.NewObj(nil)
	c.Screen.SetSize(ScreenWidth, ScreenHeight)
	c.Screen.AddStyle(&c.NoBorder)

	c.Background = lib.NewObj(c.Screen)
	c.Background.SetSize(ScreenWidth, ScreenHeight)
	c.Background.Align(nil, gui.AlignInTopLeft, backgroundOffset, backgroundOffset)
	c.Background.SetLocalBgColor(gui.ColorBlack)
	c.Background.AddStyle(&c.NoBorder)

	c.Button = lib.NewButton(c.Screen)
	c.Button.SetSize(ButtonWidth, ButtonHeight)
	c.Button.SetClickable(true)
	c.Button.Align(nil, gui.AlignCenter, 0, 0)
	c.Button.SetLocalBgColor(gui.ColorBlue)
	c.Button.AddStyle(&c.NoBorder)
	c.Button.SetEventHandler(EmergencyHandler)

	c.Label = lib.NewLabel(c.Button)
	c.Label.SetLongMode(gui.LongExpand)
	c.Label.SetTextAlign(gui.TextAlignCenter)
	c.Label.SetText(LabelText)
	c.Label.SetSize(LabelWidth, LabelHeight)
	c.Label.SetLocalTextColor(gui.ColorWhite)
	c.Label.AddStyle(&c.NoBorder)
	c.Label.Align(nil, gui.AlignCenter, 0, 0)

	c.Image = lib.NewImage(c.Screen)
	c.Image.SetSrc(icon)
	c.Image.SetLocalImageRecolor(gui.ColorWhite)
	c.Image.SetLocalImageRecolorOpa(gui.OpaCover)
	c.Image.SetSize(IconSize, IconSize)
	c.Image.Align(nil, gui.AlignInTopLeft, IconOffsetX, IconOffsetY)

	lib.LoadScreen(c.Screen)
	return c, nil
}
