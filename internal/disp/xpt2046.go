package disp

import (
	"context"
	"fmt"
	"image"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"touchpanel/internal/config"
	"touchpanel/internal/gui"
)

// XPT2046 control bytes: start bit, channel, 12-bit differential mode,
// power down between conversions.
const (
	xptReadX  = 0xD0
	xptReadY  = 0x90
	xptReadZ1 = 0xB0
)

// xptPressure is the minimum Z1 reading treated as a touch.
const xptPressure = 100

// xptSamples readings are averaged per axis.
const xptSamples = 4

// XPT2046 reads a resistive touch controller over SPI.
type XPT2046 struct {
	cfg           config.TouchConfig
	width, height int

	port spi.PortCloser
	conn spi.Conn
	irq  gpio.PinIn

	last image.Point
}

// NewXPT2046 returns an unopened controller mapped to a w x h panel.
func NewXPT2046(cfg config.TouchConfig, w, h int) *XPT2046 {
	return &XPT2046{cfg: cfg, width: w, height: h}
}

func newXPT2046Conn(cfg config.TouchConfig, w, h int, c spi.Conn, irq gpio.PinIn) *XPT2046 {
	return &XPT2046{cfg: cfg, width: w, height: h, conn: c, irq: irq}
}

func (t *XPT2046) Init(_ context.Context) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("disp: periph host init failed: %w", err)
	}
	port, err := spireg.Open(t.cfg.SPIPort)
	if err != nil {
		return fmt.Errorf("disp: failed to open touch SPI port %q: %w", t.cfg.SPIPort, err)
	}
	c, err := port.Connect(physic.Frequency(t.cfg.SPIHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("disp: failed to connect touch SPI: %w", err)
	}
	t.port, t.conn = port, c

	if t.cfg.IRQPin != "" {
		p := gpioreg.ByName(t.cfg.IRQPin)
		if p == nil {
			_ = port.Close()
			return fmt.Errorf("disp: gpio %s not found", t.cfg.IRQPin)
		}
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			_ = port.Close()
			return fmt.Errorf("disp: gpio %s In failed: %w", t.cfg.IRQPin, err)
		}
		t.irq = p
	}
	return nil
}

// sample runs one conversion and returns the 12-bit result.
func (t *XPT2046) sample(ctrl byte) (int, error) {
	w := []byte{ctrl, 0, 0}
	r := make([]byte, 3)
	if err := t.conn.Tx(w, r); err != nil {
		return 0, err
	}
	return (int(r[1])<<8 | int(r[2])) >> 3, nil
}

func (t *XPT2046) average(ctrl byte) (int, error) {
	sum := 0
	for i := 0; i < xptSamples; i++ {
		v, err := t.sample(ctrl)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / xptSamples, nil
}

// Read reports the pointer state. On a bus error the pointer is reported
// released at its last position.
func (t *XPT2046) Read(data *gui.InputData) bool {
	data.Point = t.last
	data.State = gui.InputReleased

	// IRQ is active low while the panel is touched.
	if t.irq != nil && t.irq.Read() == gpio.High {
		return false
	}
	z, err := t.sample(xptReadZ1)
	if err != nil || z < xptPressure {
		return false
	}
	rx, err := t.average(xptReadX)
	if err != nil {
		return false
	}
	ry, err := t.average(xptReadY)
	if err != nil {
		return false
	}

	t.last = image.Pt(
		scale(rx, t.cfg.XMin, t.cfg.XMax, t.width),
		scale(ry, t.cfg.YMin, t.cfg.YMax, t.height),
	)
	data.Point = t.last
	data.State = gui.InputPressed
	return false
}

// scale maps a raw reading in [lo, hi] onto [0, size) and clamps.
func scale(raw, lo, hi, size int) int {
	if hi <= lo {
		return 0
	}
	v := (raw - lo) * size / (hi - lo)
	return min(max(v, 0), size-1)
}

func (t *XPT2046) Close() error {
	if t.port != nil {
		return t.port.Close()
	}
	return nil
}
