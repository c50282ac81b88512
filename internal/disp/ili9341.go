package disp

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"touchpanel/internal/config"
	"touchpanel/internal/convert"
	"touchpanel/internal/gui"
)

// ILI9341 command set (subset).
const (
	cmdSWReset   = 0x01
	cmdSleepOut  = 0x11
	cmdGammaSet  = 0x26
	cmdDispOn    = 0x29
	cmdColAddr   = 0x2A
	cmdPageAddr  = 0x2B
	cmdMemWrite  = 0x2C
	cmdMADCTL    = 0x36
	cmdPixFormat = 0x3A
	cmdFrameCtl  = 0xB1
	cmdDispFunc  = 0xB6
	cmdPwrCtl1   = 0xC0
	cmdPwrCtl2   = 0xC1
	cmdVCOMCtl1  = 0xC5
	cmdVCOMCtl2  = 0xC7
	cmdPosGamma  = 0xE0
	cmdNegGamma  = 0xE1
)

// defaultMaxTx is used when the SPI connection does not report a limit.
const defaultMaxTx = 4096

type initCmd struct {
	cmd   byte
	data  []byte
	delay time.Duration
}

// ili9341Init brings the controller into portrait 240x320, RGB565 mode.
var ili9341Init = []initCmd{
	{cmd: cmdSWReset, delay: 5 * time.Millisecond},
	{cmd: cmdPwrCtl1, data: []byte{0x26}},
	{cmd: cmdPwrCtl2, data: []byte{0x11}},
	{cmd: cmdVCOMCtl1, data: []byte{0x35, 0x3E}},
	{cmd: cmdVCOMCtl2, data: []byte{0xBE}},
	{cmd: cmdMADCTL, data: []byte{0x48}},
	{cmd: cmdPixFormat, data: []byte{0x55}},
	{cmd: cmdFrameCtl, data: []byte{0x00, 0x1B}},
	{cmd: cmdGammaSet, data: []byte{0x01}},
	{cmd: cmdPosGamma, data: []byte{0x1F, 0x1A, 0x18, 0x0A, 0x0F, 0x06, 0x45, 0x87, 0x32, 0x0A, 0x07, 0x02, 0x07, 0x05, 0x00}},
	{cmd: cmdNegGamma, data: []byte{0x00, 0x25, 0x27, 0x05, 0x10, 0x09, 0x3A, 0x78, 0x4D, 0x05, 0x18, 0x0D, 0x38, 0x3A, 0x1F}},
	{cmd: cmdDispFunc, data: []byte{0x0A, 0x82, 0x27, 0x00}},
	{cmd: cmdSleepOut, delay: 120 * time.Millisecond},
	{cmd: cmdDispOn, delay: 20 * time.Millisecond},
}

// ILI9341 drives a 240x320 SPI TFT through periph.io.
type ILI9341 struct {
	cfg config.DisplayConfig

	port spi.PortCloser
	conn spi.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut
	bl   gpio.PinOut

	maxTx int
	txBuf []byte
}

// NewILI9341 returns an unopened driver; Init opens the bus and pins.
func NewILI9341(cfg config.DisplayConfig) *ILI9341 {
	return &ILI9341{cfg: cfg}
}

// newILI9341Conn wires an already opened connection, skipping periph host
// and registry lookups.
func newILI9341Conn(c spi.Conn, dc, rst, bl gpio.PinOut) *ILI9341 {
	d := &ILI9341{conn: c, dc: dc, rst: rst, bl: bl}
	d.setupTx()
	return d
}

func (d *ILI9341) Resolution() (w, h int) { return gui.DefaultHorRes, gui.DefaultVerRes }

// Init initializes periph.io, opens the SPI port, resolves the GPIO pins and
// runs the controller init sequence.
func (d *ILI9341) Init(ctx context.Context) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("disp: periph host init failed: %w", err)
	}

	port, err := spireg.Open(d.cfg.SPIPort)
	if err != nil {
		return fmt.Errorf("disp: failed to open SPI port %q: %w", d.cfg.SPIPort, err)
	}
	c, err := port.Connect(physic.Frequency(d.cfg.SPIHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("disp: failed to connect SPI: %w", err)
	}
	d.port, d.conn = port, c

	if d.dc, err = outPin(d.cfg.DCPin, gpio.Low); err != nil {
		_ = port.Close()
		return err
	}
	// Reset and backlight are optional on boards that hard-wire them.
	if d.cfg.ResetPin != "" {
		if d.rst, err = outPin(d.cfg.ResetPin, gpio.High); err != nil {
			_ = port.Close()
			return err
		}
	}
	if d.cfg.BacklightPin != "" {
		if d.bl, err = outPin(d.cfg.BacklightPin, gpio.Low); err != nil {
			_ = port.Close()
			return err
		}
	}
	d.setupTx()

	return d.start(ctx)
}

func outPin(name string, initial gpio.Level) (gpio.PinOut, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("disp: gpio %s not found", name)
	}
	if err := p.Out(initial); err != nil {
		return nil, fmt.Errorf("disp: gpio %s Out failed: %w", name, err)
	}
	return p, nil
}

func (d *ILI9341) setupTx() {
	d.maxTx = defaultMaxTx
	if l, ok := d.conn.(conn.Limits); ok && l.MaxTxSize() > 0 {
		d.maxTx = l.MaxTxSize()
	}
	d.txBuf = make([]byte, convert.RGB565Size(DispBufSize))
}

// start resets the controller, sends the init sequence and turns on the
// backlight.
func (d *ILI9341) start(ctx context.Context) error {
	if d.rst != nil {
		for _, step := range []struct {
			level gpio.Level
			wait  time.Duration
		}{{gpio.High, 5 * time.Millisecond}, {gpio.Low, 20 * time.Millisecond}, {gpio.High, 150 * time.Millisecond}} {
			if err := d.rst.Out(step.level); err != nil {
				return fmt.Errorf("disp: reset pin: %w", err)
			}
			if err := sleepCtx(ctx, step.wait); err != nil {
				return err
			}
		}
	}

	for _, c := range ili9341Init {
		if err := d.command(c.cmd, c.data...); err != nil {
			return fmt.Errorf("disp: init command 0x%02X: %w", c.cmd, err)
		}
		if c.delay > 0 {
			if err := sleepCtx(ctx, c.delay); err != nil {
				return err
			}
		}
	}

	if d.bl != nil {
		if err := d.bl.Out(gpio.High); err != nil {
			return fmt.Errorf("disp: backlight pin: %w", err)
		}
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// command sends cmd with DC low, then its parameters with DC high.
func (d *ILI9341) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.conn.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return d.write(data)
}

// write sends data with DC high, split to the connection's transfer limit.
func (d *ILI9341) write(data []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(data) > 0 {
		n := min(len(data), d.maxTx)
		if err := d.conn.Tx(data[:n], nil); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Flush sets the address window to area and streams px as RGB565.
func (d *ILI9341) Flush(area image.Rectangle, px []color.RGBA) error {
	if area.Empty() {
		return nil
	}
	x0, x1 := area.Min.X, area.Max.X-1
	y0, y1 := area.Min.Y, area.Max.Y-1
	if err := d.command(cmdColAddr, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return fmt.Errorf("disp: column address: %w", err)
	}
	if err := d.command(cmdPageAddr, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return fmt.Errorf("disp: page address: %w", err)
	}

	n := convert.RGB565Size(len(px))
	if n > len(d.txBuf) {
		d.txBuf = make([]byte, n)
	}
	buf := d.txBuf[:n]
	if err := convert.PackRGB565(buf, px, convert.BigEndian); err != nil {
		return err
	}
	if err := d.command(cmdMemWrite); err != nil {
		return fmt.Errorf("disp: memory write: %w", err)
	}
	return d.write(buf)
}

// Close turns off the backlight and releases the SPI port.
func (d *ILI9341) Close() error {
	if d.bl != nil {
		_ = d.bl.Out(gpio.Low)
	}
	if d.port != nil {
		return d.port.Close()
	}
	return nil
}
