//go:build linux

package disp

import (
	"context"
	"encoding/binary"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// fb_var_screeninfo and fb_fix_screeninfo are received into raw buffers
// larger than the kernel structs, then decoded field by field, so kernel
// layout differences cannot overrun them.
type (
	fbVarScreenInfoRaw [160]byte
	fbFixScreenInfoRaw [80]byte
)

type fbHandle struct {
	fd int
}

// Init opens and maps the framebuffer device.
func (d *FBDev) Init(_ context.Context) error {
	fd, err := unix.Open(d.path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("disp: open %s: %w", d.path, err)
	}
	d.dev.fd = fd

	var vinfo fbVarScreenInfoRaw
	if err := ioctlPtr(fd, fbioGetVScreenInfo, unsafe.Pointer(&vinfo[0])); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("disp: FBIOGET_VSCREENINFO: %w", err)
	}
	var finfo fbFixScreenInfoRaw
	if err := ioctlPtr(fd, fbioGetFScreenInfo, unsafe.Pointer(&finfo[0])); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("disp: FBIOGET_FSCREENINFO: %w", err)
	}

	// Offsets into fb_var_screeninfo: xres, yres, ..., bits_per_pixel at 24,
	// red bitfield offset at 32. fb_fix_screeninfo.line_length follows
	// id[16], smem_start (pointer sized), four u32 and three u16 fields,
	// aligned to 4 bytes.
	le := binary.LittleEndian
	fb := fbFormat{
		width:     int(le.Uint32(vinfo[0:4])),
		height:    int(le.Uint32(vinfo[4:8])),
		bpp:       int(le.Uint32(vinfo[24:28])),
		redOffset: int(le.Uint32(vinfo[32:36])),
	}
	lineOff := (16 + int(unsafe.Sizeof(uintptr(0))) + 4*4 + 2*3 + 3) &^ 3
	fb.lineLength = int(le.Uint32(finfo[lineOff : lineOff+4]))

	size := fb.lineLength * fb.height
	if fb.lineLength == 0 {
		size = fb.width * fb.height * fb.bpp / 8
	}
	mem, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("disp: mmap %s: %w", d.path, err)
	}
	if err := d.attach(fb, mem); err != nil {
		_ = unix.Munmap(mem)
		_ = unix.Close(fd)
		return err
	}
	return nil
}

func ioctlPtr(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Close unmaps and closes the device.
func (d *FBDev) Close() error {
	if d.mem != nil {
		_ = unix.Munmap(d.mem)
		d.mem = nil
	}
	if d.dev.fd > 0 {
		err := unix.Close(d.dev.fd)
		d.dev.fd = 0
		return err
	}
	return nil
}
