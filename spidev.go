// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package spidev

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/warthog618/go-spidev/uapi"
)

// Device provides the interface to one spidev character device, and so to
// one peripheral on an SPI bus.
//
// All operations on the Device are synchronous, each issuing a single
// blocking ioctl against the device file.  Failed operations return the
// error from the kernel, with the errno available via errors.Cause, and
// are never retried.
type Device struct {
	f *os.File

	// set if the file was opened by Open and so is closed by Close.
	owned bool

	// the raw ioctl issuer, replaceable for testing.
	ioctl func(fd uintptr, req uapi.Ioctl, arg uintptr) error
}

// Open opens the spidev device at path, e.g. "/dev/spidev0.0", and
// applies any configuration options.
//
// The available options are [WithMode], [WithMode32], [WithBitsPerWord],
// [WithMaxSpeedHz] and [WithLSBFirst].
//
// If applying an option fails then the device is closed and the error
// returned.
func Open(path string, options ...ConfigOption) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	d := &Device{f: f, owned: true, ioctl: uapi.Call}
	if err = d.Configure(options...); err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// NewDevice wraps an already open spidev file.
//
// The file remains owned by the caller, who is responsible for closing
// it once the Device is no longer in use.
func NewDevice(f *os.File) *Device {
	return &Device{f: f, ioctl: uapi.Call}
}

// Close closes the device file, if it was opened by [Open].
//
// Files adopted through [NewDevice] are left open for the caller.
func (d *Device) Close() error {
	if !d.owned {
		return nil
	}
	return d.f.Close()
}

// Configure applies the configuration options to the device, in the
// order provided.
//
// The first option that cannot be applied aborts the remainder and its
// error is returned.
func (d *Device) Configure(options ...ConfigOption) error {
	c := config{}
	for _, o := range options {
		o.applyConfigOption(&c)
	}
	if c.mode != nil {
		if err := d.SetMode(*c.mode); err != nil {
			return err
		}
	}
	if c.mode32 != nil {
		if err := d.SetMode32(*c.mode32); err != nil {
			return err
		}
	}
	if c.bitsPerWord != nil {
		if err := d.SetBitsPerWord(*c.bitsPerWord); err != nil {
			return err
		}
	}
	if c.maxSpeedHz != nil {
		if err := d.SetMaxSpeedHz(*c.maxSpeedHz); err != nil {
			return err
		}
	}
	if c.lsbFirst != nil {
		if err := d.SetLSBFirst(*c.lsbFirst); err != nil {
			return err
		}
	}
	return nil
}

// Read reads from the device, half-duplex.
//
// The controller shifts out zeroes while reading.
func (d *Device) Read(p []byte) (int, error) {
	return d.f.Read(p)
}

// Write writes to the device, half-duplex, discarding whatever arrives
// on the wire during the write.
func (d *Device) Write(p []byte) (int, error) {
	return d.f.Write(p)
}

// Mode returns the mode byte of the device, containing both the SPI mode
// and the option flags.
func (d *Device) Mode() (Mode, error) {
	var m uint8
	err := d.ioctl(d.f.Fd(), uapi.RdMode, uintptr(unsafe.Pointer(&m)))
	if err != nil {
		return 0, errors.Wrap(err, "spidev get mode")
	}
	return Mode(m), nil
}

// SetMode sets the mode byte of the device.
//
// The mode is composed from the [Mode0] to [Mode3] values, or CPHA/CPOL
// directly, OR'd with any option flags.
func (d *Device) SetMode(m Mode) error {
	v := uint8(m)
	err := d.ioctl(d.f.Fd(), uapi.WrMode, uintptr(unsafe.Pointer(&v)))
	return errors.Wrap(err, "spidev set mode")
}

// Mode32 returns the full 32-bit mode field of the device.
//
// The low byte matches [Device.Mode]; the upper bits carry flags, such
// as dual and quad signalling, that do not fit the legacy byte.
func (d *Device) Mode32() (uint32, error) {
	var m uint32
	err := d.ioctl(d.f.Fd(), uapi.RdMode32, uintptr(unsafe.Pointer(&m)))
	if err != nil {
		return 0, errors.Wrap(err, "spidev get mode32")
	}
	return m, nil
}

// SetMode32 sets the full 32-bit mode field of the device.
func (d *Device) SetMode32(m uint32) error {
	err := d.ioctl(d.f.Fd(), uapi.WrMode32, uintptr(unsafe.Pointer(&m)))
	return errors.Wrap(err, "spidev set mode32")
}

// LSBFirst returns true if the device transmits the least significant
// bit of each word first.
func (d *Device) LSBFirst() (bool, error) {
	var v uint8
	err := d.ioctl(d.f.Fd(), uapi.RdLSBFirst, uintptr(unsafe.Pointer(&v)))
	if err != nil {
		return false, errors.Wrap(err, "spidev get lsb first")
	}
	return v != 0, nil
}

// SetLSBFirst sets the bit justification of the device, least
// significant bit first if lsb is true, else most significant first.
func (d *Device) SetLSBFirst(lsb bool) error {
	var v uint8
	if lsb {
		v = 1
	}
	err := d.ioctl(d.f.Fd(), uapi.WrLSBFirst, uintptr(unsafe.Pointer(&v)))
	return errors.Wrap(err, "spidev set lsb first")
}

// BitsPerWord returns the word size of the device in bits.
//
// A value of 0 indicates the default of 8 bits.
func (d *Device) BitsPerWord() (uint8, error) {
	var v uint8
	err := d.ioctl(d.f.Fd(), uapi.RdBitsPerWord, uintptr(unsafe.Pointer(&v)))
	if err != nil {
		return 0, errors.Wrap(err, "spidev get bits per word")
	}
	return v, nil
}

// SetBitsPerWord sets the word size of the device in bits.
func (d *Device) SetBitsPerWord(bpw uint8) error {
	err := d.ioctl(d.f.Fd(), uapi.WrBitsPerWord, uintptr(unsafe.Pointer(&bpw)))
	return errors.Wrap(err, "spidev set bits per word")
}

// MaxSpeedHz returns the maximum clock speed of the device in Hz.
func (d *Device) MaxSpeedHz() (uint32, error) {
	var v uint32
	err := d.ioctl(d.f.Fd(), uapi.RdMaxSpeedHz, uintptr(unsafe.Pointer(&v)))
	if err != nil {
		return 0, errors.Wrap(err, "spidev get max speed")
	}
	return v, nil
}

// SetMaxSpeedHz sets the maximum clock speed of the device in Hz.
func (d *Device) SetMaxSpeedHz(hz uint32) error {
	err := d.ioctl(d.f.Fd(), uapi.WrMaxSpeedHz, uintptr(unsafe.Pointer(&hz)))
	return errors.Wrap(err, "spidev set max speed")
}
