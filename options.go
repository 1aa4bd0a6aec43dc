// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package spidev

import "time"

// ConfigOption defines the interface required to provide a device
// configuration option to [Open] or [Device.Configure].
type ConfigOption interface {
	applyConfigOption(*config)
}

// TransferOption defines the interface required to provide an option to
// the transfer constructors.
type TransferOption interface {
	applyTransferOption(*Transfer)
}

// config collects the device fields to be set by Configure.
//
// Only fields provided via options are applied, so each is optional.
type config struct {
	mode        *Mode
	mode32      *uint32
	bitsPerWord *uint8
	maxSpeedHz  *uint32
	lsbFirst    *bool
}

// ModeOption sets the mode byte of the device.
type ModeOption Mode

// WithMode returns an option that sets the mode byte of the device,
// including any option flags OR'd into it.
func WithMode(m Mode) ModeOption {
	return ModeOption(m)
}

func (o ModeOption) applyConfigOption(c *config) {
	m := Mode(o)
	c.mode = &m
}

// Mode32Option sets the full 32-bit mode field of the device.
type Mode32Option uint32

// WithMode32 returns an option that sets the full 32-bit mode field of
// the device.
func WithMode32(m uint32) Mode32Option {
	return Mode32Option(m)
}

func (o Mode32Option) applyConfigOption(c *config) {
	m := uint32(o)
	c.mode32 = &m
}

// BitsPerWordOption sets the word size of a device or a transfer.
type BitsPerWordOption uint8

// WithBitsPerWord returns an option that sets the word size in bits.
//
// As a device option it sets the device word size.  As a transfer option
// it overrides the device word size for that transfer only.
func WithBitsPerWord(bpw uint8) BitsPerWordOption {
	return BitsPerWordOption(bpw)
}

func (o BitsPerWordOption) applyConfigOption(c *config) {
	bpw := uint8(o)
	c.bitsPerWord = &bpw
}

func (o BitsPerWordOption) applyTransferOption(t *Transfer) {
	t.bitsPerWord = uint8(o)
}

// MaxSpeedHzOption sets the maximum clock speed of the device.
type MaxSpeedHzOption uint32

// WithMaxSpeedHz returns an option that sets the maximum clock speed of
// the device in Hz.
func WithMaxSpeedHz(hz uint32) MaxSpeedHzOption {
	return MaxSpeedHzOption(hz)
}

func (o MaxSpeedHzOption) applyConfigOption(c *config) {
	hz := uint32(o)
	c.maxSpeedHz = &hz
}

// LSBFirstOption sets the bit justification of the device.
type LSBFirstOption bool

// WithLSBFirst returns an option that sets the bit justification of the
// device, least significant bit first if lsb is true.
func WithLSBFirst(lsb bool) LSBFirstOption {
	return LSBFirstOption(lsb)
}

func (o LSBFirstOption) applyConfigOption(c *config) {
	lsb := bool(o)
	c.lsbFirst = &lsb
}

// SpeedHzOption overrides the clock speed for a transfer.
type SpeedHzOption uint32

// WithSpeedHz returns an option that overrides the device clock speed
// for the transfer.
func WithSpeedHz(hz uint32) SpeedHzOption {
	return SpeedHzOption(hz)
}

func (o SpeedHzOption) applyTransferOption(t *Transfer) {
	t.speedHz = uint32(o)
}

// DelayOption adds a delay after a transfer.
type DelayOption time.Duration

// WithDelay returns an option that delays after the transfer, before
// the chip select change, if any.
//
// The delay is truncated to the microsecond resolution of the kernel
// field, which also bounds it to just over 65ms.
func WithDelay(period time.Duration) DelayOption {
	return DelayOption(period)
}

func (o DelayOption) applyTransferOption(t *Transfer) {
	t.delay = time.Duration(o)
}

// CSChangeOption deasserts the chip select after a transfer.
type CSChangeOption bool

// WithCSChange returns an option that deasserts the chip select between
// the transfer and the next transfer in the message.
func WithCSChange() CSChangeOption {
	return CSChangeOption(true)
}

func (o CSChangeOption) applyTransferOption(t *Transfer) {
	t.csChange = bool(o)
}
