// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

//go:build linux
// +build linux

// Package uapi provides the Linux spidev uAPI, as defined in
// include/uapi/linux/spi/spidev.h.
//
// This is a low level package for use by higher level SPI libraries.
// It is exposed to allow other libraries access to the uAPI.
package uapi

import (
	"unsafe"
)

// The spidev ioctl family, from linux/spi/spidev.h.
const (
	// magic identifies the SPI ioctl subsystem.
	magic = 'k'

	// request numbers within the subsystem.
	nrTransfer    = 0
	nrMode        = 1
	nrLSBFirst    = 2
	nrBitsPerWord = 3
	nrMaxSpeedHz  = 4
	nrMode32      = 5
)

// Request codes for the spidev scalar fields.
//
// Each field is read and written with a code sized to the exact byte
// width of the field, so the pairs here are the complete set of codes
// the kernel accepts for that field.
var (
	RdMode        = ior(magic, nrMode, unsafe.Sizeof(uint8(0)))
	WrMode        = iow(magic, nrMode, unsafe.Sizeof(uint8(0)))
	RdLSBFirst    = ior(magic, nrLSBFirst, unsafe.Sizeof(uint8(0)))
	WrLSBFirst    = iow(magic, nrLSBFirst, unsafe.Sizeof(uint8(0)))
	RdBitsPerWord = ior(magic, nrBitsPerWord, unsafe.Sizeof(uint8(0)))
	WrBitsPerWord = iow(magic, nrBitsPerWord, unsafe.Sizeof(uint8(0)))
	RdMaxSpeedHz  = ior(magic, nrMaxSpeedHz, unsafe.Sizeof(uint32(0)))
	WrMaxSpeedHz  = iow(magic, nrMaxSpeedHz, unsafe.Sizeof(uint32(0)))
	RdMode32      = ior(magic, nrMode32, unsafe.Sizeof(uint32(0)))
	WrMode32      = iow(magic, nrMode32, unsafe.Sizeof(uint32(0)))
)

// Message returns the request code to perform n chained Transfers as a
// single kernel call.
//
// The chip select is held asserted between transfers within one message,
// unless a transfer sets CsChange.
//
// A message too large for the size field of the code falls back to the
// zero sized code, which the kernel rejects with EINVAL, rather than
// silently corrupting the neighbouring fields.
func Message(n int) Ioctl {
	size := uintptr(n) * unsafe.Sizeof(Transfer{})
	if n < 0 || size >= (1<<iocSizeBits) {
		size = 0
	}
	return iow(magic, nrTransfer, size)
}

// Transfer is the spi_ioc_transfer struct from linux/spi/spidev.h.
//
// The field order and widths form the kernel ABI and must not be
// altered.  TxBuf and RxBuf hold the userspace addresses of the transfer
// buffers, or 0 where no buffer is provided for that direction.  Zeroed
// override fields (SpeedHz, DelayUsecs, BitsPerWord) select the current
// device configuration.
type Transfer struct {
	TxBuf       uint64
	RxBuf       uint64
	Len         uint32
	SpeedHz     uint32
	DelayUsecs  uint16
	BitsPerWord uint8
	CsChange    uint8
	Pad         uint32
}
