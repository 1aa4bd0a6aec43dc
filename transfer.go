// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package spidev

import (
	"math"
	"runtime"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/warthog618/go-spidev/uapi"
)

// ErrBufferMismatch indicates a transfer was constructed with tx and rx
// buffers of different lengths.
var ErrBufferMismatch = errors.New("tx and rx buffer lengths differ")

// Transfer describes one exchange on the SPI bus.
//
// The Transfer owns its buffers.  While a transfer is being performed
// the kernel reads and writes the buffers by raw address, so they must
// not be accessed until the performing call returns.  Transfers are
// otherwise immutable once constructed and may be reused.
//
// The zero value of each override field leaves the corresponding device
// configuration in effect for the transfer.
type Transfer struct {
	tx []byte
	rx []byte

	speedHz     uint32
	delay       time.Duration
	bitsPerWord uint8
	csChange    bool
}

// NewReadTransfer returns a transfer that reads length bytes from the
// device.
//
// The controller shifts out zeroes for the duration of the read.  The
// bytes read are available from [Transfer.Rx] once the transfer has been
// performed.
//
// The available options are [WithSpeedHz], [WithDelay],
// [WithBitsPerWord] and [WithCSChange].
func NewReadTransfer(length int, options ...TransferOption) *Transfer {
	t := Transfer{rx: make([]byte, length)}
	for _, o := range options {
		o.applyTransferOption(&t)
	}
	return &t
}

// NewWriteTransfer returns a transfer that writes data to the device.
//
// The transfer holds its own copy of data, so data may be reused
// immediately.  SPI being full-duplex, the bytes arriving on the wire
// during the write are still captured, and are available from
// [Transfer.Rx] once the transfer has been performed.
//
// The available options are [WithSpeedHz], [WithDelay],
// [WithBitsPerWord] and [WithCSChange].
func NewWriteTransfer(data []byte, options ...TransferOption) *Transfer {
	t := Transfer{
		tx: append([]byte(nil), data...),
		rx: make([]byte, len(data)),
	}
	for _, o := range options {
		o.applyTransferOption(&t)
	}
	return &t
}

// NewTransfer returns a full-duplex transfer using the provided buffers.
//
// Either buffer may be nil for a half-duplex transfer, but when both are
// provided they must be of equal length.  The buffers are adopted by the
// transfer and must not be accessed while the transfer is being
// performed.
//
// The available options are [WithSpeedHz], [WithDelay],
// [WithBitsPerWord] and [WithCSChange].
func NewTransfer(tx, rx []byte, options ...TransferOption) (*Transfer, error) {
	if len(tx) != 0 && len(rx) != 0 && len(tx) != len(rx) {
		return nil, errors.Wrapf(ErrBufferMismatch, "tx %d rx %d", len(tx), len(rx))
	}
	t := Transfer{tx: tx, rx: rx}
	for _, o := range options {
		o.applyTransferOption(&t)
	}
	return &t, nil
}

// Tx returns the transmit buffer of the transfer, or nil for read-only
// transfers.
func (t *Transfer) Tx() []byte {
	return t.tx
}

// Rx returns the receive buffer of the transfer, or nil for transfers
// that discard the received bytes.
//
// The contents are only meaningful after the transfer has been
// successfully performed, and are unspecified after a failed transfer.
func (t *Transfer) Rx() []byte {
	return t.rx
}

// Len returns the number of bytes the transfer exchanges on the wire.
func (t *Transfer) Len() int {
	if len(t.tx) != 0 {
		return len(t.tx)
	}
	return len(t.rx)
}

// marshal populates the kernel transfer struct from the descriptor.
//
// The struct holds raw buffer addresses, so the returned struct is only
// valid while t is held live.
func (t *Transfer) marshal(u *uapi.Transfer) {
	*u = uapi.Transfer{
		Len:         uint32(t.Len()),
		SpeedHz:     t.speedHz,
		DelayUsecs:  delayUsecs(t.delay),
		BitsPerWord: t.bitsPerWord,
	}
	if len(t.tx) != 0 {
		u.TxBuf = uint64(uintptr(unsafe.Pointer(&t.tx[0])))
	}
	if len(t.rx) != 0 {
		u.RxBuf = uint64(uintptr(unsafe.Pointer(&t.rx[0])))
	}
	if t.csChange {
		u.CsChange = 1
	}
}

// delayUsecs converts the delay to the microsecond field of the kernel
// struct, clamping to its width.
func delayUsecs(d time.Duration) uint16 {
	us := d / time.Microsecond
	if us > math.MaxUint16 {
		us = math.MaxUint16
	}
	if us < 0 {
		us = 0
	}
	return uint16(us)
}

// Transfer performs a single transfer against the device.
//
// On success the received bytes, if the transfer captures them, are
// available from [Transfer.Rx].
func (d *Device) Transfer(t *Transfer) error {
	return d.TransferMultiple([]*Transfer{t})
}

// TransferMultiple performs a sequence of transfers as one atomic kernel
// call.
//
// The chip select remains asserted between consecutive transfers unless
// a transfer requests otherwise with [WithCSChange], making this the
// mechanism for compound operations, such as a command write followed by
// a response read, that must complete without the device being
// deselected.
func (d *Device) TransferMultiple(ts []*Transfer) error {
	if len(ts) == 0 {
		return nil
	}
	msg := make([]uapi.Transfer, len(ts))
	for i, t := range ts {
		t.marshal(&msg[i])
	}
	err := d.ioctl(d.f.Fd(), uapi.Message(len(msg)), uintptr(unsafe.Pointer(&msg[0])))
	// the kernel accesses the buffers by raw address for the duration of
	// the ioctl, so hold them live until it returns.
	for _, t := range ts {
		runtime.KeepAlive(t.tx)
		runtime.KeepAlive(t.rx)
	}
	return errors.Wrap(err, "spidev transfer")
}
