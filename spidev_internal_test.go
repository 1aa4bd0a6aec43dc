// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package spidev

import (
	"os"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warthog618/go-spidev/uapi"
	"golang.org/x/sys/unix"
)

// fakeDevice emulates the spidev ioctl surface of a kernel driver, with
// writes stored and echoed back by subsequent reads, and transfers
// looping tx back to rx.
type fakeDevice struct {
	mode   uint8
	mode32 uint32
	lsb    uint8
	bpw    uint8
	speed  uint32

	// returned by all requests when set
	errno error

	// the requests issued, in order
	reqs []uapi.Ioctl

	// the marshaled form of each message performed
	msgs [][]uapi.Transfer
}

func (f *fakeDevice) ioctl(fd uintptr, req uapi.Ioctl, arg uintptr) error {
	f.reqs = append(f.reqs, req)
	if f.errno != nil {
		return f.errno
	}
	switch req {
	case uapi.RdMode:
		*(*uint8)(unsafe.Pointer(arg)) = f.mode
	case uapi.WrMode:
		f.mode = *(*uint8)(unsafe.Pointer(arg))
	case uapi.RdMode32:
		*(*uint32)(unsafe.Pointer(arg)) = f.mode32
	case uapi.WrMode32:
		f.mode32 = *(*uint32)(unsafe.Pointer(arg))
	case uapi.RdLSBFirst:
		*(*uint8)(unsafe.Pointer(arg)) = f.lsb
	case uapi.WrLSBFirst:
		f.lsb = *(*uint8)(unsafe.Pointer(arg))
	case uapi.RdBitsPerWord:
		*(*uint8)(unsafe.Pointer(arg)) = f.bpw
	case uapi.WrBitsPerWord:
		f.bpw = *(*uint8)(unsafe.Pointer(arg))
	case uapi.RdMaxSpeedHz:
		*(*uint32)(unsafe.Pointer(arg)) = f.speed
	case uapi.WrMaxSpeedHz:
		f.speed = *(*uint32)(unsafe.Pointer(arg))
	default:
		return f.message(req, arg)
	}
	return nil
}

func (f *fakeDevice) message(req uapi.Ioctl, arg uintptr) error {
	for n := 1; n <= 8; n++ {
		if req != uapi.Message(n) {
			continue
		}
		xfers := unsafe.Slice((*uapi.Transfer)(unsafe.Pointer(arg)), n)
		f.msgs = append(f.msgs, append([]uapi.Transfer(nil), xfers...))
		for i := range xfers {
			loopback(&xfers[i])
		}
		return nil
	}
	return unix.EINVAL
}

// loopback echoes the tx buffer into the rx buffer, as a controller in
// loopback mode would.
func loopback(u *uapi.Transfer) {
	if u.TxBuf == 0 || u.RxBuf == 0 {
		return
	}
	tx := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(u.TxBuf))), int(u.Len))
	rx := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(u.RxBuf))), int(u.Len))
	copy(rx, tx)
}

func newFakeDevice(t *testing.T, f *fakeDevice) *Device {
	file, err := os.Open(os.DevNull)
	require.Nil(t, err)
	t.Cleanup(func() { file.Close() })
	d := NewDevice(file)
	d.ioctl = f.ioctl
	return d
}

func TestModeRoundTrip(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.SetMode(Mode3 | CSHigh)
	assert.Nil(t, err)
	assert.Equal(t, uint8(0x07), f.mode)

	m, err := d.Mode()
	assert.Nil(t, err)
	assert.Equal(t, Mode3|CSHigh, m)
}

func TestMode32RoundTrip(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.SetMode32(0x00010003)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x00010003), f.mode32)

	m, err := d.Mode32()
	assert.Nil(t, err)
	assert.Equal(t, uint32(0x00010003), m)
}

func TestLSBFirstRoundTrip(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.SetLSBFirst(true)
	assert.Nil(t, err)
	assert.Equal(t, uint8(1), f.lsb)
	lsb, err := d.LSBFirst()
	assert.Nil(t, err)
	assert.True(t, lsb)

	err = d.SetLSBFirst(false)
	assert.Nil(t, err)
	assert.Equal(t, uint8(0), f.lsb)
	lsb, err = d.LSBFirst()
	assert.Nil(t, err)
	assert.False(t, lsb)

	// any non-zero wire value reads back as true
	f.lsb = 0xa5
	lsb, err = d.LSBFirst()
	assert.Nil(t, err)
	assert.True(t, lsb)
}

func TestBitsPerWordRoundTrip(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.SetBitsPerWord(16)
	assert.Nil(t, err)
	assert.Equal(t, uint8(16), f.bpw)

	bpw, err := d.BitsPerWord()
	assert.Nil(t, err)
	assert.Equal(t, uint8(16), bpw)
}

func TestMaxSpeedHzRoundTrip(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.SetMaxSpeedHz(500000)
	assert.Nil(t, err)
	assert.Equal(t, uint32(500000), f.speed)

	hz, err := d.MaxSpeedHz()
	assert.Nil(t, err)
	assert.Equal(t, uint32(500000), hz)
}

func TestConfigure(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.Configure(
		WithMode(Mode1),
		WithBitsPerWord(8),
		WithMaxSpeedHz(1000000),
		WithLSBFirst(true),
	)
	assert.Nil(t, err)
	assert.Equal(t, uint8(0x01), f.mode)
	assert.Equal(t, uint8(8), f.bpw)
	assert.Equal(t, uint32(1000000), f.speed)
	assert.Equal(t, uint8(1), f.lsb)
	assert.Equal(t, []uapi.Ioctl{
		uapi.WrMode,
		uapi.WrBitsPerWord,
		uapi.WrMaxSpeedHz,
		uapi.WrLSBFirst,
	}, f.reqs)

	// options not provided leave the device untouched
	f.reqs = nil
	err = d.Configure(WithMode32(0x103))
	assert.Nil(t, err)
	assert.Equal(t, []uapi.Ioctl{uapi.WrMode32}, f.reqs)

	// a failing option aborts the remainder
	f.reqs = nil
	f.errno = unix.EINVAL
	err = d.Configure(WithMode(Mode0), WithMaxSpeedHz(100000))
	assert.ErrorIs(t, err, unix.EINVAL)
	assert.Equal(t, []uapi.Ioctl{uapi.WrMode}, f.reqs)
}

func TestAccessorErrors(t *testing.T) {
	f := fakeDevice{errno: unix.ENOTTY}
	d := newFakeDevice(t, &f)

	_, err := d.Mode()
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.ErrorIs(t, d.SetMode(Mode0), unix.ENOTTY)
	_, err = d.Mode32()
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.ErrorIs(t, d.SetMode32(0), unix.ENOTTY)
	_, err = d.LSBFirst()
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.ErrorIs(t, d.SetLSBFirst(true), unix.ENOTTY)
	_, err = d.BitsPerWord()
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.ErrorIs(t, d.SetBitsPerWord(8), unix.ENOTTY)
	_, err = d.MaxSpeedHz()
	assert.ErrorIs(t, err, unix.ENOTTY)
	assert.ErrorIs(t, d.SetMaxSpeedHz(100000), unix.ENOTTY)
}

func TestTransfer(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	data := []byte{0xde, 0xad, 0xbe, 0xef}
	xfer := NewWriteTransfer(data)
	err := d.Transfer(xfer)
	assert.Nil(t, err)
	assert.Equal(t, data, xfer.Rx())

	require.Equal(t, 1, len(f.msgs))
	require.Equal(t, 1, len(f.msgs[0]))
	u := f.msgs[0][0]
	assert.NotZero(t, u.TxBuf)
	assert.NotZero(t, u.RxBuf)
	assert.Equal(t, uint32(4), u.Len)
	assert.Zero(t, u.SpeedHz)
	assert.Zero(t, u.DelayUsecs)
	assert.Zero(t, u.BitsPerWord)
	assert.Zero(t, u.CsChange)
}

func TestTransferOverrides(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	xfer := NewWriteTransfer([]byte{1, 2},
		WithSpeedHz(250000),
		WithDelay(50*time.Microsecond),
		WithBitsPerWord(16),
		WithCSChange(),
	)
	err := d.Transfer(xfer)
	assert.Nil(t, err)

	require.Equal(t, 1, len(f.msgs))
	u := f.msgs[0][0]
	assert.Equal(t, uint32(250000), u.SpeedHz)
	assert.Equal(t, uint16(50), u.DelayUsecs)
	assert.Equal(t, uint8(16), u.BitsPerWord)
	assert.Equal(t, uint8(1), u.CsChange)
}

func TestTransferRead(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	xfer := NewReadTransfer(3)
	err := d.Transfer(xfer)
	assert.Nil(t, err)

	require.Equal(t, 1, len(f.msgs))
	u := f.msgs[0][0]
	assert.Zero(t, u.TxBuf)
	assert.NotZero(t, u.RxBuf)
	assert.Equal(t, uint32(3), u.Len)
}

func TestTransferMultiple(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	cmd := NewWriteTransfer([]byte{0x03, 0x00}, WithCSChange())
	rsp := NewReadTransfer(4)
	err := d.TransferMultiple([]*Transfer{cmd, rsp})
	assert.Nil(t, err)
	assert.Equal(t, []byte{0x03, 0x00}, cmd.Rx())
	assert.Equal(t, make([]byte, 4), rsp.Rx())

	require.Equal(t, 1, len(f.reqs))
	assert.Equal(t, uapi.Message(2), f.reqs[0])
	require.Equal(t, 1, len(f.msgs))
	require.Equal(t, 2, len(f.msgs[0]))
	assert.Equal(t, uint8(1), f.msgs[0][0].CsChange)
	assert.Equal(t, uint8(0), f.msgs[0][1].CsChange)
}

func TestTransferMultipleEmpty(t *testing.T) {
	f := fakeDevice{}
	d := newFakeDevice(t, &f)

	err := d.TransferMultiple(nil)
	assert.Nil(t, err)
	assert.Zero(t, len(f.reqs))
}

func TestTransferError(t *testing.T) {
	f := fakeDevice{errno: unix.EIO}
	d := newFakeDevice(t, &f)

	xfer := NewWriteTransfer([]byte{1, 2, 3})
	err := d.Transfer(xfer)
	assert.ErrorIs(t, err, unix.EIO)
	// the fake driver did not touch the buffers
	assert.Equal(t, make([]byte, 3), xfer.Rx())
	assert.Equal(t, []byte{1, 2, 3}, xfer.Tx())
}

func TestDelayUsecs(t *testing.T) {
	assert.Equal(t, uint16(0), delayUsecs(0))
	assert.Equal(t, uint16(50), delayUsecs(50*time.Microsecond))
	assert.Equal(t, uint16(0), delayUsecs(500*time.Nanosecond))
	assert.Equal(t, uint16(0), delayUsecs(-time.Second))
	assert.Equal(t, uint16(0xffff), delayUsecs(time.Hour))
}
