// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

//go:build linux
// +build linux

package uapi

import (
	"golang.org/x/sys/unix"
)

// Ioctl is an ioctl request code.
//
// The code packs the direction, payload size, subsystem type and request
// number into the fields defined by asm-generic/ioctl.h.  The field widths
// and direction values are platform dependent and defined in ioctl_XXX.
type Ioctl uintptr

func ior(t, nr, size uintptr) Ioctl {
	return Ioctl((iocRead << iocDirShift) |
		(size << iocSizeShift) |
		(t << iocTypeShift) |
		(nr << iocNRShift))
}

func iow(t, nr, size uintptr) Ioctl {
	return Ioctl((iocWrite << iocDirShift) |
		(size << iocSizeShift) |
		(t << iocTypeShift) |
		(nr << iocNRShift))
}

// Call issues the ioctl request against the file descriptor, with arg
// pointing to the value being transferred, and returns the errno should
// the syscall fail.
//
// The value referenced by arg must not be moved or freed until Call
// returns, as the kernel accesses it by raw address.
func Call(fd uintptr, req Ioctl, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), arg)
	if errno != 0 {
		return errno
	}
	return nil
}
