// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

/*
Package spidev provides userspace control of SPI devices through the Linux
spidev uAPI.

Devices are exposed by the kernel as character devices, e.g.
/dev/spidev0.0, where the numbers identify the SPI bus and the chip select
on that bus.  The [Device] wraps one such file and provides typed access
to the bus configuration, and full or half-duplex transfers against the
selected peripheral.

Bus parameters may be set when the device is opened, or at any time
afterwards using [Device.Configure] or the individual accessors:

	d, err := spidev.Open("/dev/spidev0.0",
		spidev.WithMode(spidev.Mode3),
		spidev.WithMaxSpeedHz(500000),
	)
	defer d.Close()

Data is exchanged using [Transfer]s.  A transfer owns its buffers and
describes one exchange on the wire, with optional per-transfer overrides
of the device configuration:

	t := spidev.NewWriteTransfer([]byte{0x90, 0x00})
	err = d.Transfer(t)
	rx := t.Rx()

SPI is full-duplex, so a write transfer still captures the bytes arriving
on the wire during the write, available through [Transfer.Rx].

Several transfers may be performed as one atomic kernel call using
[Device.TransferMultiple], with the chip select held asserted between
transfers unless a transfer requests otherwise with [WithCSChange].

The accessors and transfers each issue one blocking ioctl and perform no
retries.  The Device does not serialize access to the underlying file, so
sharing a Device across goroutines is the caller's responsibility.

The kernel ABI itself is provided by the uapi subpackage.
*/
package spidev
