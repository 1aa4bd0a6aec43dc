// SPDX-FileCopyrightText: 2024 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

package spidev

// Mode is the SPI mode field of a device, from linux/spi/spidev.h.
//
// The low two bits select the clock phase and polarity.  The remaining
// bits are option flags which share the byte on the wire but are
// independent of the mode proper.
type Mode uint8

// Clock phase and polarity bits, and the four conventional SPI modes
// derived from them.
const (
	// CPHA selects sampling on the trailing clock edge.
	CPHA Mode = 0x01

	// CPOL selects an idle-high clock.
	CPOL Mode = 0x02

	Mode0 Mode = 0
	Mode1      = CPHA
	Mode2      = CPOL
	Mode3      = CPOL | CPHA
)

// Option flags layered into the mode byte.
const (
	// CSHigh makes the chip select active high.
	CSHigh Mode = 0x04

	// LSBFirst transmits the least significant bit of each word first.
	LSBFirst Mode = 0x08

	// ThreeWire selects shared SI/SO signalling.
	ThreeWire Mode = 0x10

	// Loop enables the controller loopback mode.
	Loop Mode = 0x20

	// NoCS requests that the controller leave the chip select
	// unasserted, for devices selected by other means.
	NoCS Mode = 0x40

	// Ready indicates the peripheral may pause transfers by pulling
	// its ready signal low.
	Ready Mode = 0x80
)
