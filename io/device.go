// Package io provides the devices serviced by the syscall handler of the
// simulated computer: an interactive Console over byte streams, and a
// bounded Queue of integers.
package io

import (
	"iter"
)

// Device defines the interface for all syscall devices.
// Devices transfer one integer per syscall.
type Device interface {
	// Rewind resets the device to its initial state.
	Rewind()
	// ReadInt reads the next integer from the device.
	ReadInt() (value int, err error)
	// WriteInt writes an integer to the device.
	WriteInt(value int) error
	// Defines returns the assembler defines of the device.
	Defines() iter.Seq2[string, string]
}
