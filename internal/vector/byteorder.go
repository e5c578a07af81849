// Package vector holds the dense float32 arrays read from flat binary files.
package vector

import (
	"encoding/binary"
	"fmt"
)

// BytesPerElement is the width of one float32 element on disk.
const BytesPerElement = 4

// ByteOrder names the element byte order of an array file.
type ByteOrder string

const (
	// ByteOrderNative uses the byte order of the running machine.
	ByteOrderNative ByteOrder = "native"
	// ByteOrderLittle forces little-endian elements.
	ByteOrderLittle ByteOrder = "little"
	// ByteOrderBig forces big-endian elements.
	ByteOrderBig ByteOrder = "big"
)

// DefaultByteOrder matches files written by a producer on the same host.
const DefaultByteOrder = ByteOrderNative

// IsValid returns true if the byte order is a recognized name.
func (o ByteOrder) IsValid() bool {
	switch o {
	case ByteOrderNative, ByteOrderLittle, ByteOrderBig:
		return true
	default:
		return false
	}
}

// Binary returns the encoding/binary implementation for the byte order.
// An empty ByteOrder is treated as native.
func (o ByteOrder) Binary() (binary.ByteOrder, error) {
	switch o {
	case ByteOrderNative, "":
		return binary.NativeEndian, nil
	case ByteOrderLittle:
		return binary.LittleEndian, nil
	case ByteOrderBig:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidByteOrder, string(o))
	}
}

// ParseByteOrder parses a byte order name.
func ParseByteOrder(s string) (ByteOrder, error) {
	o := ByteOrder(s)
	if s == "" {
		return DefaultByteOrder, nil
	}
	if !o.IsValid() {
		return "", fmt.Errorf("%w: %q (expected native, little or big)", ErrInvalidByteOrder, s)
	}
	return o, nil
}

// ByteSize returns the exact file length of an array with the given shape.
func ByteSize(rows, cols int) int64 {
	return int64(rows) * int64(cols) * BytesPerElement
}
