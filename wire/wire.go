// Package wire implements the Wayland wire format: length-prefixed
// messages of typed arguments, with file descriptors carried as
// ancillary data alongside the byte stream.
package wire

import (
	"encoding/binary"
	"math"
	"unsafe"
)

const (
	// HeaderSize is the size of a message header on the wire.
	HeaderSize = 8

	// MaxMessageSize is the largest total message size that the
	// 16-bit size field can express.
	MaxMessageSize = math.MaxUint16
)

// appendByteOrder combines binary.ByteOrder with binary.AppendByteOrder
// so byteOrder can be used for both in-place and append-style encoding.
type appendByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// byteOrder is the host byte order.
var byteOrder appendByteOrder = binary.LittleEndian

func init() {
	n := uint32(1)
	b := (*[4]byte)(unsafe.Pointer(&n))
	if b[0] == 0 {
		byteOrder = binary.BigEndian
	}
}

// Header is the fixed preamble of every message. Size is the total
// message size including the header itself.
type Header struct {
	Object uint32
	Opcode uint16
	Size   uint16
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// Fixed is a signed 24.8 fixed-point value.
type Fixed int32

func FixedInt(v int) Fixed {
	return Fixed(v << 8)
}

func FixedFloat(v float64) Fixed {
	return Fixed(math.Round(v * 256))
}

func (f Fixed) Int() int {
	return int(f >> 8)
}

func (f Fixed) Float() float64 {
	return float64(f) / 256
}
