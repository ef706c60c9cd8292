// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// HeaderLen provides the length of the header of a .lzma file.
const HeaderLen = PropertiesLen + 8

// noHeaderSize defines the value of the size field for streams of
// unknown size.
const noHeaderSize uint64 = 1<<64 - 1

// Header describes the header of a classic .lzma file: the properties
// followed by the uncompressed size. A negative Size marks an unknown
// size; such streams must be terminated by an end marker.
type Header struct {
	Properties
	Size int64
}

// NewStreamHeader returns the header for the given properties and the
// uncompressed size.
func NewStreamHeader(p Properties, size int64) Header {
	if size < 0 {
		size = -1
	}
	return Header{Properties: p, Size: size}
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() (data []byte, err error) {
	if err = h.Properties.Verify(); err != nil {
		return nil, err
	}
	data = make([]byte, HeaderLen)
	b := h.Properties.Bytes()
	copy(data, b[:])
	u := noHeaderSize
	if h.Size >= 0 {
		u = uint64(h.Size)
	}
	putUint64LE(data[PropertiesLen:], u)
	return data, nil
}

// UnmarshalBinary decodes the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) != HeaderLen {
		return newError(CodeUnsupported, "wrong header length")
	}
	p, err := DecodeProperties(data)
	if err != nil {
		return err
	}
	u := uint64LE(data[PropertiesLen:])
	var size int64
	if u == noHeaderSize {
		size = -1
	} else {
		size = int64(u)
		if size < 0 {
			return newError(CodeUnsupported,
				"uncompressed size in header out of range")
		}
	}
	*h = Header{Properties: p, Size: size}
	return nil
}

// uint64LE converts the uint64 value stored as little endian to an uint64
// value.
func uint64LE(b []byte) uint64 {
	x := uint64(b[7]) << 56
	x |= uint64(b[6]) << 48
	x |= uint64(b[5]) << 40
	x |= uint64(b[4]) << 32
	x |= uint64(b[3]) << 24
	x |= uint64(b[2]) << 16
	x |= uint64(b[1]) << 8
	x |= uint64(b[0])
	return x
}

// putUint64LE puts the uint64 value into the byte slice as little endian
// value. The byte slice b must have at least place for 8 bytes.
func putUint64LE(b []byte, x uint64) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
	b[4] = byte(x >> 32)
	b[5] = byte(x >> 40)
	b[6] = byte(x >> 48)
	b[7] = byte(x >> 56)
}
