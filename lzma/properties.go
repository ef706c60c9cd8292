// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "fmt"

// Maximum and minimum values for the individual properties.
const (
	MinLC = 0
	MaxLC = 8
	MinLP = 0
	MaxLP = 4
	MinPB = 0
	MaxPB = 4
	// MinDictSize is the smallest dictionary size used by the decoder.
	MinDictSize = 1 << 12
	// MaxDictSize is the largest dictionary size supported by the
	// encoder.
	MaxDictSize = 1 << 30
)

// PropertiesLen is the length of the encoded properties.
const PropertiesLen = 5

// maxPropertiesCode is the largest valid value of the first properties
// byte.
const maxPropertiesCode = (MaxPB+1)*(MaxLP+1)*(MaxLC+1) - 1

// Properties provide the LZMA properties.
type Properties struct {
	// number of literal context bits
	LC int
	// number of literal position bits
	LP int
	// number of position bits
	PB int
	// size of the dictionary in bytes
	DictSize uint32
}

// Verify checks the properties for correctness.
func (p Properties) Verify() error {
	if !(MinLC <= p.LC && p.LC <= MaxLC) {
		return errorf(CodeParam, "lc=%d out of range", p.LC)
	}
	if !(MinLP <= p.LP && p.LP <= MaxLP) {
		return errorf(CodeParam, "lp=%d out of range", p.LP)
	}
	if !(MinPB <= p.PB && p.PB <= MaxPB) {
		return errorf(CodeParam, "pb=%d out of range", p.PB)
	}
	return nil
}

// String returns a readable representation of the properties.
func (p Properties) String() string {
	return fmt.Sprintf("lc=%d lp=%d pb=%d dict=%d",
		p.LC, p.LP, p.PB, p.DictSize)
}

// code returns the first byte of the encoded properties.
func (p Properties) code() byte {
	return byte((p.PB*5+p.LP)*9 + p.LC)
}

// Bytes returns the five byte encoding of the properties. The first byte
// combines lc, lp and pb; the dictionary size follows as little-endian
// 32-bit integer.
func (p Properties) Bytes() [PropertiesLen]byte {
	var b [PropertiesLen]byte
	b[0] = p.code()
	putUint32LE(b[1:], p.DictSize)
	return b
}

// AppendBinary appends the encoded properties to b.
func (p Properties) AppendBinary(b []byte) ([]byte, error) {
	if err := p.Verify(); err != nil {
		return b, err
	}
	q := p.Bytes()
	return append(b, q[:]...), nil
}

// DecodeProperties decodes the five bytes of encoded properties. The
// dictionary size is raised to MinDictSize if required.
func DecodeProperties(b []byte) (p Properties, err error) {
	if len(b) < PropertiesLen {
		return p, newError(CodeUnsupported, "properties too short")
	}
	d := int(b[0])
	if d > maxPropertiesCode {
		return p, errorf(CodeUnsupported,
			"invalid properties code %#02x", b[0])
	}
	p.LC = d % 9
	d /= 9
	p.LP = d % 5
	p.PB = d / 5
	p.DictSize = uint32LE(b[1:])
	if p.DictSize < MinDictSize {
		p.DictSize = MinDictSize
	}
	return p, nil
}

// roundDictSize rounds the dictionary size up to the next value of the
// form 2<<i or 3<<i. The encoder writes the rounded size.
func roundDictSize(d uint32) uint32 {
	for i := 11; i <= 30; i++ {
		if d <= 2<<uint(i) {
			return 2 << uint(i)
		}
		if d <= 3<<uint(i) {
			return 3 << uint(i)
		}
	}
	return d
}

// uint32LE reads an uint32 integer from a byte slice.
func uint32LE(b []byte) uint32 {
	x := uint32(b[3]) << 24
	x |= uint32(b[2]) << 16
	x |= uint32(b[1]) << 8
	x |= uint32(b[0])
	return x
}

// putUint32LE puts an uint32 integer into a byte slice that must have at least
// a length of 4 bytes.
func putUint32LE(b []byte, x uint32) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
}
