// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import "io"

// topValue is the lower limit of the range before normalization is
// required.
const topValue = 1 << 24

// rcBufferSize is the size of the output buffer of the range encoder.
const rcBufferSize = 1 << 16

// rangeEncoder implements range encoding of single bits. The low value can
// overflow therefore we need uint64. The cache value is used to handle
// overflows. The encoder buffers its output; the first write error is
// kept in err and all following output is dropped.
type rangeEncoder struct {
	w         io.Writer
	buf       []byte
	nrange    uint32
	cache     byte
	low       uint64
	cacheLen  uint64
	processed uint64
	err       error
}

// init prepares the range encoder for a new stream written to w.
func (e *rangeEncoder) init(w io.Writer) {
	if e.buf == nil {
		e.buf = make([]byte, 0, rcBufferSize)
	}
	e.w = w
	e.reset()
}

// reset puts the encoder in its initial state without changing the
// writer.
func (e *rangeEncoder) reset() {
	e.low = 0
	e.nrange = 0xffffffff
	e.cacheLen = 1
	e.cache = 0
	e.buf = e.buf[:0]
	e.processed = 0
	e.err = nil
}

// Processed returns the number of bytes produced so far including the
// bytes still pending in the cache.
func (e *rangeEncoder) Processed() uint64 {
	return e.processed + uint64(len(e.buf)) + e.cacheLen
}

// flushStream writes the buffered bytes to the underlying writer.
func (e *rangeEncoder) flushStream() {
	if e.err != nil {
		e.buf = e.buf[:0]
		return
	}
	n, err := e.w.Write(e.buf)
	if err == nil && n != len(e.buf) {
		err = io.ErrShortWrite
	}
	e.err = err
	e.processed += uint64(len(e.buf))
	e.buf = e.buf[:0]
}

// shiftLow shifts the low value for 8 bit. The shifted byte is written
// into the buffer. The cache value is used to handle overflows.
func (e *rangeEncoder) shiftLow() {
	if uint32(e.low) < 0xff000000 || (e.low>>32) != 0 {
		tmp := e.cache
		for {
			e.buf = append(e.buf, tmp+byte(e.low>>32))
			if len(e.buf) == rcBufferSize {
				e.flushStream()
			}
			tmp = 0xff
			e.cacheLen--
			if e.cacheLen == 0 {
				break
			}
		}
		e.cache = byte(uint32(e.low) >> 24)
	}
	e.cacheLen++
	e.low = uint64(uint32(e.low) << 8)
}

// flushData writes the five bytes required to make the low value
// unambiguous.
func (e *rangeEncoder) flushData() {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
}

// encodeBit encodes the least significant bit of bit. The p value will be
// updated by the function depending on the bit encoded.
func (e *rangeEncoder) encodeBit(p *prob, bit uint32) {
	bound := p.bound(e.nrange)
	if bit == 0 {
		e.nrange = bound
		p.inc()
	} else {
		e.low += uint64(bound)
		e.nrange -= bound
		p.dec()
	}
	if e.nrange < topValue {
		e.nrange <<= 8
		e.shiftLow()
	}
}

// encodeDirectBits encodes the lowest n bits of v with probability 1/2,
// the most-significant bit first.
func (e *rangeEncoder) encodeDirectBits(v uint32, n int) {
	for n > 0 {
		n--
		e.nrange >>= 1
		e.low += uint64(e.nrange & (0 - ((v >> uint(n)) & 1)))
		if e.nrange < topValue {
			e.nrange <<= 8
			e.shiftLow()
		}
	}
}

// encodeTree encodes a bits-wide symbol using the probability tree probs
// starting with the most-significant bit.
func (e *rangeEncoder) encodeTree(probs []prob, bits int, symbol uint32) {
	m := uint32(1)
	for i := bits; i != 0; {
		i--
		b := (symbol >> uint(i)) & 1
		e.encodeBit(&probs[m], b)
		m = (m << 1) | b
	}
}

// encodeTreeReverse encodes a bits-wide symbol using the probability tree
// probs starting with the least-significant bit.
func (e *rangeEncoder) encodeTreeReverse(probs []prob, bits int, symbol uint32) {
	m := uint32(1)
	for i := 0; i < bits; i++ {
		b := symbol & 1
		e.encodeBit(&probs[m], b)
		m = (m << 1) | b
		symbol >>= 1
	}
}

// encodeLiteral encodes a byte with the 0x300 probabilities of a literal
// context.
func (e *rangeEncoder) encodeLiteral(probs []prob, symbol uint32) {
	symbol |= 0x100
	for symbol < 0x10000 {
		e.encodeBit(&probs[symbol>>8], (symbol>>7)&1)
		symbol <<= 1
	}
}

// encodeMatchedLiteral encodes a byte using the match byte found at
// distance rep0 as additional context as long as the bits agree.
func (e *rangeEncoder) encodeMatchedLiteral(probs []prob, symbol, matchByte uint32) {
	offs := uint32(0x100)
	symbol |= 0x100
	for symbol < 0x10000 {
		matchByte <<= 1
		e.encodeBit(&probs[offs+(matchByte&offs)+(symbol>>8)],
			(symbol>>7)&1)
		symbol <<= 1
		offs &= ^(matchByte ^ symbol)
	}
}

// rcInitSize is the number of bytes required to initialize the range
// decoder.
const rcInitSize = 5

// rangeDecoder decodes single bits of the range encoding stream. The
// decoder reads only from the slice in; reading beyond its end sets
// overrun and provides zero bytes.
type rangeDecoder struct {
	nrange  uint32
	code    uint32
	in      []byte
	pos     int
	overrun bool
}

// init initializes the range decoder from the first five bytes of a
// stream. The first byte must be zero.
func (d *rangeDecoder) init(b []byte) error {
	if b[0] != 0 {
		return newError(CodeData, "first byte of range coder stream not zero")
	}
	d.code = uint32(b[1])<<24 | uint32(b[2])<<16 |
		uint32(b[3])<<8 | uint32(b[4])
	d.nrange = 0xffffffff
	return nil
}

// setInput sets the slice the decoder reads from.
func (d *rangeDecoder) setInput(in []byte) {
	d.in = in
	d.pos = 0
	d.overrun = false
}

// next returns the next input byte.
func (d *rangeDecoder) next() byte {
	if d.pos >= len(d.in) {
		d.overrun = true
		return 0
	}
	c := d.in[d.pos]
	d.pos++
	return c
}

// normalize the top value and update the code value.
func (d *rangeDecoder) normalize() {
	if d.nrange < topValue {
		d.nrange <<= 8
		d.code = (d.code << 8) | uint32(d.next())
	}
}

// possiblyAtEnd checks whether the decoder may be at the end of the stream.
func (d *rangeDecoder) possiblyAtEnd() bool {
	return d.code == 0
}

// decodeBit decodes a single bit and updates the probability.
func (d *rangeDecoder) decodeBit(p *prob) uint32 {
	d.normalize()
	bound := p.bound(d.nrange)
	if d.code < bound {
		d.nrange = bound
		p.inc()
		return 0
	}
	d.nrange -= bound
	d.code -= bound
	p.dec()
	return 1
}

// peekBit decodes a single bit without updating the probability.
func (d *rangeDecoder) peekBit(p prob) uint32 {
	d.normalize()
	bound := p.bound(d.nrange)
	if d.code < bound {
		d.nrange = bound
		return 0
	}
	d.nrange -= bound
	d.code -= bound
	return 1
}

// decodeDirectBits decodes n bits with probability 1/2.
func (d *rangeDecoder) decodeDirectBits(n int) uint32 {
	v := uint32(0)
	for ; n > 0; n-- {
		d.normalize()
		d.nrange >>= 1
		d.code -= d.nrange
		t := 0 - (d.code >> 31)
		d.code += d.nrange & t
		v = (v << 1) + (t + 1)
	}
	return v
}

// decodeTree decodes a bits-wide symbol, most-significant bit first.
func (d *rangeDecoder) decodeTree(probs []prob, bits int) uint32 {
	m := uint32(1)
	for i := 0; i < bits; i++ {
		m = (m << 1) | d.decodeBit(&probs[m])
	}
	return m - (1 << uint(bits))
}

// peekTree works like decodeTree but leaves the probabilities unchanged.
func (d *rangeDecoder) peekTree(probs []prob, bits int) uint32 {
	m := uint32(1)
	for i := 0; i < bits; i++ {
		m = (m << 1) | d.peekBit(probs[m])
	}
	return m - (1 << uint(bits))
}

// decodeTreeReverse decodes a bits-wide symbol, least-significant bit
// first.
func (d *rangeDecoder) decodeTreeReverse(probs []prob, bits int) uint32 {
	m := uint32(1)
	v := uint32(0)
	for i := 0; i < bits; i++ {
		b := d.decodeBit(&probs[m])
		m = (m << 1) | b
		v |= b << uint(i)
	}
	return v
}

// peekTreeReverse works like decodeTreeReverse but leaves the
// probabilities unchanged.
func (d *rangeDecoder) peekTreeReverse(probs []prob, bits int) uint32 {
	m := uint32(1)
	v := uint32(0)
	for i := 0; i < bits; i++ {
		b := d.peekBit(probs[m])
		m = (m << 1) | b
		v |= b << uint(i)
	}
	return v
}

// decodeLiteral decodes a byte using the 0x300 probabilities of a
// literal context.
func (d *rangeDecoder) decodeLiteral(probs []prob) byte {
	symbol := uint32(1)
	for symbol < 0x100 {
		symbol = (symbol << 1) | d.decodeBit(&probs[symbol])
	}
	return byte(symbol)
}

// decodeMatchedLiteral decodes a byte in the context of the match byte.
func (d *rangeDecoder) decodeMatchedLiteral(probs []prob, matchByte uint32) byte {
	offs := uint32(0x100)
	symbol := uint32(1)
	for symbol < 0x100 {
		matchByte <<= 1
		bit := matchByte & offs
		b := d.decodeBit(&probs[offs+bit+symbol])
		symbol = (symbol << 1) | b
		if b == 0 {
			offs &= ^bit
		} else {
			offs &= bit
		}
	}
	return byte(symbol)
}

// peekLiteral works like decodeLiteral without updating the
// probabilities.
func (d *rangeDecoder) peekLiteral(probs []prob) {
	symbol := uint32(1)
	for symbol < 0x100 {
		symbol = (symbol << 1) | d.peekBit(probs[symbol])
	}
}

// peekMatchedLiteral works like decodeMatchedLiteral without updating
// the probabilities.
func (d *rangeDecoder) peekMatchedLiteral(probs []prob, matchByte uint32) {
	offs := uint32(0x100)
	symbol := uint32(1)
	for symbol < 0x100 {
		matchByte <<= 1
		bit := matchByte & offs
		b := d.peekBit(probs[offs+bit+symbol])
		symbol = (symbol << 1) | b
		if b == 0 {
			offs &= ^bit
		} else {
			offs &= bit
		}
	}
}
