// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"hash/crc32"
	"io"
)

// mfKind identifies the match finder strategy.
type mfKind int

// Supported match finder strategies.
const (
	// hash chain over 2, 3 and 4 byte hashes
	mfHc4 mfKind = iota
	// binary tree over 2 byte hashes
	mfBt2
	// binary tree with 2 and 3 byte hashes
	mfBt3
	// binary tree with 2, 3 and 4 byte hashes
	mfBt4
)

var mfNames = map[mfKind]string{
	mfHc4: "hc4",
	mfBt2: "bt2",
	mfBt3: "bt3",
	mfBt4: "bt4",
}

func (k mfKind) String() string {
	s, ok := mfNames[k]
	if !ok {
		return "mf?"
	}
	return s
}

// selectMF returns the match finder strategy for the binary tree mode and
// the number of hash bytes.
func selectMF(btMode bool, numHashBytes int) mfKind {
	if !btMode {
		return mfHc4
	}
	switch numHashBytes {
	case 2:
		return mfBt2
	case 3:
		return mfBt3
	}
	return mfBt4
}

// Hash table layout constants.
const (
	hash2Size     = 1 << 10
	hash3Size     = 1 << 16
	fix3HashSize  = hash2Size
	fix4HashSize  = hash2Size + hash3Size
	emptyHash     = 0
	maxNormalize  = 0xffffffff
	normalizeMask = ^uint32(1<<10 - 1)
	maxHistory    = 3 << 30
)

// crcTable is the table of the reflected CRC-32 polynomial. It is used
// to spread the bytes over the hash tables.
var crcTable = crc32.MakeTable(crc32.IEEE)

// maxEmptyReads limits the number of consecutive reads returning neither
// data nor an error.
const maxEmptyReads = 100

// matchFinder provides the window over the input and finds matches for
// the current position. The positions stored in the hash tables start
// at cyclicSize, so that a zero entry never refers to valid data.
type matchFinder struct {
	kind mfKind

	// buf is the window; in direct mode it is the input itself.
	buf []byte
	// cur is the index of the current position in buf
	cur int

	pos       uint32
	posLimit  uint32
	streamPos uint32
	lenLimit  uint32

	cyclicPos  uint32
	cyclicSize uint32

	matchMaxLen uint32
	hash        []uint32
	son         []uint32
	hashMask    uint32
	cutValue    uint32

	r          io.Reader
	err        error
	endReached bool

	directInput bool
	directRem   uint64

	blockSize    uint32
	keepBefore   uint32
	keepAfter    uint32
	numHashBytes uint32
	historySize  uint32
	hashSizeSum  uint32
}

// newMatchFinder allocates the window and the hash tables. The value
// keepBefore is the number of additional bytes that must be kept before
// the current position and keepAfter the number of bytes after the
// maximum match length.
func newMatchFinder(kind mfKind, historySize, keepAddBefore, matchMaxLen, keepAddAfter, cutValue uint32, directInput bool) (mf *matchFinder, err error) {
	if historySize > maxHistory {
		return nil, errorf(CodeMem,
			"history size %d exceeds maximum", historySize)
	}
	mf = &matchFinder{
		kind:        kind,
		cutValue:    cutValue,
		directInput: directInput,
		matchMaxLen: matchMaxLen,
		historySize: historySize,
	}
	switch kind {
	case mfBt2:
		mf.numHashBytes = 2
	case mfBt3:
		mf.numHashBytes = 3
	default:
		mf.numHashBytes = 4
	}

	reserve := historySize >> 1
	if historySize > 2<<30 {
		reserve = historySize >> 2
	}
	reserve += (keepAddBefore+matchMaxLen+keepAddAfter)/2 + 1<<19
	mf.keepBefore = historySize + keepAddBefore + 1
	mf.keepAfter = matchMaxLen + keepAddAfter
	blockSize := uint64(mf.keepBefore) + uint64(mf.keepAfter) +
		uint64(reserve)
	if blockSize > 1<<32-1 || blockSize > uint64(maxInt) {
		return nil, errorf(CodeMem,
			"window size %d exceeds maximum", blockSize)
	}
	mf.blockSize = uint32(blockSize)
	if !directInput {
		mf.buf = make([]byte, mf.blockSize)
	}

	mf.cyclicSize = historySize + 1
	var hs uint32
	if mf.numHashBytes == 2 {
		hs = 1<<16 - 1
	} else {
		hs = historySize - 1
		hs |= hs >> 1
		hs |= hs >> 2
		hs |= hs >> 4
		hs |= hs >> 8
		hs >>= 1
		hs |= 0xffff
		if hs > 1<<24 {
			if mf.numHashBytes == 3 {
				hs = 1<<24 - 1
			} else {
				hs >>= 1
			}
		}
	}
	mf.hashMask = hs
	hs++
	if mf.numHashBytes > 2 {
		hs += hash2Size
	}
	if mf.numHashBytes > 3 {
		hs += hash3Size
	}
	mf.hashSizeSum = hs

	numSons := uint64(mf.cyclicSize)
	if kind != mfHc4 {
		numSons *= 2
	}
	n := uint64(hs) + numSons
	if n > uint64(maxInt)/4 {
		return nil, errorf(CodeMem,
			"match finder tables of %d entries too large", n)
	}
	mf.hash = make([]uint32, n)
	mf.son = mf.hash[hs:]
	return mf, nil
}

// maxInt is the largest value of type int.
const maxInt = int(^uint(0) >> 1)

// initStream prepares the match finder to read its input from r.
func (mf *matchFinder) initStream(r io.Reader) {
	if mf.directInput {
		panic("match finder in direct input mode")
	}
	mf.r = r
	mf.init()
}

// initDirect prepares the match finder to use the slice p directly as
// window.
func (mf *matchFinder) initDirect(p []byte) {
	if !mf.directInput {
		panic("match finder not in direct input mode")
	}
	mf.buf = p
	mf.directRem = uint64(len(p))
	mf.init()
}

func (mf *matchFinder) init() {
	for i := range mf.hash[:mf.hashSizeSum] {
		mf.hash[i] = emptyHash
	}
	mf.cyclicPos = 0
	mf.cur = 0
	mf.pos = mf.cyclicSize
	mf.streamPos = mf.cyclicSize
	mf.err = nil
	mf.endReached = false
	mf.readBlock()
	mf.setLimits()
}

// available returns the number of bytes available after the current
// position.
func (mf *matchFinder) available() uint32 {
	return mf.streamPos - mf.pos
}

// byteAt returns the byte at index i relative to the current position.
// Negative indexes refer to the history.
func (mf *matchFinder) byteAt(i int) byte {
	return mf.buf[mf.cur+i]
}

// readBlock fills the window from the reader or, in direct input mode,
// makes the input available.
func (mf *matchFinder) readBlock() {
	if mf.endReached || mf.err != nil {
		return
	}
	if mf.directInput {
		size := uint64(maxNormalize - mf.streamPos)
		if size > mf.directRem {
			size = mf.directRem
		}
		mf.directRem -= size
		mf.streamPos += uint32(size)
		if mf.directRem == 0 {
			mf.endReached = true
		}
		return
	}
	empty := 0
	for {
		dst := mf.buf[mf.cur+int(mf.streamPos-mf.pos):]
		if len(dst) == 0 {
			return
		}
		n, err := mf.r.Read(dst)
		mf.streamPos += uint32(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				mf.endReached = true
			} else {
				mf.err = err
			}
			return
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				mf.err = io.ErrNoProgress
				return
			}
			continue
		}
		empty = 0
		if mf.streamPos-mf.pos > mf.keepAfter {
			return
		}
	}
}

// needMove checks whether the window must be moved to the start of the
// buffer.
func (mf *matchFinder) needMove() bool {
	if mf.directInput {
		return false
	}
	return uint32(len(mf.buf)-mf.cur) <= mf.keepAfter
}

// moveBlock moves the history and the lookahead to the start of the
// buffer.
func (mf *matchFinder) moveBlock() {
	start := mf.cur - int(mf.keepBefore)
	n := int(mf.streamPos-mf.pos) + int(mf.keepBefore)
	copy(mf.buf, mf.buf[start:start+n])
	mf.cur = int(mf.keepBefore)
}

func (mf *matchFinder) setLimits() {
	limit := maxNormalize - mf.pos
	limit2 := mf.cyclicSize - mf.cyclicPos
	if limit2 < limit {
		limit = limit2
	}
	limit2 = mf.streamPos - mf.pos
	if limit2 <= mf.keepAfter {
		if limit2 > 0 {
			limit2 = 1
		}
	} else {
		limit2 -= mf.keepAfter
	}
	if limit2 < limit {
		limit = limit2
	}
	lenLimit := mf.streamPos - mf.pos
	if lenLimit > mf.matchMaxLen {
		lenLimit = mf.matchMaxLen
	}
	mf.lenLimit = lenLimit
	mf.posLimit = mf.pos + limit
}

// normalize reduces all stored positions, so that the position counter
// doesn't overflow. Positions outside the history become empty.
func (mf *matchFinder) normalize() {
	sub := (mf.pos - mf.historySize - 1) & normalizeMask
	for i, v := range mf.hash {
		if v <= sub {
			v = emptyHash
		} else {
			v -= sub
		}
		mf.hash[i] = v
	}
	mf.posLimit -= sub
	mf.pos -= sub
	mf.streamPos -= sub
}

func (mf *matchFinder) checkLimits() {
	// In direct input mode streamPos stops at maxNormalize while input
	// remains, so the positions must be reduced before the lookahead
	// runs out.
	if mf.pos == maxNormalize || (mf.directInput && mf.directRem > 0 &&
		maxNormalize-mf.pos <= mf.keepAfter) {
		mf.normalize()
	}
	if !mf.endReached && mf.streamPos-mf.pos <= mf.keepAfter {
		if mf.needMove() {
			mf.moveBlock()
		}
		mf.readBlock()
	}
	if mf.cyclicPos == mf.cyclicSize {
		mf.cyclicPos = 0
	}
	mf.setLimits()
}

// movePos advances the current position by one byte.
func (mf *matchFinder) movePos() {
	mf.cyclicPos++
	mf.cur++
	mf.pos++
	if mf.pos == mf.posLimit {
		mf.checkLimits()
	}
}

// hashes computes the 2-byte, 3-byte and main hash values for the
// current position.
func (mf *matchFinder) hashes() (h2, h3, hv uint32) {
	b := mf.buf[mf.cur : mf.cur+int(mf.numHashBytes)]
	t := crcTable[b[0]] ^ uint32(b[1])
	h2 = t & (hash2Size - 1)
	switch mf.numHashBytes {
	case 3:
		hv = (t ^ uint32(b[2])<<8) & mf.hashMask
	case 4:
		h3 = (t ^ uint32(b[2])<<8) & (hash3Size - 1)
		hv = (t ^ uint32(b[2])<<8 ^ crcTable[b[3]]<<5) & mf.hashMask
	}
	return h2, h3, hv
}

// getMatches writes pairs of length and distance minus one for the
// current position into distances and advances the position by one
// byte. The lengths are strictly increasing. The function returns the
// number of values written. The distances slice must have room for
// 2*(maxMatchLen+1) values.
func (mf *matchFinder) getMatches(distances []uint32) int {
	switch mf.kind {
	case mfBt2:
		return mf.bt2GetMatches(distances)
	case mfBt3:
		return mf.bt3GetMatches(distances)
	case mfBt4:
		return mf.bt4GetMatches(distances)
	default:
		return mf.hc4GetMatches(distances)
	}
}

// skip advances the position by n bytes and inserts the positions into
// the search structures.
func (mf *matchFinder) skip(n uint32) {
	switch mf.kind {
	case mfBt2:
		mf.bt2Skip(n)
	case mfBt3:
		mf.bt3Skip(n)
	case mfBt4:
		mf.bt4Skip(n)
	default:
		mf.hc4Skip(n)
	}
}

// cyclicIndex returns the index of the cyclic buffer entry for a
// position delta bytes before the current position.
func (mf *matchFinder) cyclicIndex(delta uint32) uint32 {
	if delta > mf.cyclicPos {
		return mf.cyclicPos - delta + mf.cyclicSize
	}
	return mf.cyclicPos - delta
}

// extend extends a match of length n at distance delta up to limit.
func (mf *matchFinder) extend(n, delta, limit uint32) uint32 {
	cur := mf.buf[mf.cur:]
	pb := mf.buf[mf.cur-int(delta):]
	for n != limit && pb[n] == cur[n] {
		n++
	}
	return n
}
