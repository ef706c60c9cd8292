// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// number of supported states
const states = 12

// litStates is the number of states that follow a literal.
const litStates = 7

// maxPosBits defines the number of bits of the position value that are used to
// to compute the posState value. The value is used to select the tree codec
// for length encoding and decoding.
const maxPosBits = 4

// Constants of the length coder.
const (
	lenLowBits     = 3
	lenLowSymbols  = 1 << lenLowBits
	lenMidBits     = 3
	lenMidSymbols  = 1 << lenMidBits
	lenHighBits    = 8
	lenHighSymbols = 1 << lenHighBits
	lenSymbols     = lenLowSymbols + lenMidSymbols + lenHighSymbols
)

// Match length limits
const (
	minMatchLen = 2
	maxMatchLen = minMatchLen + lenSymbols - 1
)

// Constants of the distance coder.
const (
	lenToPosStates     = 4
	posSlotBits        = 6
	startPosModelIndex = 4
	endPosModelIndex   = 14
	fullDistances      = 1 << (endPosModelIndex >> 1)
	alignBits          = 4
	alignSize          = 1 << alignBits
	alignMask          = alignSize - 1
)

// numReps is the number of recently used distances kept.
const numReps = 4

// eosDist is the distance that marks the end of the stream.
const eosDist = 1<<32 - 1

var (
	literalNextStates  = [states]uint32{0, 0, 0, 0, 1, 2, 3, 4, 5, 6, 4, 5}
	matchNextStates    = [states]uint32{7, 7, 7, 7, 7, 7, 7, 10, 10, 10, 10, 10}
	repNextStates      = [states]uint32{8, 8, 8, 8, 8, 8, 8, 11, 11, 11, 11, 11}
	shortRepNextStates = [states]uint32{9, 9, 9, 9, 9, 9, 9, 11, 11, 11, 11, 11}
)

// isCharState returns true if the previous operation was a literal.
func isCharState(s uint32) bool { return s < litStates }

// lenToPosState returns the index of the position slot tree used for a
// match of the given length.
func lenToPosState(n uint32) uint32 {
	if n < lenToPosStates+1 {
		return n - 2
	}
	return lenToPosStates - 1
}

// lenProbs contains the probabilities of the length coder: two choice
// bits, 3-bit trees for the low and mid lengths per position state and a
// single 8-bit tree for the high lengths.
type lenProbs struct {
	choice  prob
	choice2 prob
	low     [1 << maxPosBits << lenLowBits]prob
	mid     [1 << maxPosBits << lenMidBits]prob
	high    [lenHighSymbols]prob
}

func (lp *lenProbs) init() {
	lp.choice = probInit
	lp.choice2 = probInit
	initProbs(lp.low[:])
	initProbs(lp.mid[:])
	initProbs(lp.high[:])
}

// probModel holds all adaptive probabilities of an LZMA stream. The
// encoder and the decoder use the same model.
type probModel struct {
	isMatch    [states << maxPosBits]prob
	isRep      [states]prob
	isRepG0    [states]prob
	isRepG1    [states]prob
	isRepG2    [states]prob
	isRep0Long [states << maxPosBits]prob
	posSlot    [lenToPosStates][1 << posSlotBits]prob
	// the trees for the slots below endPosModelIndex share posSpec;
	// tree indexes start at 1, so element 0 is never used
	posSpec    [fullDistances - endPosModelIndex + 1]prob
	align      [alignSize]prob
	matchLen   lenProbs
	repLen     lenProbs
	literal    []prob
}

// init resets all probabilities. The literal table is allocated for
// the given lc and lp values.
func (m *probModel) init(lc, lp int) {
	initProbs(m.isMatch[:])
	initProbs(m.isRep[:])
	initProbs(m.isRepG0[:])
	initProbs(m.isRepG1[:])
	initProbs(m.isRepG2[:])
	initProbs(m.isRep0Long[:])
	for i := range m.posSlot {
		initProbs(m.posSlot[i][:])
	}
	initProbs(m.posSpec[:])
	initProbs(m.align[:])
	m.matchLen.init()
	m.repLen.init()
	n := 0x300 << uint(lc+lp)
	if cap(m.literal) < n {
		m.literal = make([]prob, n)
	}
	m.literal = m.literal[:n]
	initProbs(m.literal)
}

// litProbs returns the literal probabilities for the position and the
// previous byte.
func (m *probModel) litProbs(pos uint32, prevByte byte, lc uint, lpMask uint32) []prob {
	k := 0x300 * (((pos & lpMask) << lc) + uint32(prevByte)>>(8-lc))
	return m.literal[k : k+0x300]
}
