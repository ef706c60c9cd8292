// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"io"

	"github.com/ulikunitz/lzmacore/xlog"
)

// blockSize is the number of input bytes after which the encoder calls
// the progress function.
const blockSize = 1 << 15

// Encoder compresses data into a raw LZMA stream. The encoder writes
// only the compressed data; the properties must be stored separately,
// for instance with a Header.
//
// An Encoder can be used for multiple streams but not concurrently.
type Encoder struct {
	cfg   EncoderConfig
	props Properties

	mf          *matchFinder
	mfKind      mfKind
	rc          rangeEncoder
	probs       probModel
	matchLenEnc lenPriceEncoder
	repLenEnc   lenPriceEncoder

	opt             []optimal
	optEnd          uint32
	optCur          uint32
	longestMatchLen uint32
	numPairs        uint32
	numAvail        uint32
	matches         [maxMatchLen*2 + 2 + 1]uint32

	fastBytes        uint32
	additionalOffset uint32
	reps             [numReps]uint32
	state            uint32

	posSlotPrices   [lenToPosStates][distTableSizeMax]uint32
	distancesPrices [lenToPosStates][fullDistances]uint32
	alignPrices     [alignSize]uint32
	alignPriceCount uint32
	matchPriceCount uint32
	distTableSize   uint32

	lc     uint
	lpMask uint32
	pbMask uint32

	fastMode     bool
	writeEndMark bool

	nowPos64 uint64
	finished bool
	err      error
}

// NewEncoder creates an encoder for the given configuration. The
// configuration is verified and defaults are applied.
func NewEncoder(cfg EncoderConfig) (e *Encoder, err error) {
	if err = cfg.Verify(); err != nil {
		return nil, err
	}
	e = &Encoder{
		cfg:          cfg,
		mfKind:       cfg.matchFinder(),
		fastBytes:    cfg.fastBytes(),
		fastMode:     cfg.Algo == 0,
		writeEndMark: cfg.WriteEndMark,
		lc:           uint(cfg.LC),
		lpMask:       1<<uint(cfg.LP) - 1,
		pbMask:       1<<uint(cfg.PB) - 1,
		opt:          make([]optimal, numOpts),
	}
	e.props = Properties{
		LC:       cfg.LC,
		LP:       cfg.LP,
		PB:       cfg.PB,
		DictSize: roundDictSize(cfg.DictSize),
	}
	e.matchLenEnc.probs = &e.probs.matchLen
	e.repLenEnc.probs = &e.probs.repLen
	var i uint32
	for i = 0; i < maxDictLogCompress; i++ {
		if cfg.DictSize <= 1<<i {
			break
		}
	}
	e.distTableSize = i * 2
	xlog.Printf(debug, "encoder %s mf=%s fb=%d mc=%d fast=%t",
		e.props, e.mfKind, e.fastBytes, cfg.MC, e.fastMode)
	return e, nil
}

// Config returns the configuration of the encoder with all defaults
// applied.
func (e *Encoder) Config() EncoderConfig { return e.cfg }

// Properties returns the properties that must be provided to the
// decoder. The dictionary size is rounded up.
func (e *Encoder) Properties() Properties { return e.props }

// newMF allocates the match finder for a new stream.
func (e *Encoder) newMF(directInput bool) error {
	mf, err := newMatchFinder(e.mfKind, e.cfg.DictSize, numOpts,
		e.fastBytes, maxMatchLen, e.cfg.MC, directInput)
	if err != nil {
		return err
	}
	e.mf = mf
	return nil
}

// Encode compresses all data from r and writes the compressed stream to
// w. The progress function is called after each block of input with the
// number of bytes consumed and produced so far.
func (e *Encoder) Encode(w io.Writer, r io.Reader, progress Progress) error {
	if err := e.newMF(false); err != nil {
		return err
	}
	e.mf.initStream(r)
	e.init(w)
	return e.encode(progress)
}

// encodeBuffer compresses the slice src. The match finder uses src
// directly as window.
func (e *Encoder) encodeBuffer(w io.Writer, src []byte, progress Progress) error {
	if err := e.newMF(true); err != nil {
		return err
	}
	e.mf.initDirect(src)
	e.init(w)
	return e.encode(progress)
}

// init resets the state of the encoder for a new stream.
func (e *Encoder) init(w io.Writer) {
	e.state = 0
	e.reps = [numReps]uint32{}
	e.rc.init(w)
	e.probs.init(e.cfg.LC, e.cfg.LP)
	e.optEnd = 0
	e.optCur = 0
	e.additionalOffset = 0
	e.nowPos64 = 0
	e.finished = false
	e.err = nil

	if !e.fastMode {
		e.fillDistancesPrices()
		e.fillAlignPrices()
	}
	tableSize := e.fastBytes + 1 - minMatchLen
	e.matchLenEnc.tableSize = tableSize
	e.repLenEnc.tableSize = tableSize
	e.matchLenEnc.updateTables(1 << uint(e.cfg.PB))
	e.repLenEnc.updateTables(1 << uint(e.cfg.PB))
}

// encode compresses block after block until the input is exhausted.
func (e *Encoder) encode(progress Progress) error {
	for {
		err := e.codeOneBlock()
		if err != nil || e.finished {
			return err
		}
		if progress != nil {
			perr := progress.Progress(e.nowPos64, e.rc.Processed())
			if perr != nil {
				e.err = wrapError(CodeProgress,
					"progress aborted", perr)
				return e.err
			}
		}
	}
}

// checkErrors transfers errors of the range encoder and the match
// finder into the encoder error.
func (e *Encoder) checkErrors() error {
	if e.err != nil {
		return e.err
	}
	if e.rc.err != nil {
		e.err = wrapError(CodeWrite, "write error", e.rc.err)
	}
	if e.mf.err != nil {
		e.err = wrapError(CodeRead, "read error", e.mf.err)
	}
	if e.err != nil {
		e.finished = true
	}
	return e.err
}

// flush terminates the stream.
func (e *Encoder) flush(nowPos uint32) error {
	e.finished = true
	if e.writeEndMark {
		e.writeEndMarker(nowPos & e.pbMask)
	}
	e.rc.flushData()
	e.rc.flushStream()
	return e.checkErrors()
}

// writeEndMarker writes a match with the distance eosDist.
func (e *Encoder) writeEndMarker(posState uint32) {
	xlog.Printf(debug, "eos")
	p := &e.probs
	e.rc.encodeBit(&p.isMatch[e.state<<maxPosBits+posState], 1)
	e.rc.encodeBit(&p.isRep[e.state], 0)
	e.state = matchNextStates[e.state]
	n := uint32(minMatchLen)
	e.matchLenEnc.encode(&e.rc, n-minMatchLen, posState, !e.fastMode)
	e.rc.encodeTree(p.posSlot[lenToPosState(n)][:], posSlotBits,
		1<<posSlotBits-1)
	e.rc.encodeDirectBits((1<<30-1)>>alignBits, 30-alignBits)
	e.rc.encodeTreeReverse(p.align[:], alignBits, alignMask)
}

// movePos skips num bytes in the match finder.
func (e *Encoder) movePos(num uint32) {
	if num != 0 {
		e.additionalOffset += num
		e.mf.skip(num)
	}
}

// readMatchDistances reads the matches for the next position. The
// longest match is extended beyond fastBytes if possible.
func (e *Encoder) readMatchDistances() (lenRes, numPairs uint32) {
	e.numAvail = e.mf.available()
	numPairs = uint32(e.mf.getMatches(e.matches[:]))
	if numPairs > 0 {
		lenRes = e.matches[numPairs-2]
		if lenRes == e.fastBytes {
			numAvail := e.numAvail
			if numAvail > maxMatchLen {
				numAvail = maxMatchLen
			}
			data := e.mf.cur - 1
			dist := e.matches[numPairs-1] + 1
			lenRes = e.extendMatch(data, data-int(dist), lenRes,
				numAvail)
		}
	}
	e.additionalOffset++
	return lenRes, numPairs
}

// repLen1Price returns the price of a short rep.
func (e *Encoder) repLen1Price(state, posState uint32) uint32 {
	return e.probs.isRepG0[state].price0() +
		e.probs.isRep0Long[state<<maxPosBits+posState].price0()
}

// pureRepPrice returns the price for selecting the rep distance without
// the length.
func (e *Encoder) pureRepPrice(repIndex, state, posState uint32) uint32 {
	p := &e.probs
	if repIndex == 0 {
		return p.isRepG0[state].price0() +
			p.isRep0Long[state<<maxPosBits+posState].price1()
	}
	price := p.isRepG0[state].price1()
	if repIndex == 1 {
		return price + p.isRepG1[state].price0()
	}
	return price + p.isRepG1[state].price1() +
		p.isRepG2[state].price(repIndex-2)
}

// repPrice returns the price of a rep match.
func (e *Encoder) repPrice(repIndex, n, state, posState uint32) uint32 {
	return e.repLenEnc.price(n, posState) +
		e.pureRepPrice(repIndex, state, posState)
}

// distPrice returns the price of the distance for a match of length n.
func (e *Encoder) distPrice(dist, n uint32) uint32 {
	lps := lenToPosState(n)
	if dist < fullDistances {
		return e.distancesPrices[lps][dist]
	}
	return e.posSlotPrices[lps][posSlotLarge(dist)] +
		e.alignPrices[dist&alignMask]
}

func (e *Encoder) fillAlignPrices() {
	for i := range e.alignPrices {
		e.alignPrices[i] = treeReversePrice(e.probs.align[:], alignBits,
			uint32(i))
	}
	e.alignPriceCount = 0
}

func (e *Encoder) fillDistancesPrices() {
	var tempPrices [fullDistances]uint32
	for i := uint32(startPosModelIndex); i < fullDistances; i++ {
		slot := posSlot(i)
		footerBits := (slot >> 1) - 1
		base := (2 | (slot & 1)) << footerBits
		tempPrices[i] = treeReversePrice(e.probs.posSpec[base-slot:],
			int(footerBits), i-base)
	}
	for lps := 0; lps < lenToPosStates; lps++ {
		probs := e.probs.posSlot[lps][:]
		slotPrices := e.posSlotPrices[lps][:]
		for slot := uint32(0); slot < e.distTableSize; slot++ {
			slotPrices[slot] = treePrice(probs, posSlotBits, slot)
		}
		for slot := uint32(endPosModelIndex); slot < e.distTableSize; slot++ {
			slotPrices[slot] += ((slot >> 1) - 1 - alignBits) <<
				priceShiftBits
		}
		distPrices := e.distancesPrices[lps][:]
		i := uint32(0)
		for ; i < startPosModelIndex; i++ {
			distPrices[i] = slotPrices[i]
		}
		for ; i < fullDistances; i++ {
			distPrices[i] = slotPrices[posSlot(i)] + tempPrices[i]
		}
	}
	e.matchPriceCount = 0
}

// encodeLiteral encodes the byte at the current encoding position.
func (e *Encoder) encodeLiteral(nowPos, posState uint32) {
	p := &e.probs
	e.rc.encodeBit(&p.isMatch[e.state<<maxPosBits+posState], 0)
	data := e.mf.cur - int(e.additionalOffset)
	buf := e.mf.buf
	c := buf[data]
	probs := p.litProbs(nowPos, buf[data-1], e.lc, e.lpMask)
	if isCharState(e.state) {
		e.rc.encodeLiteral(probs, uint32(c))
	} else {
		matchByte := buf[data-int(e.reps[0])-1]
		e.rc.encodeMatchedLiteral(probs, uint32(c), uint32(matchByte))
	}
	e.state = literalNextStates[e.state]
	if debug != nil {
		xlog.Printf(debug, "lit %#02x", c)
	}
}

// encodeRep encodes a short rep or a rep match.
func (e *Encoder) encodeRep(repIndex, n, posState uint32) {
	p := &e.probs
	e.rc.encodeBit(&p.isRep[e.state], 1)
	if repIndex == 0 {
		e.rc.encodeBit(&p.isRepG0[e.state], 0)
		var bit uint32
		if n != 1 {
			bit = 1
		}
		e.rc.encodeBit(&p.isRep0Long[e.state<<maxPosBits+posState], bit)
	} else {
		dist := e.reps[repIndex]
		e.rc.encodeBit(&p.isRepG0[e.state], 1)
		if repIndex == 1 {
			e.rc.encodeBit(&p.isRepG1[e.state], 0)
		} else {
			e.rc.encodeBit(&p.isRepG1[e.state], 1)
			e.rc.encodeBit(&p.isRepG2[e.state], repIndex-2)
			if repIndex == 3 {
				e.reps[3] = e.reps[2]
			}
			e.reps[2] = e.reps[1]
		}
		e.reps[1] = e.reps[0]
		e.reps[0] = dist
	}
	if n == 1 {
		e.state = shortRepNextStates[e.state]
	} else {
		e.repLenEnc.encode(&e.rc, n-minMatchLen, posState, !e.fastMode)
		e.state = repNextStates[e.state]
	}
	if debug != nil {
		xlog.Printf(debug, "rep%d len=%d", repIndex, n)
	}
}

// encodeMatch encodes a match with a new distance. The value dist is the
// distance minus one.
func (e *Encoder) encodeMatch(dist, n, posState uint32) {
	p := &e.probs
	e.rc.encodeBit(&p.isRep[e.state], 0)
	e.state = matchNextStates[e.state]
	e.matchLenEnc.encode(&e.rc, n-minMatchLen, posState, !e.fastMode)
	slot := posSlot(dist)
	e.rc.encodeTree(p.posSlot[lenToPosState(n)][:], posSlotBits, slot)
	if slot >= startPosModelIndex {
		footerBits := (slot >> 1) - 1
		base := (2 | (slot & 1)) << footerBits
		reduced := dist - base
		if slot < endPosModelIndex {
			e.rc.encodeTreeReverse(p.posSpec[base-slot:],
				int(footerBits), reduced)
		} else {
			e.rc.encodeDirectBits(reduced>>alignBits,
				int(footerBits)-alignBits)
			e.rc.encodeTreeReverse(p.align[:], alignBits,
				reduced&alignMask)
			e.alignPriceCount++
		}
	}
	e.reps[3] = e.reps[2]
	e.reps[2] = e.reps[1]
	e.reps[1] = e.reps[0]
	e.reps[0] = dist
	e.matchPriceCount++
	if debug != nil {
		xlog.Printf(debug, "match len=%d dist=%d", n, dist+1)
	}
}

// codeOneBlock encodes at least blockSize bytes of input unless the input
// ends. At the end of the input the stream is flushed.
func (e *Encoder) codeOneBlock() error {
	if e.finished {
		return e.err
	}
	if err := e.checkErrors(); err != nil {
		return err
	}

	nowPos32 := uint32(e.nowPos64)
	startPos32 := nowPos32

	if e.nowPos64 == 0 {
		if e.mf.available() == 0 {
			return e.flush(nowPos32)
		}
		e.readMatchDistances()
		p := &e.probs
		e.rc.encodeBit(&p.isMatch[e.state<<maxPosBits], 0)
		e.state = literalNextStates[e.state]
		c := e.mf.byteAt(-int(e.additionalOffset))
		e.rc.encodeLiteral(p.literal[:0x300], uint32(c))
		e.additionalOffset--
		nowPos32++
	}

	if e.mf.available() != 0 {
		for {
			var n, back uint32
			if e.fastMode {
				n, back = e.getOptimumFast()
			} else {
				n, back = e.getOptimum(nowPos32)
			}

			posState := nowPos32 & e.pbMask
			if n == 1 && back == markLiteral {
				e.encodeLiteral(nowPos32, posState)
			} else {
				e.rc.encodeBit(&e.probs.isMatch[e.state<<maxPosBits+posState], 1)
				if back < numReps {
					e.encodeRep(back, n, posState)
				} else {
					e.encodeMatch(back-numReps, n, posState)
				}
			}

			e.additionalOffset -= n
			nowPos32 += n

			if e.additionalOffset != 0 {
				continue
			}
			if !e.fastMode {
				if e.matchPriceCount >= 1<<7 {
					e.fillDistancesPrices()
				}
				if e.alignPriceCount >= alignSize {
					e.fillAlignPrices()
				}
			}
			if e.mf.available() == 0 {
				break
			}
			if nowPos32-startPos32 >= blockSize {
				e.nowPos64 += uint64(nowPos32 - startPos32)
				return e.checkErrors()
			}
		}
	}

	e.nowPos64 += uint64(nowPos32 - startPos32)
	return e.flush(nowPos32)
}
