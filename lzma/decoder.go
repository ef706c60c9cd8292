// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"fmt"

	"github.com/ulikunitz/lzmacore/xlog"
)

// requiredInputMax is the maximum number of input bytes a single
// symbol may require.
const requiredInputMax = 20

// matchSpecLenStart marks a finished stream in remainLen.
const matchSpecLenStart = minMatchLen + lenSymbols

// FinishMode tells the decoder whether the stream must end at the
// output limit.
type FinishMode int

const (
	// FinishAny stops at the output limit.
	FinishAny FinishMode = iota
	// FinishEnd requires the stream to end at the output limit. An end
	// marker following the last byte is consumed.
	FinishEnd
)

func (m FinishMode) String() string {
	switch m {
	case FinishAny:
		return "FinishAny"
	case FinishEnd:
		return "FinishEnd"
	}
	return fmt.Sprintf("FinishMode(%d)", int(m))
}

// Status describes the state of the decoder after a decoding call.
type Status int

// Status values returned by the decoding functions.
const (
	// use the error instead
	StatusNotSpecified Status = iota
	// the stream was finished by an end marker
	StatusFinishedWithMark
	// the output limit has been reached but the stream continues
	StatusNotFinished
	// more input is required
	StatusNeedsMoreInput
	// the output limit has been reached and the stream may end here
	StatusMaybeFinishedWithoutMark
)

var statusNames = map[Status]string{
	StatusNotSpecified:             "not specified",
	StatusFinishedWithMark:         "finished with mark",
	StatusNotFinished:              "not finished",
	StatusNeedsMoreInput:           "needs more input",
	StatusMaybeFinishedWithoutMark: "maybe finished without mark",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// dummyResult is the outcome of a trial decode.
type dummyResult int

const (
	dummyError dummyResult = iota
	dummyLit
	dummyMatch
	dummyRep
)

// Decoder decodes a raw LZMA stream into a circular dictionary buffer.
// The decoder never reads beyond the input slices it is given; partial
// symbols at the end of the input are kept in a small temporary buffer.
type Decoder struct {
	props  Properties
	probs  probModel
	rc     rangeDecoder
	dic    []byte
	dicPos int

	processedPos uint32
	checkDicSize uint32
	state        uint32
	reps         [numReps]uint32
	remainLen    uint32

	needFlush     bool
	needInitState bool

	tempBuf     [requiredInputMax]byte
	tempBufSize int
}

// verifyDecoderProps checks the properties and raises the dictionary
// size to MinDictSize.
func verifyDecoderProps(props Properties) (Properties, error) {
	if err := props.Verify(); err != nil {
		return props, wrapError(CodeUnsupported, "invalid properties",
			err)
	}
	if props.DictSize < MinDictSize {
		props.DictSize = MinDictSize
	}
	return props, nil
}

// NewDecoder creates a decoder for the properties. The dictionary
// buffer has size dictBufSize, which is raised to the dictionary size
// of the properties if it is smaller.
func NewDecoder(props Properties, dictBufSize int) (d *Decoder, err error) {
	if props, err = verifyDecoderProps(props); err != nil {
		return nil, err
	}
	if uint64(dictBufSize) < uint64(props.DictSize) {
		if uint64(props.DictSize) > uint64(maxInt) {
			return nil, errorf(CodeMem,
				"dictionary size %d not supported", props.DictSize)
		}
		dictBufSize = int(props.DictSize)
	}
	d = &Decoder{props: props, dic: make([]byte, dictBufSize)}
	d.Reset()
	xlog.Printf(debug, "decoder %s buffer %d", props, dictBufSize)
	return d, nil
}

// newDirectDecoder creates a decoder that uses dst as dictionary. It
// must not be used with DecodeToBuf.
func newDirectDecoder(props Properties, dst []byte) (d *Decoder, err error) {
	if props, err = verifyDecoderProps(props); err != nil {
		return nil, err
	}
	d = &Decoder{props: props, dic: dst}
	d.Reset()
	xlog.Printf(debug, "decoder %s direct %d", props, len(dst))
	return d, nil
}

// Properties returns the properties used by the decoder.
func (d *Decoder) Properties() Properties { return d.props }

// Reset prepares the decoder for a new stream.
func (d *Decoder) Reset() {
	d.dicPos = 0
	d.initDicAndState(true, true)
}

// Dict returns the dictionary buffer and the current position in it.
// The bytes decoded by the last DecodeToDic call precede the position.
func (d *Decoder) Dict() (dic []byte, pos int) { return d.dic, d.dicPos }

// RewindDict moves the position to the start of the dictionary buffer
// if it has reached the end of it.
func (d *Decoder) RewindDict() {
	if d.dicPos == len(d.dic) {
		d.dicPos = 0
	}
}

func (d *Decoder) initDicAndState(initDic, initState bool) {
	d.needFlush = true
	d.remainLen = 0
	d.tempBufSize = 0
	if initDic {
		d.processedPos = 0
		d.checkDicSize = 0
		d.needInitState = true
	}
	if initState {
		d.needInitState = true
	}
}

func (d *Decoder) initState() {
	d.probs.init(d.props.LC, d.props.LP)
	d.reps = [numReps]uint32{1, 1, 1, 1}
	d.state = 0
	d.needInitState = false
}

// dicIndex returns the index of the byte dist bytes before the current
// position.
func (d *Decoder) dicIndex(dist uint32) int {
	i := d.dicPos - int(dist)
	if i < 0 {
		i += len(d.dic)
	}
	return i
}

// prevByte returns the byte before the current position or zero at the
// start of the stream.
func (d *Decoder) prevByte() byte {
	if d.checkDicSize == 0 && d.processedPos == 0 {
		return 0
	}
	i := d.dicPos
	if i == 0 {
		i = len(d.dic)
	}
	return d.dic[i-1]
}

func (d *Decoder) posMasks() (pbMask, lpMask uint32) {
	return 1<<uint(d.props.PB) - 1, 1<<uint(d.props.LP) - 1
}

// decodeSymbol decodes one literal, match or rep and copies as much of
// the data into the dictionary as the limit allows.
func (d *Decoder) decodeSymbol(limit int) error {
	p := &d.probs
	rc := &d.rc
	pbMask, lpMask := d.posMasks()
	state := d.state
	posState := d.processedPos & pbMask

	if rc.decodeBit(&p.isMatch[state<<maxPosBits+posState]) == 0 {
		probs := p.litProbs(d.processedPos, d.prevByte(),
			uint(d.props.LC), lpMask)
		var c byte
		if isCharState(state) {
			c = rc.decodeLiteral(probs)
		} else {
			matchByte := d.dic[d.dicIndex(d.reps[0])]
			c = rc.decodeMatchedLiteral(probs, uint32(matchByte))
		}
		d.dic[d.dicPos] = c
		d.dicPos++
		d.processedPos++
		d.state = literalNextStates[state]
		return nil
	}

	var n uint32
	if rc.decodeBit(&p.isRep[state]) == 0 {
		n = p.matchLen.decode(rc, posState)
		slot := rc.decodeTree(p.posSlot[lenToPosState(n+minMatchLen)][:],
			posSlotBits)
		dist := slot
		if slot >= startPosModelIndex {
			numDirectBits := int(slot>>1) - 1
			dist = (2 | (slot & 1)) << uint(numDirectBits)
			if slot < endPosModelIndex {
				dist += rc.decodeTreeReverse(p.posSpec[dist-slot:],
					numDirectBits)
			} else {
				dist += rc.decodeDirectBits(numDirectBits-alignBits) <<
					alignBits
				dist += rc.decodeTreeReverse(p.align[:], alignBits)
				if dist == eosDist {
					d.remainLen = n + matchSpecLenStart
					return nil
				}
			}
		}
		if d.checkDicSize == 0 {
			if dist >= d.processedPos {
				return errorf(CodeData,
					"distance %d exceeds decoded data", dist+1)
			}
		} else if dist >= d.checkDicSize {
			return errorf(CodeData,
				"distance %d exceeds dictionary size", dist+1)
		}
		d.reps[3] = d.reps[2]
		d.reps[2] = d.reps[1]
		d.reps[1] = d.reps[0]
		d.reps[0] = dist + 1
		d.state = matchNextStates[state]
	} else {
		if d.checkDicSize == 0 && d.processedPos == 0 {
			return newError(CodeData, "rep at start of stream")
		}
		if rc.decodeBit(&p.isRepG0[state]) == 0 {
			if rc.decodeBit(&p.isRep0Long[state<<maxPosBits+posState]) == 0 {
				d.dic[d.dicPos] = d.dic[d.dicIndex(d.reps[0])]
				d.dicPos++
				d.processedPos++
				d.state = shortRepNextStates[state]
				return nil
			}
		} else {
			var dist uint32
			if rc.decodeBit(&p.isRepG1[state]) == 0 {
				dist = d.reps[1]
			} else {
				if rc.decodeBit(&p.isRepG2[state]) == 0 {
					dist = d.reps[2]
				} else {
					dist = d.reps[3]
					d.reps[3] = d.reps[2]
				}
				d.reps[2] = d.reps[1]
			}
			d.reps[1] = d.reps[0]
			d.reps[0] = dist
		}
		n = p.repLen.decode(rc, posState)
		d.state = repNextStates[state]
	}

	n += minMatchLen
	if limit == d.dicPos {
		return newError(CodeData, "match beyond output limit")
	}
	curLen := n
	if rem := limit - d.dicPos; rem < int(n) {
		curLen = uint32(rem)
	}
	d.processedPos += curLen
	d.remainLen = n - curLen
	d.copyMatch(int(curLen))
	return nil
}

// copyMatch copies n bytes from the distance rep0 to the current
// position.
func (d *Decoder) copyMatch(n int) {
	dic := d.dic
	pos := d.dicIndex(d.reps[0])
	if pos+n <= len(dic) {
		dst := dic[d.dicPos : d.dicPos+n]
		src := dic[pos : pos+n]
		for i := range dst {
			dst[i] = src[i]
		}
		d.dicPos += n
		return
	}
	for ; n > 0; n-- {
		dic[d.dicPos] = dic[pos]
		d.dicPos++
		pos++
		if pos == len(dic) {
			pos = 0
		}
	}
}

// decodeReal decodes symbols until the limit is reached, the end marker
// has been found or the input position has passed bufLimit. The first
// symbol is always decoded.
func (d *Decoder) decodeReal(limit, bufLimit int) error {
	for {
		if err := d.decodeSymbol(limit); err != nil {
			return err
		}
		if d.remainLen >= matchSpecLenStart {
			break
		}
		if !(d.dicPos < limit && d.rc.pos < bufLimit) {
			break
		}
	}
	d.rc.normalize()
	if d.rc.overrun {
		return newError(CodeData, "symbol exceeds input")
	}
	return nil
}

// writeRem copies the remainder of a match interrupted by the limit.
func (d *Decoder) writeRem(limit int) {
	if d.remainLen == 0 || d.remainLen >= matchSpecLenStart {
		return
	}
	n := d.remainLen
	if rem := limit - d.dicPos; rem < int(n) {
		n = uint32(rem)
	}
	if d.checkDicSize == 0 && d.props.DictSize-d.processedPos <= n {
		d.checkDicSize = d.props.DictSize
	}
	d.processedPos += n
	d.remainLen -= n
	d.copyMatch(int(n))
}

func (d *Decoder) decodeReal2(limit, bufLimit int) error {
	for {
		limit2 := limit
		if d.checkDicSize == 0 {
			rem := d.props.DictSize - d.processedPos
			if uint64(limit-d.dicPos) > uint64(rem) {
				limit2 = d.dicPos + int(rem)
			}
		}
		if err := d.decodeReal(limit2, bufLimit); err != nil {
			return err
		}
		if d.processedPos >= d.props.DictSize {
			d.checkDicSize = d.props.DictSize
		}
		d.writeRem(limit)
		if !(d.dicPos < limit && d.rc.pos < bufLimit &&
			d.remainLen < matchSpecLenStart) {
			break
		}
	}
	if d.remainLen > matchSpecLenStart {
		d.remainLen = matchSpecLenStart
	}
	return nil
}

// tryDummy decodes the next symbol from in on a copy of the range
// decoder without changing any probability. It reports dummyError if
// the input is too short for the complete symbol.
func (d *Decoder) tryDummy(in []byte) dummyResult {
	rc := d.rc
	rc.setInput(in)
	p := &d.probs
	pbMask, lpMask := d.posMasks()
	state := d.state
	posState := d.processedPos & pbMask

	var res dummyResult
	switch {
	case rc.peekBit(p.isMatch[state<<maxPosBits+posState]) == 0:
		probs := p.litProbs(d.processedPos, d.prevByte(),
			uint(d.props.LC), lpMask)
		if isCharState(state) {
			rc.peekLiteral(probs)
		} else {
			matchByte := d.dic[d.dicIndex(d.reps[0])]
			rc.peekMatchedLiteral(probs, uint32(matchByte))
		}
		res = dummyLit
	case rc.peekBit(p.isRep[state]) == 0:
		n := p.matchLen.peek(&rc, posState)
		slot := rc.peekTree(p.posSlot[lenToPosState(n+minMatchLen)][:],
			posSlotBits)
		if slot >= startPosModelIndex {
			numDirectBits := int(slot>>1) - 1
			if slot < endPosModelIndex {
				base := (2 | (slot & 1)) << uint(numDirectBits)
				rc.peekTreeReverse(p.posSpec[base-slot:],
					numDirectBits)
			} else {
				rc.decodeDirectBits(numDirectBits - alignBits)
				rc.peekTreeReverse(p.align[:], alignBits)
			}
		}
		res = dummyMatch
	default:
		if rc.peekBit(p.isRepG0[state]) == 0 {
			if rc.peekBit(p.isRep0Long[state<<maxPosBits+posState]) == 0 {
				rc.normalize()
				if rc.overrun {
					return dummyError
				}
				return dummyRep
			}
		} else if rc.peekBit(p.isRepG1[state]) != 0 {
			rc.peekBit(p.isRepG2[state])
		}
		p.repLen.peek(&rc, posState)
		res = dummyRep
	}
	rc.normalize()
	if rc.overrun {
		return dummyError
	}
	return res
}

// DecodeToDic decodes src into the dictionary buffer up to the index
// dicLimit. It returns the number of bytes consumed from src and the
// status of the decoder. The mode matters only if the limit is reached;
// FinishEnd requires that the stream ends there.
func (d *Decoder) DecodeToDic(dicLimit int, src []byte, mode FinishMode) (nSrc int, status Status, err error) {
	if !(d.dicPos <= dicLimit && dicLimit <= len(d.dic)) {
		return 0, StatusNotSpecified, errorf(CodeParam,
			"dictionary limit %d out of range", dicLimit)
	}
	d.writeRem(dicLimit)

	for d.remainLen != matchSpecLenStart {
		if d.needFlush {
			for len(src) > 0 && d.tempBufSize < rcInitSize {
				d.tempBuf[d.tempBufSize] = src[0]
				d.tempBufSize++
				src = src[1:]
				nSrc++
			}
			if d.tempBufSize < rcInitSize {
				return nSrc, StatusNeedsMoreInput, nil
			}
			if err = d.rc.init(d.tempBuf[:rcInitSize]); err != nil {
				return nSrc, StatusNotSpecified, err
			}
			d.needFlush = false
			d.tempBufSize = 0
		}

		checkEndMarkNow := false
		if d.dicPos >= dicLimit {
			if d.remainLen == 0 && d.rc.code == 0 {
				return nSrc, StatusMaybeFinishedWithoutMark, nil
			}
			if mode == FinishAny {
				return nSrc, StatusNotFinished, nil
			}
			if d.remainLen != 0 {
				return nSrc, StatusNotFinished, newError(CodeData,
					"match exceeds output limit")
			}
			checkEndMarkNow = true
		}

		if d.needInitState {
			d.initState()
		}

		if d.tempBufSize == 0 {
			bufLimit := 0
			if len(src) < requiredInputMax || checkEndMarkNow {
				res := d.tryDummy(src)
				if res == dummyError {
					d.tempBufSize = copy(d.tempBuf[:], src)
					nSrc += len(src)
					return nSrc, StatusNeedsMoreInput, nil
				}
				if checkEndMarkNow && res != dummyMatch {
					return nSrc, StatusNotFinished, newError(
						CodeData, "data after output limit")
				}
			} else {
				bufLimit = len(src) - requiredInputMax
			}
			d.rc.setInput(src)
			if err = d.decodeReal2(dicLimit, bufLimit); err != nil {
				return nSrc, StatusNotSpecified, err
			}
			k := d.rc.pos
			nSrc += k
			src = src[k:]
		} else {
			rem := d.tempBufSize
			lookAhead := 0
			for rem < requiredInputMax && lookAhead < len(src) {
				d.tempBuf[rem] = src[lookAhead]
				rem++
				lookAhead++
			}
			d.tempBufSize = rem
			if rem < requiredInputMax || checkEndMarkNow {
				res := d.tryDummy(d.tempBuf[:rem])
				if res == dummyError {
					nSrc += lookAhead
					return nSrc, StatusNeedsMoreInput, nil
				}
				if checkEndMarkNow && res != dummyMatch {
					return nSrc, StatusNotFinished, newError(
						CodeData, "data after output limit")
				}
			}
			d.rc.setInput(d.tempBuf[:rem])
			if err = d.decodeReal2(dicLimit, 0); err != nil {
				return nSrc, StatusNotSpecified, err
			}
			lookAhead -= rem - d.rc.pos
			nSrc += lookAhead
			src = src[lookAhead:]
			d.tempBufSize = 0
		}
	}

	if d.rc.code != 0 {
		return nSrc, StatusNotSpecified, newError(CodeData,
			"range decoder not at zero after end marker")
	}
	xlog.Printf(debug, "end marker at %d", d.processedPos)
	return nSrc, StatusFinishedWithMark, nil
}

// DecodeToBuf decodes src into dst. The dictionary buffer is used
// circularly. It returns the number of bytes written to dst and read
// from src.
func (d *Decoder) DecodeToBuf(dst, src []byte, mode FinishMode) (nDst, nSrc int, status Status, err error) {
	for {
		d.RewindDict()
		dicPos := d.dicPos
		var limit int
		curMode := mode
		if len(dst) > len(d.dic)-dicPos {
			limit = len(d.dic)
			curMode = FinishAny
		} else {
			limit = dicPos + len(dst)
		}
		var k int
		k, status, err = d.DecodeToDic(limit, src, curMode)
		src = src[k:]
		nSrc += k
		m := copy(dst, d.dic[dicPos:d.dicPos])
		dst = dst[m:]
		nDst += m
		if err != nil || m == 0 || len(dst) == 0 {
			return nDst, nSrc, status, err
		}
	}
}
