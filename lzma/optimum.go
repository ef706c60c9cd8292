// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// numOpts is the number of positions covered by the optimal parser.
const numOpts = 1 << 12

// markLiteral is the back value of a literal operation.
const markLiteral = 1<<32 - 1

// optimal is a node of the optimal parser. It records the cheapest known
// way to reach its position.
type optimal struct {
	price uint32
	state uint32

	// prev1IsChar marks a literal preceding the operation; prev2 marks
	// a rep or match before the literal
	prev1IsChar bool
	prev2       bool

	posPrev2  uint32
	backPrev2 uint32

	posPrev  uint32
	backPrev uint32
	backs    [numReps]uint32
}

func (o *optimal) makeAsChar() {
	o.backPrev = markLiteral
	o.prev1IsChar = false
}

func (o *optimal) makeAsShortRep() {
	o.backPrev = 0
	o.prev1IsChar = false
}

func (o *optimal) isShortRep() bool { return o.backPrev == 0 }

// changePair reports whether the big distance is so much larger than the
// small distance that the shorter match should be preferred.
func changePair(smallDist, bigDist uint32) bool {
	return bigDist>>7 > smallDist
}

// extendMatch compares the data at the window indexes a and b starting
// with offset n and returns the length of the common prefix up to limit.
func (e *Encoder) extendMatch(a, b int, n, limit uint32) uint32 {
	buf := e.mf.buf
	for n < limit && buf[a+int(n)] == buf[b+int(n)] {
		n++
	}
	return n
}

// setInfinity extends the range of valid nodes to n.
func (e *Encoder) setInfinity(lenEnd *uint32, n uint32) {
	for *lenEnd < n {
		*lenEnd++
		e.opt[*lenEnd].price = infinityPrice
	}
}

// getOptimum computes the cheapest sequence of operations for the next
// bytes and returns the first one. The following operations are
// returned by subsequent calls.
func (e *Encoder) getOptimum(position uint32) (length, back uint32) {
	if e.optEnd != e.optCur {
		o := &e.opt[e.optCur]
		length = o.posPrev - e.optCur
		back = o.backPrev
		e.optCur = o.posPrev
		return length, back
	}
	e.optCur = 0
	e.optEnd = 0

	var mainLen, numPairs uint32
	if e.additionalOffset == 0 {
		mainLen, numPairs = e.readMatchDistances()
	} else {
		mainLen = e.longestMatchLen
		numPairs = e.numPairs
	}
	numAvail := e.numAvail
	if numAvail < 2 {
		return 1, markLiteral
	}
	if numAvail > maxMatchLen {
		numAvail = maxMatchLen
	}

	buf := e.mf.buf
	data := e.mf.cur - 1
	var reps, repLens [numReps]uint32
	repMaxIndex := 0
	for i := range reps {
		reps[i] = e.reps[i]
		data2 := data - int(reps[i]) - 1
		if buf[data] != buf[data2] || buf[data+1] != buf[data2+1] {
			repLens[i] = 0
			continue
		}
		repLens[i] = e.extendMatch(data, data2, 2, numAvail)
		if repLens[i] > repLens[repMaxIndex] {
			repMaxIndex = i
		}
	}
	if repLens[repMaxIndex] >= e.fastBytes {
		length = repLens[repMaxIndex]
		e.movePos(length - 1)
		return length, uint32(repMaxIndex)
	}

	matches := e.matches[:]
	if mainLen >= e.fastBytes {
		back = matches[numPairs-1] + numReps
		e.movePos(mainLen - 1)
		return mainLen, back
	}

	curByte := buf[data]
	matchByte := buf[data-int(reps[0])-1]
	if mainLen < 2 && curByte != matchByte && repLens[repMaxIndex] < 2 {
		return 1, markLiteral
	}

	opt := e.opt
	state := e.state
	opt[0].state = state
	posState := position & e.pbMask
	probs := &e.probs

	isMatch := probs.isMatch[state<<maxPosBits+posState]
	litProbs := probs.litProbs(position, buf[data-1], e.lc, e.lpMask)
	opt[1].price = isMatch.price0()
	if isCharState(state) {
		opt[1].price += literalPrice(litProbs, uint32(curByte))
	} else {
		opt[1].price += matchedLiteralPrice(litProbs, uint32(curByte),
			uint32(matchByte))
	}
	opt[1].makeAsChar()

	matchPrice := isMatch.price1()
	repMatchPrice := matchPrice + probs.isRep[state].price1()
	if matchByte == curByte {
		shortRepPrice := repMatchPrice + e.repLen1Price(state, posState)
		if shortRepPrice < opt[1].price {
			opt[1].price = shortRepPrice
			opt[1].makeAsShortRep()
		}
	}
	lenEnd := mainLen
	if repLens[repMaxIndex] > lenEnd {
		lenEnd = repLens[repMaxIndex]
	}
	if lenEnd < 2 {
		return 1, opt[1].backPrev
	}

	opt[1].posPrev = 0
	opt[0].backs = reps
	for n := lenEnd; n >= 2; n-- {
		opt[n].price = infinityPrice
	}

	for i, repLen := range repLens {
		if repLen < 2 {
			continue
		}
		price := repMatchPrice + e.pureRepPrice(uint32(i), state, posState)
		for ; repLen >= 2; repLen-- {
			p := price + e.repLenEnc.price(repLen, posState)
			o := &opt[repLen]
			if p < o.price {
				o.price = p
				o.posPrev = 0
				o.backPrev = uint32(i)
				o.prev1IsChar = false
			}
		}
	}

	normalMatchPrice := matchPrice + probs.isRep[state].price0()
	n := uint32(2)
	if repLens[0] >= 2 {
		n = repLens[0] + 1
	}
	if n <= mainLen {
		offs := uint32(0)
		for n > matches[offs] {
			offs += 2
		}
		for ; ; n++ {
			dist := matches[offs+1]
			p := normalMatchPrice + e.matchLenEnc.price(n, posState) +
				e.distPrice(dist, n)
			o := &opt[n]
			if p < o.price {
				o.price = p
				o.posPrev = 0
				o.backPrev = dist + numReps
				o.prev1IsChar = false
			}
			if n == matches[offs] {
				offs += 2
				if offs == numPairs {
					break
				}
			}
		}
	}

	cur := uint32(0)
	for {
		cur++
		if cur == lenEnd {
			return e.backward(cur)
		}
		newLen, numPairs := e.readMatchDistances()
		if newLen >= e.fastBytes {
			e.numPairs = numPairs
			e.longestMatchLen = newLen
			return e.backward(cur)
		}
		position++

		curOpt := &opt[cur]
		posPrev := curOpt.posPrev
		var state uint32
		if curOpt.prev1IsChar {
			posPrev--
			if curOpt.prev2 {
				state = opt[curOpt.posPrev2].state
				if curOpt.backPrev2 < numReps {
					state = repNextStates[state]
				} else {
					state = matchNextStates[state]
				}
			} else {
				state = opt[posPrev].state
			}
			state = literalNextStates[state]
		} else {
			state = opt[posPrev].state
		}
		if posPrev == cur-1 {
			if curOpt.isShortRep() {
				state = shortRepNextStates[state]
			} else {
				state = literalNextStates[state]
			}
		} else {
			var pos uint32
			if curOpt.prev1IsChar && curOpt.prev2 {
				posPrev = curOpt.posPrev2
				pos = curOpt.backPrev2
				state = repNextStates[state]
			} else {
				pos = curOpt.backPrev
				if pos < numReps {
					state = repNextStates[state]
				} else {
					state = matchNextStates[state]
				}
			}
			prevOpt := &opt[posPrev]
			if pos < numReps {
				reps[0] = prevOpt.backs[pos]
				i := uint32(1)
				for ; i <= pos; i++ {
					reps[i] = prevOpt.backs[i-1]
				}
				for ; i < numReps; i++ {
					reps[i] = prevOpt.backs[i]
				}
			} else {
				reps[0] = pos - numReps
				reps[1] = prevOpt.backs[0]
				reps[2] = prevOpt.backs[1]
				reps[3] = prevOpt.backs[2]
			}
		}
		curOpt.state = state
		curOpt.backs = reps

		curPrice := curOpt.price
		nextIsChar := false
		data := e.mf.cur - 1
		curByte := buf[data]
		matchByte := buf[data-int(reps[0])-1]
		posState := position & e.pbMask

		isMatch := probs.isMatch[state<<maxPosBits+posState]
		curAnd1Price := curPrice + isMatch.price0()
		litProbs := probs.litProbs(position, buf[data-1], e.lc, e.lpMask)
		if isCharState(state) {
			curAnd1Price += literalPrice(litProbs, uint32(curByte))
		} else {
			curAnd1Price += matchedLiteralPrice(litProbs,
				uint32(curByte), uint32(matchByte))
		}

		nextOpt := &opt[cur+1]
		if curAnd1Price < nextOpt.price {
			nextOpt.price = curAnd1Price
			nextOpt.posPrev = cur
			nextOpt.makeAsChar()
			nextIsChar = true
		}

		matchPrice := curPrice + isMatch.price1()
		repMatchPrice := matchPrice + probs.isRep[state].price1()
		if matchByte == curByte &&
			!(nextOpt.posPrev < cur && nextOpt.backPrev == 0) {
			shortRepPrice := repMatchPrice + e.repLen1Price(state, posState)
			if shortRepPrice <= nextOpt.price {
				nextOpt.price = shortRepPrice
				nextOpt.posPrev = cur
				nextOpt.makeAsShortRep()
				nextIsChar = true
			}
		}

		numAvailFull := e.numAvail
		if numAvailFull > numOpts-1-cur {
			numAvailFull = numOpts - 1 - cur
		}
		if numAvailFull < 2 {
			continue
		}
		numAvail := numAvailFull
		if numAvail > e.fastBytes {
			numAvail = e.fastBytes
		}

		if !nextIsChar && matchByte != curByte {
			// literal followed by rep0
			data2 := data - int(reps[0]) - 1
			limit := e.fastBytes + 1
			if limit > numAvailFull {
				limit = numAvailFull
			}
			lenTest2 := e.extendMatch(data, data2, 1, limit) - 1
			if lenTest2 >= 2 {
				state2 := literalNextStates[state]
				posStateNext := (position + 1) & e.pbMask
				nextRepMatchPrice := curAnd1Price +
					probs.isMatch[state2<<maxPosBits+posStateNext].price1() +
					probs.isRep[state2].price1()
				offset := cur + 1 + lenTest2
				e.setInfinity(&lenEnd, offset)
				p := nextRepMatchPrice +
					e.repPrice(0, lenTest2, state2, posStateNext)
				o := &opt[offset]
				if p < o.price {
					o.price = p
					o.posPrev = cur + 1
					o.backPrev = 0
					o.prev1IsChar = true
					o.prev2 = false
				}
			}
		}

		startLen := uint32(2)
		for repIndex := uint32(0); repIndex < numReps; repIndex++ {
			data2 := data - int(reps[repIndex]) - 1
			if buf[data] != buf[data2] || buf[data+1] != buf[data2+1] {
				continue
			}
			lenTest := e.extendMatch(data, data2, 2, numAvail)
			e.setInfinity(&lenEnd, cur+lenTest)
			price := repMatchPrice + e.pureRepPrice(repIndex, state, posState)
			for n := lenTest; n >= 2; n-- {
				p := price + e.repLenEnc.price(n, posState)
				o := &opt[cur+n]
				if p < o.price {
					o.price = p
					o.posPrev = cur
					o.backPrev = repIndex
					o.prev1IsChar = false
				}
			}
			if repIndex == 0 {
				startLen = lenTest + 1
			}

			// rep followed by literal and rep0
			limit := lenTest + 1 + e.fastBytes
			if limit > numAvailFull {
				limit = numAvailFull
			}
			lenTest2 := e.extendMatch(data, data2, lenTest+1, limit)
			lenTest2 -= lenTest + 1
			if lenTest2 >= 2 {
				state2 := repNextStates[state]
				posStateNext := (position + lenTest) & e.pbMask
				curAndLenCharPrice := price +
					e.repLenEnc.price(lenTest, posState) +
					probs.isMatch[state2<<maxPosBits+posStateNext].price0() +
					matchedLiteralPrice(
						probs.litProbs(position+lenTest,
							buf[data+int(lenTest)-1], e.lc, e.lpMask),
						uint32(buf[data+int(lenTest)]),
						uint32(buf[data2+int(lenTest)]))
				state2 = literalNextStates[state2]
				posStateNext = (position + lenTest + 1) & e.pbMask
				nextRepMatchPrice := curAndLenCharPrice +
					probs.isMatch[state2<<maxPosBits+posStateNext].price1() +
					probs.isRep[state2].price1()
				offset := cur + lenTest + 1 + lenTest2
				e.setInfinity(&lenEnd, offset)
				p := nextRepMatchPrice +
					e.repPrice(0, lenTest2, state2, posStateNext)
				o := &opt[offset]
				if p < o.price {
					o.price = p
					o.posPrev = cur + lenTest + 1
					o.backPrev = 0
					o.prev1IsChar = true
					o.prev2 = true
					o.posPrev2 = cur
					o.backPrev2 = repIndex
				}
			}
		}

		if newLen > numAvail {
			newLen = numAvail
			numPairs = 0
			for newLen > matches[numPairs] {
				numPairs += 2
			}
			matches[numPairs] = newLen
			numPairs += 2
		}
		if newLen < startLen {
			continue
		}

		normalMatchPrice := matchPrice + probs.isRep[state].price0()
		e.setInfinity(&lenEnd, cur+newLen)
		offs := uint32(0)
		for startLen > matches[offs] {
			offs += 2
		}
		curBack := matches[offs+1]
		slot := posSlot(curBack)
		for lenTest := startLen; ; lenTest++ {
			curAndLenPrice := normalMatchPrice +
				e.matchLenEnc.price(lenTest, posState)
			lps := lenToPosState(lenTest)
			if curBack < fullDistances {
				curAndLenPrice += e.distancesPrices[lps][curBack]
			} else {
				curAndLenPrice += e.posSlotPrices[lps][slot] +
					e.alignPrices[curBack&alignMask]
			}
			o := &opt[cur+lenTest]
			if curAndLenPrice < o.price {
				o.price = curAndLenPrice
				o.posPrev = cur
				o.backPrev = curBack + numReps
				o.prev1IsChar = false
			}

			if lenTest != matches[offs] {
				continue
			}

			// match followed by literal and rep0
			data2 := data - int(curBack) - 1
			limit := lenTest + 1 + e.fastBytes
			if limit > numAvailFull {
				limit = numAvailFull
			}
			lenTest2 := e.extendMatch(data, data2, lenTest+1, limit)
			lenTest2 -= lenTest + 1
			if lenTest2 >= 2 {
				state2 := matchNextStates[state]
				posStateNext := (position + lenTest) & e.pbMask
				curAndLenCharPrice := curAndLenPrice +
					probs.isMatch[state2<<maxPosBits+posStateNext].price0() +
					matchedLiteralPrice(
						probs.litProbs(position+lenTest,
							buf[data+int(lenTest)-1], e.lc, e.lpMask),
						uint32(buf[data+int(lenTest)]),
						uint32(buf[data2+int(lenTest)]))
				state2 = literalNextStates[state2]
				posStateNext = (posStateNext + 1) & e.pbMask
				nextRepMatchPrice := curAndLenCharPrice +
					probs.isMatch[state2<<maxPosBits+posStateNext].price1() +
					probs.isRep[state2].price1()
				offset := cur + lenTest + 1 + lenTest2
				e.setInfinity(&lenEnd, offset)
				p := nextRepMatchPrice +
					e.repPrice(0, lenTest2, state2, posStateNext)
				o := &opt[offset]
				if p < o.price {
					o.price = p
					o.posPrev = cur + lenTest + 1
					o.backPrev = 0
					o.prev1IsChar = true
					o.prev2 = true
					o.posPrev2 = cur
					o.backPrev2 = curBack + numReps
				}
			}
			offs += 2
			if offs == numPairs {
				break
			}
			curBack = matches[offs+1]
			if curBack >= fullDistances {
				slot = posSlot(curBack)
			}
		}
	}
}

// backward reverses the chain of nodes ending at cur, so that the
// operations can be read in forward direction. It returns the first
// operation.
func (e *Encoder) backward(cur uint32) (length, back uint32) {
	opt := e.opt
	posMem := opt[cur].posPrev
	backMem := opt[cur].backPrev
	e.optEnd = cur
	for {
		if opt[cur].prev1IsChar {
			opt[posMem].makeAsChar()
			opt[posMem].posPrev = posMem - 1
			if opt[cur].prev2 {
				opt[posMem-1].prev1IsChar = false
				opt[posMem-1].posPrev = opt[cur].posPrev2
				opt[posMem-1].backPrev = opt[cur].backPrev2
			}
		}
		posPrev := posMem
		backCur := backMem

		backMem = opt[posPrev].backPrev
		posMem = opt[posPrev].posPrev

		opt[posPrev].backPrev = backCur
		opt[posPrev].posPrev = cur
		cur = posPrev
		if cur == 0 {
			break
		}
	}
	e.optCur = opt[0].posPrev
	return e.optCur, opt[0].backPrev
}

// getOptimumFast selects the next operation greedily.
func (e *Encoder) getOptimumFast() (length, back uint32) {
	var mainLen, numPairs uint32
	if e.additionalOffset == 0 {
		mainLen, numPairs = e.readMatchDistances()
	} else {
		mainLen = e.longestMatchLen
		numPairs = e.numPairs
	}
	numAvail := e.numAvail
	if numAvail < 2 {
		return 1, markLiteral
	}
	if numAvail > maxMatchLen {
		numAvail = maxMatchLen
	}

	buf := e.mf.buf
	data := e.mf.cur - 1
	var repLen, repIndex uint32
	for i := uint32(0); i < numReps; i++ {
		data2 := data - int(e.reps[i]) - 1
		if buf[data] != buf[data2] || buf[data+1] != buf[data2+1] {
			continue
		}
		n := e.extendMatch(data, data2, 2, numAvail)
		if n >= e.fastBytes {
			e.movePos(n - 1)
			return n, i
		}
		if n > repLen {
			repIndex = i
			repLen = n
		}
	}

	matches := e.matches[:]
	if mainLen >= e.fastBytes {
		back = matches[numPairs-1] + numReps
		e.movePos(mainLen - 1)
		return mainLen, back
	}

	mainDist := uint32(0)
	if mainLen >= 2 {
		mainDist = matches[numPairs-1]
		for numPairs > 2 && mainLen == matches[numPairs-4]+1 {
			if !changePair(matches[numPairs-3], mainDist) {
				break
			}
			numPairs -= 2
			mainLen = matches[numPairs-2]
			mainDist = matches[numPairs-1]
		}
		if mainLen == 2 && mainDist >= 0x80 {
			mainLen = 1
		}
	}

	if repLen >= 2 && (repLen+1 >= mainLen ||
		(repLen+2 >= mainLen && mainDist >= 1<<9) ||
		(repLen+3 >= mainLen && mainDist >= 1<<15)) {
		e.movePos(repLen - 1)
		return repLen, repIndex
	}

	if mainLen < 2 || numAvail <= 2 {
		return 1, markLiteral
	}

	e.longestMatchLen, e.numPairs = e.readMatchDistances()
	if e.longestMatchLen >= 2 {
		newDist := matches[e.numPairs-1]
		if (e.longestMatchLen >= mainLen && newDist < mainDist) ||
			(e.longestMatchLen == mainLen+1 &&
				!changePair(mainDist, newDist)) ||
			e.longestMatchLen > mainLen+1 ||
			(e.longestMatchLen+1 >= mainLen && mainLen >= 3 &&
				changePair(newDist, mainDist)) {
			return 1, markLiteral
		}
	}

	data = e.mf.cur - 1
	for i := 0; i < numReps; i++ {
		data2 := data - int(e.reps[i]) - 1
		if buf[data] != buf[data2] || buf[data+1] != buf[data2+1] {
			continue
		}
		limit := mainLen - 1
		if e.extendMatch(data, data2, 2, limit) >= limit {
			return 1, markLiteral
		}
	}

	e.movePos(mainLen - 2)
	return mainLen, mainDist + numReps
}
