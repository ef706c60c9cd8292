// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// encodeLen encodes the length symbol, which is the match length minus
// minMatchLen.
func (lp *lenProbs) encode(e *rangeEncoder, symbol, posState uint32) {
	if symbol < lenLowSymbols {
		e.encodeBit(&lp.choice, 0)
		e.encodeTree(lp.low[posState<<lenLowBits:], lenLowBits, symbol)
		return
	}
	e.encodeBit(&lp.choice, 1)
	if symbol < lenLowSymbols+lenMidSymbols {
		e.encodeBit(&lp.choice2, 0)
		e.encodeTree(lp.mid[posState<<lenMidBits:], lenMidBits,
			symbol-lenLowSymbols)
		return
	}
	e.encodeBit(&lp.choice2, 1)
	e.encodeTree(lp.high[:], lenHighBits,
		symbol-lenLowSymbols-lenMidSymbols)
}

// decode decodes a length symbol.
func (lp *lenProbs) decode(d *rangeDecoder, posState uint32) uint32 {
	if d.decodeBit(&lp.choice) == 0 {
		return d.decodeTree(lp.low[posState<<lenLowBits:], lenLowBits)
	}
	if d.decodeBit(&lp.choice2) == 0 {
		return lenLowSymbols +
			d.decodeTree(lp.mid[posState<<lenMidBits:], lenMidBits)
	}
	return lenLowSymbols + lenMidSymbols +
		d.decodeTree(lp.high[:], lenHighBits)
}

// peek decodes a length symbol without updating the probabilities.
func (lp *lenProbs) peek(d *rangeDecoder, posState uint32) uint32 {
	if d.peekBit(lp.choice) == 0 {
		return d.peekTree(lp.low[posState<<lenLowBits:], lenLowBits)
	}
	if d.peekBit(lp.choice2) == 0 {
		return lenLowSymbols +
			d.peekTree(lp.mid[posState<<lenMidBits:], lenMidBits)
	}
	return lenLowSymbols + lenMidSymbols +
		d.peekTree(lp.high[:], lenHighBits)
}

// setPrices computes the prices of the first n length symbols for the
// position state.
func (lp *lenProbs) setPrices(posState, n uint32, prices []uint32) {
	a0 := lp.choice.price0()
	a1 := lp.choice.price1()
	b0 := a1 + lp.choice2.price0()
	b1 := a1 + lp.choice2.price1()
	i := uint32(0)
	for ; i < lenLowSymbols; i++ {
		if i >= n {
			return
		}
		prices[i] = a0 + treePrice(lp.low[posState<<lenLowBits:],
			lenLowBits, i)
	}
	for ; i < lenLowSymbols+lenMidSymbols; i++ {
		if i >= n {
			return
		}
		prices[i] = b0 + treePrice(lp.mid[posState<<lenMidBits:],
			lenMidBits, i-lenLowSymbols)
	}
	for ; i < n; i++ {
		prices[i] = b1 + treePrice(lp.high[:], lenHighBits,
			i-lenLowSymbols-lenMidSymbols)
	}
}

// lenPriceEncoder encodes lengths and maintains the price tables. The
// table of a position state is refreshed after tableSize uses.
type lenPriceEncoder struct {
	probs     *lenProbs
	prices    [1 << maxPosBits][lenSymbols]uint32
	tableSize uint32
	counters  [1 << maxPosBits]uint32
}

func (le *lenPriceEncoder) updateTable(posState uint32) {
	le.probs.setPrices(posState, le.tableSize, le.prices[posState][:])
	le.counters[posState] = le.tableSize
}

// updateTables refreshes the price tables of all position states.
func (le *lenPriceEncoder) updateTables(numPosStates uint32) {
	for posState := uint32(0); posState < numPosStates; posState++ {
		le.updateTable(posState)
	}
}

// encode encodes the length symbol. If updatePrice is set the counter
// of the position state is decremented and the table refreshed at zero.
func (le *lenPriceEncoder) encode(e *rangeEncoder, symbol, posState uint32, updatePrice bool) {
	le.probs.encode(e, symbol, posState)
	if updatePrice {
		le.counters[posState]--
		if le.counters[posState] == 0 {
			le.updateTable(posState)
		}
	}
}

// price returns the price for a match length.
func (le *lenPriceEncoder) price(n, posState uint32) uint32 {
	return le.prices[posState][n-minMatchLen]
}
