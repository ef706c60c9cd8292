// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// Prices are fixed point approximations of -log2(p) with priceShiftBits
// fractional bits. A higher price means more output bits.
const (
	moveReducingBits = 4
	priceShiftBits   = 4
	infinityPrice    = 1 << 30
)

// probPrices maps a probability reduced by moveReducingBits to its price.
var probPrices = initProbPrices()

func initProbPrices() (t [probTotal >> moveReducingBits]uint32) {
	const cycleBits = priceShiftBits
	for i := uint32(1<<moveReducingBits) / 2; i < probTotal; i += 1 << moveReducingBits {
		w := i
		bitCount := uint32(0)
		for j := 0; j < cycleBits; j++ {
			w *= w
			bitCount <<= 1
			for w >= 1<<16 {
				w >>= 1
				bitCount++
			}
		}
		t[i>>moveReducingBits] = (probbits << cycleBits) - 15 - bitCount
	}
	return t
}

// price returns the price for encoding bit with the probability p.
func (p prob) price(bit uint32) uint32 {
	return probPrices[(uint32(p)^((0-bit)&(probTotal-1)))>>moveReducingBits]
}

// price0 returns the price of a zero bit.
func (p prob) price0() uint32 {
	return probPrices[p>>moveReducingBits]
}

// price1 returns the price of a one bit.
func (p prob) price1() uint32 {
	return probPrices[(p^(probTotal-1))>>moveReducingBits]
}

// treePrice computes the price of encoding symbol with the bit tree
// probs, most-significant bit first.
func treePrice(probs []prob, bits int, symbol uint32) uint32 {
	price := uint32(0)
	symbol |= 1 << uint(bits)
	for symbol != 1 {
		price += probs[symbol>>1].price(symbol & 1)
		symbol >>= 1
	}
	return price
}

// treeReversePrice computes the price of encoding symbol with the bit
// tree probs, least-significant bit first.
func treeReversePrice(probs []prob, bits int, symbol uint32) uint32 {
	price := uint32(0)
	m := uint32(1)
	for i := bits; i != 0; i-- {
		bit := symbol & 1
		symbol >>= 1
		price += probs[m].price(bit)
		m = (m << 1) | bit
	}
	return price
}

// literalPrice returns the price of a literal coded without match byte.
func literalPrice(probs []prob, symbol uint32) uint32 {
	price := uint32(0)
	symbol |= 0x100
	for symbol < 0x10000 {
		price += probs[symbol>>8].price((symbol >> 7) & 1)
		symbol <<= 1
	}
	return price
}

// matchedLiteralPrice returns the price of a literal that is coded in
// the context of the byte at distance rep0.
func matchedLiteralPrice(probs []prob, symbol, matchByte uint32) uint32 {
	price := uint32(0)
	offs := uint32(0x100)
	symbol |= 0x100
	for symbol < 0x10000 {
		matchByte <<= 1
		price += probs[offs+(matchByte&offs)+(symbol>>8)].price(
			(symbol >> 7) & 1)
		symbol <<= 1
		offs &= ^(matchByte ^ symbol)
	}
	return price
}
