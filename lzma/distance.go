// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// fastPosBits is the logarithm of the size of the fastPos table.
const fastPosBits = 13

// maxDictLogCompress limits the dictionary size supported by the encoder.
const maxDictLogCompress = (fastPosBits-1)*2 + 7

// distTableSizeMax is the maximum number of position slots.
const distTableSizeMax = 32 * 2

// fastPos maps distances below 1<<fastPosBits to their position slot.
var fastPos = initFastPos()

func initFastPos() []byte {
	fp := make([]byte, 1<<fastPosBits)
	fp[0] = 0
	fp[1] = 1
	i := 2
	for slot := 2; slot < fastPosBits*2; slot++ {
		k := 1 << uint((slot>>1)-1)
		for j := 0; j < k; j++ {
			fp[i] = byte(slot)
			i++
		}
	}
	return fp
}

// posSlotLarge computes the position slot of distances that may exceed
// the fastPos table.
func posSlotLarge(dist uint32) uint32 {
	if dist < 1<<(fastPosBits+6) {
		return uint32(fastPos[dist>>6]) + 12
	}
	return uint32(fastPos[dist>>(6+fastPosBits-1)]) + (6+fastPosBits-1)*2
}

// posSlot returns the position slot of the distance. The value dist is
// the real distance minus one.
func posSlot(dist uint32) uint32 {
	if dist < fullDistances {
		return uint32(fastPos[dist])
	}
	return posSlotLarge(dist)
}
