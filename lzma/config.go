// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

// EncoderConfig provides the parameters of the encoder. Negative values
// and zero values for DictSize, ReduceSize and MC select the defaults,
// which depend on the compression level. Use DefaultEncoderConfig to get
// a configuration with all fields set to their default marker.
type EncoderConfig struct {
	// compression level 0..9 (default 5)
	Level int
	// size of the dictionary (default depends on level)
	DictSize uint32
	// estimated size of the input; a smaller dictionary is used if the
	// input is small (default 2^32-1)
	ReduceSize uint32
	// number of literal context bits 0..8 (default 3)
	LC int
	// number of literal position bits 0..4 (default 0)
	LP int
	// number of position bits 0..4 (default 2)
	PB int
	// 0 selects the fast parser, 1 the optimal parser (default
	// depends on level)
	Algo int
	// number of fast bytes 5..273 (default 32, 64 for level >= 7)
	FB int
	// 0 selects the hash chain, 1 the binary tree match finder
	BtMode int
	// number of hash bytes 2..4 for binary trees (default 4)
	NumHashBytes int
	// maximum number of match finder cycles (default 16+FB/2)
	MC uint32
	// WriteEndMark requests the end-of-stream marker.
	WriteEndMark bool
	// number of threads 1 or 2 (zero or negative selects 1); the
	// encoder always runs single-threaded
	NumThreads int
}

// DefaultEncoderConfig returns a configuration where all fields request
// the default values for level 5.
func DefaultEncoderConfig() EncoderConfig {
	return EncoderConfig{
		Level:        5,
		ReduceSize:   1<<32 - 1,
		LC:           -1,
		LP:           -1,
		PB:           -1,
		Algo:         -1,
		FB:           -1,
		BtMode:       -1,
		NumHashBytes: -1,
		NumThreads:   -1,
	}
}

// dictSizeForLevel returns the default dictionary size of a level.
func dictSizeForLevel(level int) uint32 {
	switch {
	case level <= 5:
		return 1 << uint(level*2+14)
	case level == 6:
		return 1 << 25
	}
	return 1 << 26
}

// ApplyDefaults replaces the default markers by the actual values.
func (c *EncoderConfig) ApplyDefaults() {
	if c.Level < 0 {
		c.Level = 5
	}
	level := c.Level
	if c.DictSize == 0 {
		c.DictSize = dictSizeForLevel(level)
	}
	if c.ReduceSize == 0 {
		c.ReduceSize = 1<<32 - 1
	}
	if c.DictSize > c.ReduceSize {
		for i := 15; i <= 30; i++ {
			if c.ReduceSize <= 2<<uint(i) {
				c.DictSize = 2 << uint(i)
				break
			}
			if c.ReduceSize <= 3<<uint(i) {
				c.DictSize = 3 << uint(i)
				break
			}
		}
	}
	if c.LC < 0 {
		c.LC = 3
	}
	if c.LP < 0 {
		c.LP = 0
	}
	if c.PB < 0 {
		c.PB = 2
	}
	if c.Algo < 0 {
		if level < 5 {
			c.Algo = 0
		} else {
			c.Algo = 1
		}
	}
	if c.FB < 0 {
		if level < 7 {
			c.FB = 32
		} else {
			c.FB = 64
		}
	}
	if c.BtMode < 0 {
		if c.Algo == 0 {
			c.BtMode = 0
		} else {
			c.BtMode = 1
		}
	}
	if c.NumHashBytes < 0 {
		c.NumHashBytes = 4
	}
	if c.MC == 0 {
		c.MC = (16 + uint32(c.FB)>>1) >> 1
		if c.BtMode != 0 {
			c.MC = 16 + uint32(c.FB)>>1
		}
	}
	if c.NumThreads <= 0 {
		c.NumThreads = 1
	}
}

// Verify checks the configuration for errors. Default markers are
// replaced by the values they select.
func (c *EncoderConfig) Verify() error {
	if c == nil {
		return newError(CodeParam, "encoder configuration is nil")
	}
	c.ApplyDefaults()
	if c.Level > 9 {
		return errorf(CodeParam, "level %d out of range", c.Level)
	}
	p := Properties{LC: c.LC, LP: c.LP, PB: c.PB, DictSize: c.DictSize}
	if err := p.Verify(); err != nil {
		return err
	}
	if c.DictSize > MaxDictSize {
		return errorf(CodeParam, "dictionary size %d exceeds %d",
			c.DictSize, MaxDictSize)
	}
	if !(c.Algo == 0 || c.Algo == 1) {
		return errorf(CodeParam, "algo=%d must be 0 or 1", c.Algo)
	}
	if !(c.BtMode == 0 || c.BtMode == 1) {
		return errorf(CodeParam, "btMode=%d must be 0 or 1", c.BtMode)
	}
	if c.MC > 1<<30 {
		return errorf(CodeParam, "mc=%d out of range", c.MC)
	}
	if !(c.NumThreads == 1 || c.NumThreads == 2) {
		return errorf(CodeParam, "numThreads=%d must be 1 or 2",
			c.NumThreads)
	}
	return nil
}

// fastBytes returns the number of fast bytes clamped to the supported
// range.
func (c *EncoderConfig) fastBytes() uint32 {
	fb := c.FB
	if fb < 5 {
		fb = 5
	}
	if fb > maxMatchLen {
		fb = maxMatchLen
	}
	return uint32(fb)
}

// matchFinder returns the match finder strategy selected by the
// configuration.
func (c *EncoderConfig) matchFinder() mfKind {
	return selectMF(c.BtMode != 0, c.hashBytes())
}

// hashBytes returns the number of hash bytes used by the match finder.
func (c *EncoderConfig) hashBytes() int {
	if c.BtMode == 0 {
		return 4
	}
	switch {
	case c.NumHashBytes < 2:
		return 2
	case c.NumHashBytes < 4:
		return c.NumHashBytes
	}
	return 4
}
