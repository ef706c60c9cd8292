// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	tests := []struct {
		level    int
		dictSize uint32
		algo     int
		fb       int
		btMode   int
	}{
		{0, 1 << 14, 0, 32, 0},
		{4, 1 << 22, 0, 32, 0},
		{5, 1 << 24, 1, 32, 1},
		{6, 1 << 25, 1, 32, 1},
		{7, 1 << 26, 1, 64, 1},
		{9, 1 << 26, 1, 64, 1},
	}
	for _, tc := range tests {
		cfg := DefaultEncoderConfig()
		cfg.Level = tc.level
		cfg.ApplyDefaults()
		require.Equal(t, tc.dictSize, cfg.DictSize, "level %d", tc.level)
		require.Equal(t, tc.algo, cfg.Algo, "level %d", tc.level)
		require.Equal(t, tc.fb, cfg.FB, "level %d", tc.level)
		require.Equal(t, tc.btMode, cfg.BtMode, "level %d", tc.level)
		require.Equal(t, 3, cfg.LC)
		require.Equal(t, 0, cfg.LP)
		require.Equal(t, 2, cfg.PB)
		require.Equal(t, 4, cfg.NumHashBytes)
		require.Equal(t, 1, cfg.NumThreads)
		require.NoError(t, cfg.Verify())
	}
}

func TestApplyDefaultsZero(t *testing.T) {
	var cfg EncoderConfig
	require.NoError(t, cfg.Verify())
	require.Equal(t, 0, cfg.Level)
	require.Equal(t, uint32(1<<14), cfg.DictSize)
	require.Equal(t, uint32(1<<32-1), cfg.ReduceSize)
	require.Equal(t, uint32(8), cfg.MC)
	require.Equal(t, 1, cfg.NumThreads)
}

func TestReduceSize(t *testing.T) {
	tests := []struct{ reduce, dictSize uint32 }{
		{1, 1 << 16},
		{1 << 16, 1 << 16},
		{1<<16 + 1, 3 << 15},
		{100000, 1 << 17},
		{1 << 30, 1 << 24},
	}
	for _, tc := range tests {
		cfg := DefaultEncoderConfig()
		cfg.ReduceSize = tc.reduce
		cfg.ApplyDefaults()
		require.Equal(t, tc.dictSize, cfg.DictSize, "reduce %d", tc.reduce)
	}
}

func TestConfigVerifyErrors(t *testing.T) {
	tests := []func(c *EncoderConfig){
		func(c *EncoderConfig) { c.Level = 10 },
		func(c *EncoderConfig) { c.LC = 9 },
		func(c *EncoderConfig) { c.LP = 5 },
		func(c *EncoderConfig) { c.PB = 5 },
		func(c *EncoderConfig) { c.DictSize = 1<<30 + 1 },
		func(c *EncoderConfig) { c.Algo = 2 },
		func(c *EncoderConfig) { c.BtMode = 2 },
		func(c *EncoderConfig) { c.MC = 1<<30 + 1 },
		func(c *EncoderConfig) { c.NumThreads = 3 },
	}
	for i, f := range tests {
		cfg := DefaultEncoderConfig()
		f(&cfg)
		require.ErrorIs(t, cfg.Verify(), ErrParam, "test %d", i)
	}
	var cfg *EncoderConfig
	require.ErrorIs(t, cfg.Verify(), ErrParam)
}

func TestMatchFinderSelection(t *testing.T) {
	tests := []struct {
		btMode, hashBytes int
		kind              mfKind
	}{
		{0, -1, mfHc4},
		{0, 2, mfHc4},
		{1, -1, mfBt4},
		{1, 1, mfBt2},
		{1, 2, mfBt2},
		{1, 3, mfBt3},
		{1, 4, mfBt4},
		{1, 5, mfBt4},
	}
	for _, tc := range tests {
		cfg := DefaultEncoderConfig()
		cfg.BtMode = tc.btMode
		cfg.NumHashBytes = tc.hashBytes
		cfg.ApplyDefaults()
		require.Equal(t, tc.kind, cfg.matchFinder(), "%+v", tc)
	}
}

func TestFastBytes(t *testing.T) {
	for _, tc := range []struct{ fb, want int }{
		{0, 5}, {5, 5}, {64, 64}, {273, 273}, {274, 273},
	} {
		cfg := EncoderConfig{FB: tc.fb}
		require.Equal(t, uint32(tc.want), cfg.fastBytes())
	}
}
