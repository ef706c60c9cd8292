// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command tune searches encoder configurations for the compression level
// presets. It benchmarks the configurations on the Silesia corpus and
// selects the fastest configuration for every compression ratio slot.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/kr/pretty"

	"github.com/ulikunitz/lzmacore/internal/tuning"
	"github.com/ulikunitz/lzmacore/lzma"
	"github.com/ulikunitz/lzmacore/xlog"
)

// preset is the best configuration found for a compression ratio slot.
type preset struct {
	cfg    lzma.EncoderConfig
	result testing.BenchmarkResult
}

// candidate is a configuration waiting to be benchmarked. Candidates
// that cannot reach any slot are skipped.
type candidate struct {
	cfg  lzma.EncoderConfig
	skip bool
}

// mbPerSec returns the Megabytes (1 000 000 bytes) per seconds that are
// processed.
func mbPerSec(r testing.BenchmarkResult) float64 {
	if v, ok := r.Extra["MB/s"]; ok {
		return v
	}
	if r.Bytes <= 0 || r.T <= 0 || r.N <= 0 {
		return 0
	}
	return (float64(r.Bytes) * float64(r.N) / 1e6) / r.T.Seconds()
}

func ratio(r testing.BenchmarkResult) float64 {
	if x, ok := r.Extra["c/u"]; ok {
		return x
	}
	return math.NaN()
}

// slot returns the index of the tightest slot the ratio satisfies. The
// slots are sorted in descending order.
func slot(slots []float64, ratio float64) (i int, ok bool) {
	i = sort.Search(len(slots), func(k int) bool {
		return ratio > slots[k]
	})
	return i - 1, i > 0
}

// worse reports whether a cannot compress better than b because it uses
// the same match finder with a smaller dictionary and fewer fast bytes.
func worse(a, b *lzma.EncoderConfig) bool {
	if a.Algo != b.Algo || a.BtMode != b.BtMode ||
		a.NumHashBytes != b.NumHashBytes {
		return false
	}
	return a.DictSize <= b.DictSize && a.FB <= b.FB
}

// findPresets benchmarks the configurations in random order and returns
// the fastest configuration for every slot.
func findPresets(slots []float64, configs []lzma.EncoderConfig) []*preset {
	if len(slots) == 0 {
		xlog.Fatal("no slots defined")
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(slots)))
	fmt.Printf("slots %.3f\n", slots)

	queue := make([]candidate, len(configs))
	for i, j := range rand.Perm(len(configs)) {
		queue[i].cfg = configs[j]
	}
	presets := make([]*preset, len(slots))
	for i := range queue {
		c := &queue[i]
		if c.skip {
			continue
		}
		result := testing.Benchmark(tuning.Benchmark(c.cfg))
		fmt.Printf("%d/%d %s\n", i+1, len(queue), result)
		si, ok := slot(slots, ratio(result))
		if !ok {
			for k := i + 1; k < len(queue); k++ {
				if worse(&queue[k].cfg, &c.cfg) {
					queue[k].skip = true
				}
			}
			continue
		}
		if p := presets[si]; p != nil &&
			mbPerSec(result) <= mbPerSec(p.result) {
			fmt.Printf("slot %d: not faster\n", si+1)
			continue
		}
		presets[si] = &preset{cfg: c.cfg, result: result}
		fmt.Printf("slot %d: update\n", si+1)
		pretty.Println(c.cfg)
	}
	return presets
}

func printPresets(presets []*preset) {
	fmt.Printf("\n\n### Result ###\n")
	for si, p := range presets {
		fmt.Println()
		if p == nil {
			fmt.Printf("slot %d: not present\n", si+1)
			continue
		}
		fmt.Printf("slot %d:\t%.3f c/u\t%.2f MB/s\n",
			si+1, ratio(p.result), mbPerSec(p.result))
		pretty.Println(p.cfg)
	}
}

func makeConfig(algo, btMode, hashBytes, fb int, dictSize uint32) lzma.EncoderConfig {
	cfg := lzma.DefaultEncoderConfig()
	cfg.DictSize = dictSize
	cfg.Algo = algo
	cfg.BtMode = btMode
	cfg.NumHashBytes = hashBytes
	cfg.FB = fb
	cfg.ApplyDefaults()
	return cfg
}

func appendHashChainConfigs(x []lzma.EncoderConfig) (y []lzma.EncoderConfig) {
	y = x
	for dictExp := 16; dictExp <= 24; dictExp++ {
		for _, fb := range []int{8, 16, 32, 64} {
			cfg := makeConfig(0, 0, 4, fb, 1<<dictExp)
			y = append(y, cfg)
		}
	}
	return y
}

func appendBinTreeConfigs(x []lzma.EncoderConfig) (y []lzma.EncoderConfig) {
	y = x
	for dictExp := 16; dictExp <= 24; dictExp++ {
		for _, hashBytes := range []int{2, 3, 4} {
			for _, fb := range []int{16, 32, 64, 128, 273} {
				cfg := makeConfig(1, 1, hashBytes, fb,
					1<<dictExp)
				y = append(y, cfg)
			}
		}
	}
	return y
}

func main() {
	testing.Init()
	configs := appendHashChainConfigs(nil)
	configs = appendBinTreeConfigs(configs)

	slots := []float64{0.34, 0.32, 0.30, 0.29, 0.28,
		0.27, 0.26, 0.25, 0.24}
	printPresets(findPresets(slots, configs))
}
