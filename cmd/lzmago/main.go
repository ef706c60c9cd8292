// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

// Command lzmago compresses and decompresses files in the classic .lzma
// format.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kr/pretty"
	"github.com/ogier/pflag"

	"github.com/ulikunitz/lzmacore/lzma"
	"github.com/ulikunitz/lzmacore/xlog"
)

const (
	usageStr = `Usage: lzmago [OPTION]... [FILE]...
Compress or uncompress FILEs in the .lzma format (by default, compress FILES
in place).

  -c, --stdout      write to standard output and don't delete input files
  -d, --decompress  force decompression
  -f, --force       force overwrite of output file
  -h, --help        give this help
  -k, --keep        keep (don't delete) input files
  -q, --quiet       suppress all warnings
  -v, --verbose     verbose mode
  -z, --compress    force compression
  -0 ... -9         compression preset; default is 5
      --fast        use the fast parser
      --dict=SIZE   dictionary size in bytes
      --lc=N        literal context bits (0-8)
      --lp=N        literal position bits (0-4)
      --pb=N        position bits (0-4)
      --fb=N        number of fast bytes (5-273)
      --mf=NAME     match finder: hc4, bt2, bt3 or bt4

With no file, or when FILE is -, read standard input.
`
)

// Preset is the compression level selected by the options -0 to -9.
type Preset int

const defaultPreset Preset = 5

func (p *Preset) filterArg(arg string) string {
	if len(arg) < 2 || arg[0] != '-' || arg[1] == '-' {
		return arg
	}
	buf := new(bytes.Buffer)
	buf.Grow(len(arg))
	for _, c := range arg {
		if '0' <= c && c <= '9' {
			*p = Preset(c - '0')
			continue
		}
		buf.WriteRune(c)
	}
	return buf.String()
}

// valueFlags are the long options that take their value from the
// following argument unless it is given with "=".
var valueFlags = map[string]bool{
	"--dict": true,
	"--lc":   true,
	"--lp":   true,
	"--pb":   true,
	"--fb":   true,
	"--mf":   true,
}

func (p *Preset) filter(args []string) []string {
	out := make([]string, 1, len(args))
	out[0] = args[0]
	value := false
	for i, arg := range args[1:] {
		if value {
			// "--lc -1" keeps -1 as value
			out = append(out, arg)
			value = false
			continue
		}
		if arg == "--" {
			out = append(out, args[1+i:]...)
			break
		}
		value = valueFlags[arg]
		a := p.filterArg(arg)
		// "-5" is removed completely; "-" stays as the stdin path
		if a != "-" || arg == "-" {
			out = append(out, a)
		}
	}
	return out
}

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

// options collects the command line flags.
type options struct {
	stdout     bool
	decompress bool
	force      bool
	keep       bool
	quiet      bool
	verbose    bool
	preset     Preset
	fast       bool
	dictSize   uint
	lc, lp, pb int
	fb         int
	mf         string
}

// encoderConfig converts the options into an encoder configuration.
func (o *options) encoderConfig() (cfg lzma.EncoderConfig, err error) {
	cfg = lzma.DefaultEncoderConfig()
	cfg.Level = int(o.preset)
	cfg.DictSize = uint32(o.dictSize)
	cfg.LC, cfg.LP, cfg.PB, cfg.FB = o.lc, o.lp, o.pb, o.fb
	if o.fast {
		cfg.Algo = 0
	}
	switch o.mf {
	case "":
	case "hc4":
		cfg.BtMode = 0
	case "bt2", "bt3", "bt4":
		cfg.BtMode = 1
		cfg.NumHashBytes = int(o.mf[2] - '0')
	default:
		return cfg, fmt.Errorf("unknown match finder %q", o.mf)
	}
	cfg.ApplyDefaults()
	if err = cfg.Verify(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	// setup logger
	cmdName := filepath.Base(os.Args[0])
	xlog.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	xlog.SetFlags(xlog.Lnodebug)

	// initialize flags
	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	pflag.SetInterspersed(true)
	pflag.Usage = func() { usage(os.Stderr); os.Exit(1) }
	var (
		opts     = options{preset: defaultPreset}
		help     = pflag.BoolP("help", "h", false, "")
		compress = pflag.BoolP("compress", "z", false, "")
	)
	pflag.BoolVarP(&opts.stdout, "stdout", "c", false, "")
	pflag.BoolVarP(&opts.decompress, "decompress", "d", false, "")
	pflag.BoolVarP(&opts.force, "force", "f", false, "")
	pflag.BoolVarP(&opts.keep, "keep", "k", false, "")
	pflag.BoolVarP(&opts.quiet, "quiet", "q", false, "")
	pflag.BoolVarP(&opts.verbose, "verbose", "v", false, "")
	pflag.BoolVar(&opts.fast, "fast", false, "")
	pflag.UintVar(&opts.dictSize, "dict", 0, "")
	pflag.IntVar(&opts.lc, "lc", -1, "")
	pflag.IntVar(&opts.lp, "lp", -1, "")
	pflag.IntVar(&opts.pb, "pb", -1, "")
	pflag.IntVar(&opts.fb, "fb", -1, "")
	pflag.StringVar(&opts.mf, "mf", "", "")

	// process arguments
	os.Args = opts.preset.filter(os.Args)
	pflag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}
	if *compress {
		opts.decompress = false
	}
	switch {
	case opts.quiet:
		xlog.SetFlags(xlog.Lnowarn | xlog.Lnodebug)
	case opts.verbose:
		xlog.SetFlags(0)
	}
	xlog.Debugf("filtered args %v", os.Args)

	if !opts.decompress {
		cfg, err := opts.encoderConfig()
		if err != nil {
			xlog.Fatal(err)
		}
		if opts.verbose {
			xlog.Debug(pretty.Sprint(cfg))
		}
	}

	args := pflag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}
	exit := 0
	for _, path := range args {
		if err := processFile(path, &opts); err != nil {
			exit = 1
		}
	}
	os.Exit(exit)
}
