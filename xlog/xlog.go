// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

/*
Package xlog provides a Logger interface and supporting functions
to support control over debug output.

The Go standard library supports a log package that provides an interface to
log messages. Unfortunately it doesn't support the enabling or disabling of
such output. Calling the function on a nil Logger pointer, results in a panic.
During the development of the lzma package I needed a way to
disable and enable debug output in a package. A possibility would be to
io.Discard, but it would do all the formatting before used.

The Logger interface is simple and it is supported by the log.Logger type. The
package provides Print, Printf, Println for the interface. If the Logger
interface is nil, the functions don't do anything.

In addition the package maintains a standard logger for command line
programs. The functions Warn, Warnf, Debug and Debugf write to it, and the
flags Lnowarn, Lnoprint and Lnodebug suppress the respective output.
*/
package xlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// This package requires types to support this interface. The log.Logger type
// supports this interface.
type Logger interface {
	Output(calldepth int, s string) error
}

// Print outputs the arguments using the logger. If the logger is nil nothing
// will be printed.
func Print(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprint(v...))
	}
}

// Printf prints the arguments using the format string. If the logger argument
// is nil nothing will be printed.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println prints the arguments and adds a newline. If the logger argument is
// nil nothing will be printed.
func Println(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintln(v...))
	}
}

// Flags for the standard logger. The lower bits are passed to the
// log.Logger.
const (
	Ldate         = log.Ldate
	Ltime         = log.Ltime
	Lmicroseconds = log.Lmicroseconds
	Llongfile     = log.Llongfile
	Lshortfile    = log.Lshortfile
	LUTC          = log.LUTC
	Lstdflags     = log.LstdFlags

	// suppress warnings
	Lnowarn = 1 << (iota + 10)
	// suppress Print output
	Lnoprint
	// suppress debug output
	Lnodebug
)

// the standard logger
var (
	mu    sync.Mutex
	std   = log.New(os.Stderr, "", 0)
	flags = Lnodebug
)

// SetOutput sets the output of the standard logger.
func SetOutput(w io.Writer) {
	mu.Lock()
	std.SetOutput(w)
	mu.Unlock()
}

// SetPrefix sets the prefix of the standard logger.
func SetPrefix(prefix string) {
	mu.Lock()
	std.SetPrefix(prefix)
	mu.Unlock()
}

// SetFlags sets the flags of the standard logger.
func SetFlags(f int) {
	mu.Lock()
	flags = f
	std.SetFlags(f & (Lnowarn - 1))
	mu.Unlock()
}

// Flags returns the flags of the standard logger.
func Flags() int {
	mu.Lock()
	defer mu.Unlock()
	return flags
}

// output writes s unless one of the suppress flags is set.
func output(suppress int, s string) {
	mu.Lock()
	f := flags
	mu.Unlock()
	if f&suppress != 0 {
		return
	}
	std.Output(3, s)
}

// Warn writes a warning to the standard logger.
func Warn(v ...interface{}) { output(Lnowarn, fmt.Sprint(v...)) }

// Warnf writes a formatted warning to the standard logger.
func Warnf(format string, v ...interface{}) {
	output(Lnowarn, fmt.Sprintf(format, v...))
}

// Debug writes debug output to the standard logger. Debug output is
// suppressed by default.
func Debug(v ...interface{}) { output(Lnodebug, fmt.Sprint(v...)) }

// Debugf writes formatted debug output to the standard logger.
func Debugf(format string, v ...interface{}) {
	output(Lnodebug, fmt.Sprintf(format, v...))
}

// Fatal writes the arguments to the standard logger and exits the
// program with status 1.
func Fatal(v ...interface{}) {
	std.Output(2, fmt.Sprint(v...))
	os.Exit(1)
}

// Fatalf writes the formatted arguments and exits the program with
// status 1.
func Fatalf(format string, v ...interface{}) {
	std.Output(2, fmt.Sprintf(format, v...))
	os.Exit(1)
}
