// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

//go:build !windows

package main

import (
	"os"
	"syscall"
)

// termsigs are the signals that make removeOnSignal delete the
// temporary output file.
var termsigs = []os.Signal{
	syscall.SIGHUP,
	syscall.SIGINT,
	syscall.SIGPIPE,
	syscall.SIGTERM,
	syscall.SIGXFSZ,
}
