// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package main

import "os"

// termsigs are the signals handled by removeOnSignal.
var termsigs = []os.Signal{os.Interrupt}
