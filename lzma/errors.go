// SPDX-FileCopyrightText: © 2014 Ulrich Kunitz
//
// SPDX-License-Identifier: BSD-3-Clause

package lzma

import (
	"errors"
	"fmt"
)

// Code is the stable integer identifier of an error class. The values
// are compatible with the result codes of the LZMA SDK.
type Code int

// Error codes
const (
	CodeOK          Code = 0
	CodeData        Code = 1
	CodeMem         Code = 2
	CodeUnsupported Code = 4
	CodeParam       Code = 5
	CodeInputEOF    Code = 6
	CodeOutputEOF   Code = 7
	CodeRead        Code = 8
	CodeWrite       Code = 9
	CodeProgress    Code = 10
	CodeThread      Code = 12
)

var codeNames = map[Code]string{
	CodeOK:          "ok",
	CodeData:        "data error",
	CodeMem:         "memory allocation error",
	CodeUnsupported: "unsupported properties",
	CodeParam:       "incorrect parameter",
	CodeInputEOF:    "unexpected end of input",
	CodeOutputEOF:   "output buffer overflow",
	CodeRead:        "read error",
	CodeWrite:       "write error",
	CodeProgress:    "aborted by progress callback",
	CodeThread:      "thread error",
}

// String returns a short description of the code.
func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is the error type returned by all functions of the package. Two
// errors are considered equal by errors.Is if they share the code.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

// Error returns the error message prefixed with "lzma: ".
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return "lzma: " + msg + ": " + e.Err.Error()
	}
	return "lzma: " + msg
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinel errors for every code. Use errors.Is to test for them.
var (
	ErrData        = &Error{Code: CodeData}
	ErrMem         = &Error{Code: CodeMem}
	ErrUnsupported = &Error{Code: CodeUnsupported}
	ErrParam       = &Error{Code: CodeParam}
	ErrInputEOF    = &Error{Code: CodeInputEOF}
	ErrOutputEOF   = &Error{Code: CodeOutputEOF}
	ErrRead        = &Error{Code: CodeRead}
	ErrWrite       = &Error{Code: CodeWrite}
	ErrProgress    = &Error{Code: CodeProgress}
	ErrThread      = &Error{Code: CodeThread}
)

// newError creates an error with the given code and message.
func newError(c Code, msg string) error {
	return &Error{Code: c, Msg: msg}
}

// errorf creates an error with a formatted message.
func errorf(c Code, format string, a ...interface{}) error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, a...)}
}

// wrapError attaches err as cause to an error of the given code.
func wrapError(c Code, msg string, err error) error {
	return &Error{Code: c, Msg: msg, Err: err}
}

// CodeOf returns the code of err. A nil error returns CodeOK; errors not
// created by this package return -1.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}
