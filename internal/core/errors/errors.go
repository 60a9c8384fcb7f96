// Package errors provides module-scoped error values identified by a
// stable (module, code) pair so they can be matched after crossing the
// RPC boundary.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// UnknownModule is reported for errors that were not registered.
	UnknownModule = "unknown"

	// CodeNoError is reserved and cannot be registered.
	CodeNoError = 0
)

var errUnknown = New(UnknownModule, 1, "unknown error")

// Re-exported so callers can use this package in place of errors.
var (
	As     = errors.As
	Is     = errors.Is
	Unwrap = errors.Unwrap
)

var registry sync.Map

type codedError struct {
	module string
	code   uint32
	msg    string
}

func (e *codedError) Error() string {
	return e.msg
}

type contextError struct {
	err     error
	context string
}

func (e *contextError) Error() string {
	return fmt.Sprintf("%v: %s", e.err, e.context)
}

func (e *contextError) Unwrap() error {
	return e.err
}

// New registers and returns a coded error.
//
// The (module, code) pair must be unique and code must not be
// CodeNoError, otherwise New panics.
func New(module string, code uint32, msg string) error {
	if code == CodeNoError {
		panic(fmt.Errorf("errors: code %d is reserved", CodeNoError))
	}

	e := &codedError{module: module, code: code, msg: msg}

	key := registryKey(module, code)
	if prev, loaded := registry.LoadOrStore(key, e); loaded {
		panic(fmt.Errorf("errors: already registered: %s (existing: %s)", key, prev))
	}
	return e
}

// WithContext attaches a message to err without hiding it from Is/As.
func WithContext(err error, context string) error {
	if context == "" {
		return err
	}
	return &contextError{err: err, context: context}
}

// Context returns the message attached by WithContext, if any.
func Context(err error) string {
	var ce *contextError
	if As(err, &ce) {
		return ce.context
	}
	return ""
}

// FromCode rebuilds a registered error from its module, code and
// rendered message. Unknown pairs yield a fresh unregistered error
// carrying message.
func FromCode(module string, code uint32, message string) error {
	v, ok := registry.Load(registryKey(module, code))
	if !ok || v == errUnknown {
		return &codedError{module: module, code: code, msg: message}
	}
	err := v.(error)
	if message == err.Error() {
		return err
	}
	return WithContext(err, strings.TrimPrefix(message, err.Error()+": "))
}

// Code returns the module and code of err. A nil error reports
// CodeNoError; unregistered errors report the unknown module.
func Code(err error) (string, uint32) {
	if err == nil {
		return "", CodeNoError
	}

	var ce *codedError
	if !As(err, &ce) {
		ce = errUnknown.(*codedError)
	}
	return ce.module, ce.code
}

func registryKey(module string, code uint32) string {
	return fmt.Sprintf("%s-%d", module, code)
}
