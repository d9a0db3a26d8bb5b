// Package errcode defines the stable error codes surfaced by the mpa
// server and client engines, and the *Error type that carries one of
// them as a Go error.
package errcode

import "fmt"

// Code is a stable negative error code returned by public entry points.
// Values never change once assigned; new codes are only ever appended.
type Code int

// Error codes surfaced to callers.
const (
	Other               Code = -1
	ServerNotAvailable  Code = -2
	ReachedMaxNameIndex Code = -3
	FileIO              Code = -4
	Timeout             Code = -5
	InvalidArg          Code = -6
	NotConnected        Code = -7
	CtrlNotAvailable    Code = -8
	InfoNotAvailable    Code = -9
	ChannelOOB          Code = -10
)

var strings = map[Code]string{
	Other:               "other error",
	ServerNotAvailable:  "server not available",
	ReachedMaxNameIndex: "reached max name index",
	FileIO:              "file I/O error",
	Timeout:             "timed out",
	InvalidArg:          "invalid argument",
	NotConnected:        "not connected",
	CtrlNotAvailable:    "control pipe not available",
	InfoNotAvailable:    "info descriptor not available",
	ChannelOOB:          "channel index out of bounds",
}

// String returns the single-line human-readable description of c.
func (c Code) String() string {
	if s, ok := strings[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown error code %d", int(c))
}

// Error carries a Code and implements the error interface, so a coded
// failure can be returned as an error and compared with errors.Is.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code.String(), e.Msg)
}

// Is reports whether target is an *Error with the same Code, so callers
// can write errors.Is(err, errcode.New(errcode.Timeout, "")).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Code == e.Code
}

// New builds an *Error carrying code and an optional detail message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap builds an *Error carrying code and wraps err's message as detail.
func Wrap(code Code, err error) *Error {
	if err == nil {
		return New(code, "")
	}
	return New(code, err.Error())
}
