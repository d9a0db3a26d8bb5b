package server

import (
	"fmt"

	"github.com/fifomesh/mpa/errcode"
)

func newInvalidArg(format string, args ...any) error {
	return errcode.New(errcode.InvalidArg, fmt.Sprintf(format, args...))
}

func newChannelOOB(format string, args ...any) error {
	return errcode.New(errcode.ChannelOOB, fmt.Sprintf(format, args...))
}
