package io

import (
	"errors"

	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	// Device errors
	ErrDeviceFull  = errors.New(f("device full"))
	ErrInputEnd    = errors.New(f("end of input"))
	ErrInputSyntax = errors.New(f("input is not an integer"))
	ErrNoInput     = errors.New(f("device has no input"))
	ErrNoOutput    = errors.New(f("device has no output"))
)
