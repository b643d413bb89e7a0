package sched

import (
	"errors"

	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	ErrPolicyUnknown    = errors.New(f("unknown scheduling policy"))
	ErrParameterUnknown = errors.New(f("unknown scheduler parameter"))
	ErrParameterValue   = errors.New(f("scheduler parameter must be positive"))
	ErrNotReady         = errors.New(f("process is not ready"))
)
