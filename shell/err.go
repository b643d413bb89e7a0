package shell

import (
	"errors"

	"github.com/ezrec/sosim/translate"
)

var f = translate.From

var (
	ErrCommandUnknown = errors.New(f("unknown command"))
	ErrUsage          = errors.New(f("usage"))
)
