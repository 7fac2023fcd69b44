package emulator

import "errors"

var (
	ErrArchUnsupported = errors.New("architecture unsupported")
	ErrArchMismatch    = errors.New("architecture mismatch")
	ErrMemUnmapped     = errors.New("memory unmapped")
	ErrMemMapped       = errors.New("memory already mapped")
	ErrMemArgument     = errors.New("memory argument invalid")
	ErrRegInvalid      = errors.New("register invalid")
	ErrNotImplemented  = errors.New("not implemented")
)
