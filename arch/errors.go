package arch

import "errors"

var (
	ErrArchUnsupported      = errors.New("architecture unsupported")
	ErrRegisterNotFound     = errors.New("register not found")
	ErrRegisterDuplicate    = errors.New("register name duplicated")
	ErrAssemblerUnavailable = errors.New("assembler unavailable")
	ErrDisassemble          = errors.New("disassemble failed")
)
