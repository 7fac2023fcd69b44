package x86

import "errors"

var (
	ErrGDTIndex     = errors.New("gdt index out of range")
	ErrGDTConfig    = errors.New("gdt config invalid")
	ErrGDTEntrySize = errors.New("gdt entry must be 8 bytes")
)
