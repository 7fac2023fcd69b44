package arch

import (
	"io"

	"github.com/wnxd/microx86/emulator"
)

type Arch interface {
	io.Closer
	Type() emulator.Arch
	Bits() int
	Endian() emulator.ByteOrder
	PC() string
	SP() string
	Emulator() (emulator.Emulator, error)
	Disassembler() (Disassembler, error)
	Assembler() (Assembler, error)
	Registers() (*RegisterManager, error)
}

type ArchCtor func(...Option) (Arch, error)

var archMap = make(map[emulator.Arch]ArchCtor)

func Register(arch emulator.Arch, ctor ArchCtor) bool {
	if _, ok := archMap[arch]; ok {
		return false
	}
	archMap[arch] = ctor
	return true
}

func New(arch emulator.Arch, opts ...Option) (Arch, error) {
	if ctor, ok := archMap[arch]; ok {
		return ctor(opts...)
	}
	return nil, ErrArchUnsupported
}
