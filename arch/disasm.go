package arch

import (
	"github.com/wnxd/microx86/emulator"
)

type Inst struct {
	Addr  uint64
	Bytes []byte
	Text  string
}

func (i Inst) Size() int {
	return len(i.Bytes)
}

type Disassembler interface {
	Disasm(code []byte, addr uint64) (Inst, error)
	DisasmAll(code []byte, addr uint64, count int) ([]Inst, error)
}

type Assembler interface {
	Asm(code string, addr uint64) ([]byte, error)
}

type AsmCtor func(emulator.Arch) (Assembler, error)

var asmMap = make(map[emulator.Arch]AsmCtor)

func RegisterAssembler(arch emulator.Arch, ctor AsmCtor) bool {
	if _, ok := asmMap[arch]; ok {
		return false
	}
	asmMap[arch] = ctor
	return true
}

func NewAssembler(arch emulator.Arch) (Assembler, error) {
	if ctor, ok := asmMap[arch]; ok {
		return ctor(arch)
	}
	return nil, ErrAssemblerUnavailable
}
