package x86

import (
	"fmt"
	"slices"

	"golang.org/x/arch/x86/x86asm"

	"github.com/wnxd/microx86/arch"
)

type disassembler struct {
	mode   int
	syntax arch.Syntax
}

func newDisassembler(bits int, syntax arch.Syntax) *disassembler {
	return &disassembler{mode: bits, syntax: syntax}
}

func (d *disassembler) Disasm(code []byte, addr uint64) (arch.Inst, error) {
	inst, err := x86asm.Decode(code, d.mode)
	if err != nil {
		return arch.Inst{}, fmt.Errorf("%w at %#x: %w", arch.ErrDisassemble, addr, err)
	}
	var text string
	switch d.syntax {
	case arch.SYNTAX_GNU:
		text = x86asm.GNUSyntax(inst, addr, nil)
	default:
		text = x86asm.IntelSyntax(inst, addr, nil)
	}
	return arch.Inst{
		Addr:  addr,
		Bytes: slices.Clone(code[:inst.Len]),
		Text:  text,
	}, nil
}

func (d *disassembler) DisasmAll(code []byte, addr uint64, count int) ([]arch.Inst, error) {
	var insts []arch.Inst
	for len(code) > 0 && (count <= 0 || len(insts) < count) {
		inst, err := d.Disasm(code, addr)
		if err != nil {
			return insts, err
		}
		insts = append(insts, inst)
		code = code[inst.Size():]
		addr += uint64(inst.Size())
	}
	return insts, nil
}
