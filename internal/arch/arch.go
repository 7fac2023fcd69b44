package arch

import (
	"fmt"
	"log/slog"

	"github.com/wnxd/microx86/arch"
	"github.com/wnxd/microx86/emulator"
)

type Impl interface {
	arch.Arch
	NewDisassembler(arch.Syntax) (arch.Disassembler, error)
	NewRegisters(emulator.Emulator) (*arch.RegisterManager, error)
}

type Arch struct {
	impl   Impl
	typ    emulator.Arch
	opts   arch.Options
	emu    emulator.Emulator
	ownEmu bool
	disasm arch.Disassembler
	asm    arch.Assembler
	regs   *arch.RegisterManager
}

func (a *Arch) Init(impl Impl, typ emulator.Arch, opts ...arch.Option) error {
	a.impl = impl
	a.typ = typ
	a.opts = arch.NewOptions(opts...)
	if a.opts.Emulator != nil && a.opts.Emulator.Arch() != typ {
		return fmt.Errorf("%w: want %s, got %s", emulator.ErrArchMismatch, typ, a.opts.Emulator.Arch())
	}
	return nil
}

func (a *Arch) Close() error {
	var err error
	if a.ownEmu && a.emu != nil {
		err = a.emu.Close()
	}
	a.emu, a.ownEmu = nil, false
	a.disasm, a.asm, a.regs = nil, nil, nil
	return err
}

func (a *Arch) Type() emulator.Arch {
	return a.typ
}

func (a *Arch) Bits() int {
	return a.typ.Bits()
}

func (a *Arch) Endian() emulator.ByteOrder {
	return emulator.BO_LITTLE_ENDIAN
}

func (a *Arch) Logger() *slog.Logger {
	return a.opts.Logger
}

func (a *Arch) Emulator() (emulator.Emulator, error) {
	if a.emu != nil {
		return a.emu, nil
	}
	if a.opts.Emulator != nil {
		a.emu = a.opts.Emulator
		return a.emu, nil
	}
	emu, err := a.opts.EmulatorCtor(a.typ)
	if err != nil {
		return nil, err
	}
	a.emu, a.ownEmu = emu, true
	a.opts.Logger.Debug("emulator created", "arch", a.typ)
	return a.emu, nil
}

func (a *Arch) Disassembler() (arch.Disassembler, error) {
	if a.disasm == nil {
		disasm, err := a.impl.NewDisassembler(a.opts.Syntax)
		if err != nil {
			return nil, err
		}
		a.disasm = disasm
	}
	return a.disasm, nil
}

func (a *Arch) Assembler() (arch.Assembler, error) {
	if a.asm == nil {
		asm, err := arch.NewAssembler(a.typ)
		if err != nil {
			return nil, err
		}
		a.asm = asm
	}
	return a.asm, nil
}

func (a *Arch) Registers() (*arch.RegisterManager, error) {
	if a.regs == nil {
		emu, err := a.impl.Emulator()
		if err != nil {
			return nil, err
		}
		regs, err := a.impl.NewRegisters(emu)
		if err != nil {
			return nil, err
		}
		a.regs = regs
	}
	return a.regs, nil
}
