package x86

import (
	"fmt"
	"strings"

	"github.com/wnxd/microx86/arch"
	"github.com/wnxd/microx86/emulator"
	internal "github.com/wnxd/microx86/internal/arch"
)

var (
	_ = arch.Register(emulator.ARCH_A8086, func(opts ...arch.Option) (arch.Arch, error) { return NewA8086(opts...) })
	_ = arch.Register(emulator.ARCH_X86, func(opts ...arch.Option) (arch.Arch, error) { return NewX86(opts...) })
	_ = arch.Register(emulator.ARCH_X86_64, func(opts ...arch.Option) (arch.Arch, error) { return NewX8664(opts...) })
)

type intel struct {
	internal.Arch
	msr *MsrManager
}

func (a *intel) NewDisassembler(syntax arch.Syntax) (arch.Disassembler, error) {
	return newDisassembler(a.Bits(), syntax), nil
}

func (a *intel) Close() error {
	a.msr = nil
	return a.Arch.Close()
}

func (a *intel) Msr() (*MsrManager, error) {
	if a.msr == nil {
		emu, err := a.Emulator()
		if err != nil {
			return nil, err
		}
		a.msr = NewMsrManager(emu)
	}
	return a.msr, nil
}

func (a *intel) NewGDTManager(opts ...GDTOption) (*GDTManager, error) {
	emu, err := a.Emulator()
	if err != nil {
		return nil, err
	}
	regs, err := a.Registers()
	if err != nil {
		return nil, err
	}
	opts = append([]GDTOption{WithGDTLogger(a.Logger())}, opts...)
	return NewGDTManager(emu, regs, opts...)
}

type A8086 struct {
	intel
}

func NewA8086(opts ...arch.Option) (*A8086, error) {
	a := new(A8086)
	if err := a.Init(a, emulator.ARCH_A8086, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *A8086) PC() string {
	return "ip"
}

func (a *A8086) SP() string {
	return "sp"
}

func (a *A8086) NewRegisters(emu emulator.Emulator) (*arch.RegisterManager, error) {
	return arch.NewRegisterManager(emu, regMapA8086, a.PC(), a.SP())
}

type X86 struct {
	intel
}

func NewX86(opts ...arch.Option) (*X86, error) {
	a := new(X86)
	if err := a.Init(a, emulator.ARCH_X86, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *X86) PC() string {
	return "eip"
}

func (a *X86) SP() string {
	return "esp"
}

func (a *X86) NewRegisters(emu emulator.Emulator) (*arch.RegisterManager, error) {
	return arch.NewRegisterManager(emu, regMapX86, a.PC(), a.SP())
}

type X8664 struct {
	intel
}

func NewX8664(opts ...arch.Option) (*X8664, error) {
	a := new(X8664)
	if err := a.Init(a, emulator.ARCH_X86_64, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *X8664) PC() string {
	return "rip"
}

func (a *X8664) SP() string {
	return "rsp"
}

func (a *X8664) NewRegisters(emu emulator.Emulator) (*arch.RegisterManager, error) {
	return arch.NewRegisterManager(emu, regMapX8664, a.PC(), a.SP())
}

func (a *X8664) RegBits(reg any) (int, error) {
	switch v := reg.(type) {
	case string:
		r, ok := regMapX8664[strings.ToLower(v)]
		if !ok {
			return 0, fmt.Errorf("%w: %s", arch.ErrRegisterNotFound, v)
		}
		return widthOf(r), nil
	case emulator.Reg:
		return widthOf(v), nil
	}
	return 0, fmt.Errorf("%w: %v", arch.ErrRegisterNotFound, reg)
}
