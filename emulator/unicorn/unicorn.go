//go:build unicorn
// +build unicorn

// Package unicorn backs emulator.Emulator with the unicorn engine.
package unicorn

import (
	"fmt"
	"unsafe"

	uc "github.com/unicorn-engine/unicorn/bindings/go/unicorn"

	"github.com/wnxd/microx86/emulator"
	"github.com/wnxd/microx86/emulator/x86"
)

const PAGE_SIZE = 0x1000

// Compile-time check that the identifiers in emulator/x86 follow the
// engine's numbering.
var (
	_ = [1]struct{}{}[x86.X86_REG_EFLAGS-uc.X86_REG_EFLAGS]
	_ = [1]struct{}{}[x86.X86_REG_SS-uc.X86_REG_SS]
	_ = [1]struct{}{}[x86.X86_REG_CR0-uc.X86_REG_CR0]
	_ = [1]struct{}{}[x86.X86_REG_R8-uc.X86_REG_R8]
	_ = [1]struct{}{}[x86.X86_REG_ST0-uc.X86_REG_ST0]
	_ = [1]struct{}{}[x86.X86_REG_R15W-uc.X86_REG_R15W]
	_ = [1]struct{}{}[x86.X86_REG_GDTR-uc.X86_REG_GDTR]
	_ = [1]struct{}{}[x86.X86_REG_MSR-uc.X86_REG_MSR]
	_ = [1]struct{}{}[x86.X86_REG_GS_BASE-uc.X86_REG_GS_BASE]
)

var (
	_ = emulator.Register(emulator.ARCH_A8086, New)
	_ = emulator.Register(emulator.ARCH_X86, New)
	_ = emulator.Register(emulator.ARCH_X86_64, New)
)

type mmrAccess interface {
	RegReadMmr(reg int) (*uc.X86Mmr, error)
	RegWriteMmr(reg int, value *uc.X86Mmr) error
}

type msrAccess interface {
	RegReadX86Msr(reg uint64) (uint64, error)
	RegWriteX86Msr(reg uint64, val uint64) error
}

type Emulator struct {
	arch emulator.Arch
	mu   uc.Unicorn
}

func New(arch emulator.Arch) (emulator.Emulator, error) {
	var mode int
	switch arch {
	case emulator.ARCH_A8086:
		mode = uc.MODE_16
	case emulator.ARCH_X86:
		mode = uc.MODE_32
	case emulator.ARCH_X86_64:
		mode = uc.MODE_64
	default:
		return nil, emulator.ErrArchUnsupported
	}
	mu, err := uc.NewUnicorn(uc.ARCH_X86, mode)
	if err != nil {
		return nil, fmt.Errorf("create unicorn: %w", err)
	}
	return &Emulator{arch: arch, mu: mu}, nil
}

func (e *Emulator) Unicorn() uc.Unicorn {
	return e.mu
}

func (e *Emulator) Close() error {
	return e.mu.Close()
}

func (e *Emulator) Arch() emulator.Arch {
	return e.arch
}

func (e *Emulator) ByteOrder() emulator.ByteOrder {
	return emulator.BO_LITTLE_ENDIAN
}

func (e *Emulator) PageSize() uint64 {
	return PAGE_SIZE
}

func toProt(prot emulator.MemProt) int {
	var p int
	if prot&emulator.MEM_PROT_READ != 0 {
		p |= uc.PROT_READ
	}
	if prot&emulator.MEM_PROT_WRITE != 0 {
		p |= uc.PROT_WRITE
	}
	if prot&emulator.MEM_PROT_EXEC != 0 {
		p |= uc.PROT_EXEC
	}
	return p
}

func fromProt(p int) emulator.MemProt {
	var prot emulator.MemProt
	if p&uc.PROT_READ != 0 {
		prot |= emulator.MEM_PROT_READ
	}
	if p&uc.PROT_WRITE != 0 {
		prot |= emulator.MEM_PROT_WRITE
	}
	if p&uc.PROT_EXEC != 0 {
		prot |= emulator.MEM_PROT_EXEC
	}
	return prot
}

func (e *Emulator) MemMap(addr, size uint64, prot emulator.MemProt) error {
	return e.mu.MemMapProt(addr, size, toProt(prot))
}

func (e *Emulator) MemUnmap(addr, size uint64) error {
	return e.mu.MemUnmap(addr, size)
}

func (e *Emulator) MemProtect(addr, size uint64, prot emulator.MemProt) error {
	return e.mu.MemProtect(addr, size, toProt(prot))
}

func (e *Emulator) MemRegions() ([]emulator.MemRegion, error) {
	regions, err := e.mu.MemRegions()
	if err != nil {
		return nil, err
	}
	out := make([]emulator.MemRegion, len(regions))
	for i, r := range regions {
		// unicorn reports an inclusive end address.
		out[i] = emulator.MemRegion{Addr: r.Begin, Size: r.End - r.Begin + 1, Prot: fromProt(r.Prot)}
	}
	return out, nil
}

func (e *Emulator) MemRead(addr, size uint64) ([]byte, error) {
	return e.mu.MemRead(addr, size)
}

func (e *Emulator) MemWrite(addr uint64, data []byte) error {
	return e.mu.MemWrite(addr, data)
}

func (e *Emulator) MemReadPtr(addr, size uint64, ptr unsafe.Pointer) error {
	data, err := e.mu.MemRead(addr, size)
	if err != nil {
		return err
	}
	copy(unsafe.Slice((*byte)(ptr), size), data)
	return nil
}

func (e *Emulator) MemWritePtr(addr, size uint64, ptr unsafe.Pointer) error {
	return e.mu.MemWrite(addr, unsafe.Slice((*byte)(ptr), size))
}

func (e *Emulator) RegRead(reg emulator.Reg) (uint64, error) {
	return e.mu.RegRead(int(reg))
}

func (e *Emulator) RegWrite(reg emulator.Reg, value uint64) error {
	return e.mu.RegWrite(int(reg), value)
}

func (e *Emulator) RegReadPtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	switch {
	case x86.IsMmr(reg):
		acc, ok := e.mu.(mmrAccess)
		if !ok {
			return emulator.ErrNotImplemented
		}
		val, err := acc.RegReadMmr(int(reg))
		if err != nil {
			return err
		}
		*(*x86.Mmr)(ptr) = x86.Mmr{Selector: val.Selector, Base: val.Base, Limit: val.Limit, Flags: val.Flags}
		return nil
	case reg == x86.X86_REG_MSR:
		acc, ok := e.mu.(msrAccess)
		if !ok {
			return emulator.ErrNotImplemented
		}
		msr := (*x86.Msr)(ptr)
		val, err := acc.RegReadX86Msr(uint64(msr.ID))
		if err != nil {
			return err
		}
		msr.Value = val
		return nil
	}
	val, err := e.mu.RegRead(int(reg))
	if err != nil {
		return err
	}
	*(*uint64)(ptr) = val
	return nil
}

func (e *Emulator) RegWritePtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	switch {
	case x86.IsMmr(reg):
		acc, ok := e.mu.(mmrAccess)
		if !ok {
			return emulator.ErrNotImplemented
		}
		val := (*x86.Mmr)(ptr)
		return acc.RegWriteMmr(int(reg), &uc.X86Mmr{Selector: val.Selector, Base: val.Base, Limit: val.Limit, Flags: val.Flags})
	case reg == x86.X86_REG_MSR:
		acc, ok := e.mu.(msrAccess)
		if !ok {
			return emulator.ErrNotImplemented
		}
		msr := (*x86.Msr)(ptr)
		return acc.RegWriteX86Msr(uint64(msr.ID), msr.Value)
	}
	return e.mu.RegWrite(int(reg), *(*uint64)(ptr))
}

func (e *Emulator) RegReadBatch(regs ...emulator.Reg) ([]uint64, error) {
	ids := make([]int, len(regs))
	for i, reg := range regs {
		ids[i] = int(reg)
	}
	return e.mu.RegReadBatch(ids)
}

func (e *Emulator) RegWriteBatch(regs []emulator.Reg, vals []uint64) error {
	ids := make([]int, len(regs))
	for i, reg := range regs {
		ids[i] = int(reg)
	}
	return e.mu.RegWriteBatch(ids, vals)
}
