// Package soft is a pure-Go x86 emulation core. It keeps a sparse page
// memory and an aliasing register file but executes no instructions.
// On ARCH_X86_64 a 32-bit general purpose register write zero-extends
// into the 64-bit register, as the hardware does.
package soft

import (
	"fmt"
	"maps"
	"slices"
	"unsafe"

	"github.com/wnxd/microx86/emulator"
)

const PAGE_SIZE = 0x1000

var (
	_ = emulator.Register(emulator.ARCH_A8086, New)
	_ = emulator.Register(emulator.ARCH_X86, New)
	_ = emulator.Register(emulator.ARCH_X86_64, New)
)

type page struct {
	data [PAGE_SIZE]byte
	prot emulator.MemProt
}

type Emulator struct {
	arch  emulator.Arch
	pages map[uint64]*page
	regs  regFile
}

func New(arch emulator.Arch) (emulator.Emulator, error) {
	switch arch {
	case emulator.ARCH_A8086, emulator.ARCH_X86, emulator.ARCH_X86_64:
	default:
		return nil, emulator.ErrArchUnsupported
	}
	return &Emulator{
		arch:  arch,
		pages: make(map[uint64]*page),
		regs:  newRegFile(arch),
	}, nil
}

func (e *Emulator) Close() error {
	clear(e.pages)
	return nil
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

func checkRange(addr, size uint64) error {
	if size == 0 || addr%PAGE_SIZE != 0 || size%PAGE_SIZE != 0 || (addr+size != 0 && addr+size < addr) {
		return fmt.Errorf("%w: addr %#x size %#x", emulator.ErrMemArgument, addr, size)
	}
	return nil
}

func (e *Emulator) MemMap(addr, size uint64, prot emulator.MemProt) error {
	if err := checkRange(addr, size); err != nil {
		return err
	}
	for off := uint64(0); off < size; off += PAGE_SIZE {
		if _, ok := e.pages[addr+off]; ok {
			return fmt.Errorf("%w: %#x", emulator.ErrMemMapped, addr+off)
		}
	}
	for off := uint64(0); off < size; off += PAGE_SIZE {
		e.pages[addr+off] = &page{prot: prot}
	}
	return nil
}

func (e *Emulator) MemUnmap(addr, size uint64) error {
	if err := checkRange(addr, size); err != nil {
		return err
	}
	if err := e.checkMapped(addr, size); err != nil {
		return err
	}
	for off := uint64(0); off < size; off += PAGE_SIZE {
		delete(e.pages, addr+off)
	}
	return nil
}

func (e *Emulator) MemProtect(addr, size uint64, prot emulator.MemProt) error {
	if err := checkRange(addr, size); err != nil {
		return err
	}
	if err := e.checkMapped(addr, size); err != nil {
		return err
	}
	for off := uint64(0); off < size; off += PAGE_SIZE {
		e.pages[addr+off].prot = prot
	}
	return nil
}

func (e *Emulator) checkMapped(addr, size uint64) error {
	for off := uint64(0); off < size; off += PAGE_SIZE {
		if _, ok := e.pages[addr+off]; !ok {
			return fmt.Errorf("%w: %#x", emulator.ErrMemUnmapped, addr+off)
		}
	}
	return nil
}

func (e *Emulator) MemRegions() ([]emulator.MemRegion, error) {
	var regions []emulator.MemRegion
	for _, addr := range slices.Sorted(maps.Keys(e.pages)) {
		prot := e.pages[addr].prot
		if n := len(regions); n > 0 && regions[n-1].End() == addr && regions[n-1].Prot == prot {
			regions[n-1].Size += PAGE_SIZE
			continue
		}
		regions = append(regions, emulator.MemRegion{Addr: addr, Size: PAGE_SIZE, Prot: prot})
	}
	return regions, nil
}

func (e *Emulator) MemRead(addr, size uint64) ([]byte, error) {
	data := make([]byte, size)
	return data, e.copyMem(addr, data, false)
}

func (e *Emulator) MemWrite(addr uint64, data []byte) error {
	return e.copyMem(addr, data, true)
}

func (e *Emulator) MemReadPtr(addr, size uint64, ptr unsafe.Pointer) error {
	return e.copyMem(addr, unsafe.Slice((*byte)(ptr), size), false)
}

func (e *Emulator) MemWritePtr(addr, size uint64, ptr unsafe.Pointer) error {
	return e.copyMem(addr, unsafe.Slice((*byte)(ptr), size), true)
}

func (e *Emulator) copyMem(addr uint64, buf []byte, write bool) error {
	if err := e.checkMapped(emulator.AlignDown(addr, PAGE_SIZE), emulator.Align(addr+uint64(len(buf)), PAGE_SIZE)-emulator.AlignDown(addr, PAGE_SIZE)); err != nil {
		return err
	}
	for len(buf) > 0 {
		p := e.pages[emulator.AlignDown(addr, PAGE_SIZE)]
		off := addr % PAGE_SIZE
		var n int
		if write {
			n = copy(p.data[off:], buf)
		} else {
			n = copy(buf, p.data[off:])
		}
		buf = buf[n:]
		addr += uint64(n)
	}
	return nil
}

func (e *Emulator) RegRead(reg emulator.Reg) (uint64, error) {
	return e.regs.read(reg)
}

func (e *Emulator) RegWrite(reg emulator.Reg, value uint64) error {
	return e.regs.write(reg, value)
}

func (e *Emulator) RegReadPtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	return e.regs.readPtr(reg, ptr)
}

func (e *Emulator) RegWritePtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	return e.regs.writePtr(reg, ptr)
}

func (e *Emulator) RegReadBatch(regs ...emulator.Reg) ([]uint64, error) {
	vals := make([]uint64, len(regs))
	for i, reg := range regs {
		val, err := e.regs.read(reg)
		if err != nil {
			return nil, err
		}
		vals[i] = val
	}
	return vals, nil
}

func (e *Emulator) RegWriteBatch(regs []emulator.Reg, vals []uint64) error {
	if len(regs) != len(vals) {
		return emulator.ErrRegInvalid
	}
	for i, reg := range regs {
		if err := e.regs.write(reg, vals[i]); err != nil {
			return err
		}
	}
	return nil
}
