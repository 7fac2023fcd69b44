package emulator

import (
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

type ByteOrder int

const (
	BO_LITTLE_ENDIAN ByteOrder = iota
	BO_BIG_ENDIAN
)

func (bo ByteOrder) String() string {
	if bo == BO_BIG_ENDIAN {
		return "big"
	}
	return "little"
}

type MemProt int

const (
	MEM_PROT_NONE MemProt = 0
	MEM_PROT_READ MemProt = 1 << (iota - 1)
	MEM_PROT_WRITE
	MEM_PROT_EXEC

	MEM_PROT_ALL = MEM_PROT_READ | MEM_PROT_WRITE | MEM_PROT_EXEC
)

type MemRegion struct {
	Addr, Size uint64
	Prot       MemProt
}

func (r MemRegion) End() uint64 {
	return r.Addr + r.Size
}

func (r MemRegion) Contains(addr uint64) bool {
	return addr >= r.Addr && addr-r.Addr < r.Size
}

func Align[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}

func AlignDown[I constraints.Integer](a, b I) I {
	return a &^ (b - 1)
}

func IsMapped(emu Emulator, addr, size uint64) (bool, error) {
	gaps, err := unmappedRanges(emu, addr, size)
	if err != nil {
		return false, err
	}
	return len(gaps) == 0, nil
}

func MapRange(emu Emulator, addr, size uint64, prot MemProt) error {
	gaps, err := unmappedRanges(emu, addr, size)
	if err != nil {
		return err
	}
	for _, gap := range gaps {
		if err = emu.MemMap(gap.Addr, gap.Size, prot); err != nil {
			return err
		}
	}
	return nil
}

func unmappedRanges(emu Emulator, addr, size uint64) ([]MemRegion, error) {
	if size == 0 {
		size = 1
	}
	last := addr + size - 1
	if last < addr {
		return nil, fmt.Errorf("%w: addr %#x size %#x", ErrMemArgument, addr, size)
	}
	regions, err := emu.MemRegions()
	if err != nil {
		return nil, err
	}
	page := emu.PageSize()
	cur := AlignDown(addr, page)
	last = AlignDown(last, page) + (page - 1)
	var gaps []MemRegion
	for {
		i := slices.IndexFunc(regions, func(r MemRegion) bool { return r.Contains(cur) })
		if i != -1 {
			end := regions[i].Addr + (regions[i].Size - 1)
			if end >= last {
				break
			}
			cur = end + 1
			continue
		}
		next := last
		for _, r := range regions {
			if r.Addr > cur && r.Addr-1 < next {
				next = r.Addr - 1
			}
		}
		gaps = append(gaps, MemRegion{Addr: cur, Size: next - cur + 1})
		if next == last {
			break
		}
		cur = next + 1
	}
	return gaps, nil
}
