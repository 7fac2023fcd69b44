package emulator

import (
	"encoding/binary"
	"slices"
)

type Pointer struct {
	emu  Emulator
	addr uint64
}

func ToPointer(emu Emulator, addr uint64) Pointer {
	return Pointer{emu, addr}
}

func (p Pointer) IsNil() bool {
	return p.addr == 0
}

func (p Pointer) Address() uint64 {
	return p.addr
}

func (p Pointer) Add(offset uint64) Pointer {
	return Pointer{p.emu, p.addr + offset}
}

func (p Pointer) Sub(offset uint64) Pointer {
	return Pointer{p.emu, p.addr - offset}
}

func (p Pointer) MemRead(size uint64) ([]byte, error) {
	return p.emu.MemRead(p.addr, size)
}

func (p Pointer) MemWrite(data []byte) error {
	return p.emu.MemWrite(p.addr, data)
}

func (p Pointer) MemReadUint64() (uint64, error) {
	data, err := p.emu.MemRead(p.addr, 8)
	if err != nil {
		return 0, err
	}
	if p.emu.ByteOrder() == BO_BIG_ENDIAN {
		return binary.BigEndian.Uint64(data), nil
	}
	return binary.LittleEndian.Uint64(data), nil
}

func (p Pointer) MemWriteUint64(val uint64) error {
	var buf [8]byte
	if p.emu.ByteOrder() == BO_BIG_ENDIAN {
		binary.BigEndian.PutUint64(buf[:], val)
	} else {
		binary.LittleEndian.PutUint64(buf[:], val)
	}
	return p.emu.MemWrite(p.addr, buf[:])
}

func (p Pointer) MemReadString() (string, error) {
	var data []byte
	const size = 0x10
	for begin := p.addr; ; begin += size {
		buf, err := p.emu.MemRead(begin, size)
		if err != nil {
			return "", err
		}
		i := slices.Index(buf, 0)
		if i == -1 {
			data = append(data, buf...)
		} else {
			data = append(data, buf[:i]...)
			break
		}
	}
	return string(data), nil
}

func (p Pointer) MemReadPointer() (ptr Pointer, err error) {
	var size uint64
	switch p.emu.Arch() {
	case ARCH_A8086:
		size = 2
	case ARCH_X86:
		size = 4
	case ARCH_X86_64:
		size = 8
	default:
		err = ErrArchUnsupported
		return
	}
	data, err := p.MemRead(size)
	if err != nil {
		return
	}
	var raw [8]byte
	copy(raw[:], data)
	ptr.emu, ptr.addr = p.emu, binary.LittleEndian.Uint64(raw[:])
	return
}

func (p Pointer) ReadAt(b []byte, off int64) (n int, err error) {
	data, err := p.emu.MemRead(p.addr+uint64(off), uint64(len(b)))
	if err != nil {
		return 0, err
	}
	return copy(b, data), nil
}

func (p Pointer) WriteAt(b []byte, off int64) (n int, err error) {
	return len(b), p.emu.MemWrite(p.addr+uint64(off), b)
}
