package emulator

import (
	"io"
	"unsafe"
)

type Reg int

type Emulator interface {
	io.Closer
	Arch() Arch
	ByteOrder() ByteOrder
	PageSize() uint64
	MemMap(addr, size uint64, prot MemProt) error
	MemUnmap(addr, size uint64) error
	MemProtect(addr, size uint64, prot MemProt) error
	MemRegions() ([]MemRegion, error)
	MemRead(addr, size uint64) ([]byte, error)
	MemWrite(addr uint64, data []byte) error
	MemReadPtr(addr, size uint64, ptr unsafe.Pointer) error
	MemWritePtr(addr, size uint64, ptr unsafe.Pointer) error
	RegisterContext
}

type EmuCtor func(Arch) (Emulator, error)

var emuMap = make(map[Arch]EmuCtor)

func Register(arch Arch, ctor EmuCtor) bool {
	if _, ok := emuMap[arch]; ok {
		return false
	}
	emuMap[arch] = ctor
	return true
}

func New(arch Arch) (Emulator, error) {
	if ctor, ok := emuMap[arch]; ok {
		return ctor(arch)
	}
	return nil, ErrArchUnsupported
}
