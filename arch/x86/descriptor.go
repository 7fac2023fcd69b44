package x86

import (
	"encoding/binary"
	"fmt"
)

// Descriptor is one GDT entry. Limit keeps the 20 bits the entry can
// hold and Flags the 4-bit flags nibble.
//
//	bits  0..15  limit 0..15
//	bits 16..39  base 0..23
//	bits 40..47  access byte
//	bits 48..51  limit 16..19
//	bits 52..55  flags
//	bits 56..63  base 24..31
type Descriptor struct {
	Base   uint32
	Limit  uint32
	Access uint8
	Flags  uint8
}

func NewDescriptor(base, limit uint64, access, flags uint8) Descriptor {
	return Descriptor{
		Base:   uint32(base),
		Limit:  uint32(limit) & 0xFFFFF,
		Access: access,
		Flags:  flags & 0xF,
	}
}

func DescriptorFromUint64(v uint64) Descriptor {
	return Descriptor{
		Base:   uint32(v>>16&0xFFFFFF) | uint32(v>>56&0xFF)<<24,
		Limit:  uint32(v&0xFFFF) | uint32(v>>48&0xF)<<16,
		Access: uint8(v >> 40),
		Flags:  uint8(v >> 52 & 0xF),
	}
}

func DecodeDescriptor(b []byte) (Descriptor, error) {
	if len(b) != GDT_ENTRY_SIZE {
		return Descriptor{}, fmt.Errorf("%w: got %d", ErrGDTEntrySize, len(b))
	}
	return DescriptorFromUint64(binary.LittleEndian.Uint64(b)), nil
}

func (d Descriptor) Uint64() uint64 {
	v := uint64(d.Limit & 0xFFFF)
	v |= uint64(d.Base&0xFFFFFF) << 16
	v |= uint64(d.Access) << 40
	v |= uint64(d.Limit>>16&0xF) << 48
	v |= uint64(d.Flags&0xF) << 52
	v |= uint64(d.Base>>24&0xFF) << 56
	return v
}

func (d Descriptor) Bytes() []byte {
	return binary.LittleEndian.AppendUint64(make([]byte, 0, GDT_ENTRY_SIZE), d.Uint64())
}

func (d Descriptor) IsNull() bool {
	return d.Uint64() == 0
}

func (d Descriptor) Present() bool {
	return d.Access&GDT_A_PRESENT != 0
}

func (d Descriptor) DPL() uint8 {
	return d.Access >> 5 & 0x3
}

func (d Descriptor) IsCode() bool {
	return d.Access&(GDT_A_CODE|GDT_A_EXEC) == GDT_A_CODE|GDT_A_EXEC
}

func (d Descriptor) Granularity() bool {
	return d.Flags&GDT_F_GRANULARITY != 0
}

func (d Descriptor) LongMode() bool {
	return d.Flags&GDT_F_LONG != 0
}

func (d Descriptor) ByteLimit() uint64 {
	if d.Granularity() {
		return uint64(d.Limit)<<12 | 0xFFF
	}
	return uint64(d.Limit)
}

func (d Descriptor) String() string {
	return fmt.Sprintf("base=%#x limit=%#x access=%#02x flags=%#x", d.Base, d.Limit, d.Access, d.Flags)
}

type Selector uint16

func MakeSelector(index int, flags uint16) Selector {
	return Selector(uint16(index)<<3 | flags)
}

func (s Selector) Index() int {
	return int(s >> 3)
}

func (s Selector) RPL() uint8 {
	return uint8(s & 0x3)
}

func (s Selector) IsLDT() bool {
	return s&GDT_S_LDT != 0
}

func (s Selector) Table() uint16 {
	return uint16(s & GDT_S_LDT)
}
