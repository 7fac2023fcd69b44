package x86

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/wnxd/microx86/arch"
	"github.com/wnxd/microx86/emulator"
	ex86 "github.com/wnxd/microx86/emulator/x86"
)

type GDTOption func(*GDTManager)

func WithGDTAddr(addr uint64) GDTOption {
	return func(m *GDTManager) {
		m.addr = addr
	}
}

func WithGDTLimit(limit uint64) GDTOption {
	return func(m *GDTManager) {
		m.limit = limit
	}
}

func WithGDTEntries(entries int) GDTOption {
	return func(m *GDTManager) {
		m.entries = entries
	}
}

func WithGDTLogger(logger *slog.Logger) GDTOption {
	return func(m *GDTManager) {
		m.log = logger
	}
}

// An all-zero entry is free.
type GDTManager struct {
	emu     emulator.Emulator
	regs    *arch.RegisterManager
	addr    uint64
	limit   uint64
	entries int
	log     *slog.Logger
}

func NewGDTManager(emu emulator.Emulator, regs *arch.RegisterManager, opts ...GDTOption) (*GDTManager, error) {
	m := &GDTManager{
		emu:     emu,
		regs:    regs,
		addr:    GDT_ADDR,
		limit:   GDT_LIMIT,
		entries: GDT_ENTRY_COUNT,
		log:     arch.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.entries <= 0 || uint64(m.entries)*GDT_ENTRY_SIZE > m.limit {
		return nil, fmt.Errorf("%w: %d entries in %#x bytes", ErrGDTConfig, m.entries, m.limit)
	}
	return m, m.Init()
}

// GDTR is rewritten on every call.
func (m *GDTManager) Init() error {
	m.log.Debug("map GDT", "addr", fmt.Sprintf("%#x", m.addr), "limit", fmt.Sprintf("%#x", m.limit))
	mapped, err := emulator.IsMapped(m.emu, m.addr, m.limit)
	if err != nil {
		return err
	}
	if !mapped {
		if err = emulator.MapRange(m.emu, m.addr, m.limit, emulator.MEM_PROT_READ|emulator.MEM_PROT_WRITE); err != nil {
			return fmt.Errorf("map GDT: %w", err)
		}
	}
	gdtr := ex86.Mmr{Base: m.addr, Limit: uint32(m.limit)}
	return m.regs.WritePtr(ex86.X86_REG_GDTR, unsafe.Pointer(&gdtr))
}

func (m *GDTManager) Addr() uint64 {
	return m.addr
}

func (m *GDTManager) Limit() uint64 {
	return m.limit
}

func (m *GDTManager) Entries() int {
	return m.entries
}

func (m *GDTManager) entryAddr(index int) uint64 {
	return m.addr + uint64(index)<<3
}

func (m *GDTManager) checkIndex(index int) error {
	if index < 0 || index >= m.entries {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrGDTIndex, index, m.entries)
	}
	return nil
}

func (m *GDTManager) checkSpan(start, end int) error {
	if start < 0 || end > m.entries || start > end {
		return fmt.Errorf("%w: [%d, %d) not in [0, %d)", ErrGDTIndex, start, end, m.entries)
	}
	return nil
}

func (m *GDTManager) RegisterSegment(index int, base, size uint64, access, flags uint8) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	if (index == GDT_SLOT_FS || index == GDT_SLOT_GS) && size != 0 {
		mapped, err := emulator.IsMapped(m.emu, base, size)
		if err != nil {
			return err
		}
		if !mapped {
			m.log.Debug("map FS/GS segment", "index", index, "base", fmt.Sprintf("%#x", base), "size", fmt.Sprintf("%#x", size))
			if err = emulator.MapRange(m.emu, base, size, emulator.MEM_PROT_READ|emulator.MEM_PROT_WRITE); err != nil {
				return fmt.Errorf("map segment %d: %w", index, err)
			}
		}
	}
	entry := NewDescriptor(base, size, access, flags)
	if err := m.emu.MemWrite(m.entryAddr(index), entry.Bytes()); err != nil {
		return err
	}
	m.log.Debug("write GDT entry", "addr", fmt.Sprintf("%#x", m.entryAddr(index)), "entry", entry)
	return nil
}

func (m *GDTManager) Entry(index int) (Descriptor, error) {
	if err := m.checkIndex(index); err != nil {
		return Descriptor{}, err
	}
	v, err := emulator.ToPointer(m.emu, m.entryAddr(index)).MemReadUint64()
	if err != nil {
		return Descriptor{}, err
	}
	return DescriptorFromUint64(v), nil
}

func (m *GDTManager) ClearSegment(index int) error {
	if err := m.checkIndex(index); err != nil {
		return err
	}
	return emulator.ToPointer(m.emu, m.entryAddr(index)).MemWriteUint64(0)
}

func (m *GDTManager) ReadRegion(start, end int) ([]byte, error) {
	if err := m.checkSpan(start, end); err != nil {
		return nil, err
	}
	return m.emu.MemRead(m.entryAddr(start), uint64(end-start)<<3)
}

func (m *GDTManager) WriteRegion(start, end int, buf []byte) error {
	if err := m.checkSpan(start, end); err != nil {
		return err
	}
	if n := (end - start) << 3; len(buf) > n {
		buf = buf[:n]
	}
	return m.emu.MemWrite(m.entryAddr(start), buf)
}

// A negative end means the whole table.
func (m *GDTManager) FindFreeSlot(start, end int) (int, error) {
	if end < 0 {
		end = m.entries
	}
	if err := m.checkSpan(start, end); err != nil {
		return GDT_NO_FREE_SLOT, err
	}
	p := emulator.ToPointer(m.emu, m.entryAddr(start))
	for i := start; i < end; i++ {
		v, err := p.MemReadUint64()
		if err != nil {
			return GDT_NO_FREE_SLOT, err
		}
		if v == 0 {
			return i, nil
		}
		p = p.Add(GDT_ENTRY_SIZE)
	}
	return GDT_NO_FREE_SLOT, nil
}

func (m *GDTManager) MakeSelector(index int, flags uint16) Selector {
	return MakeSelector(index, flags)
}
