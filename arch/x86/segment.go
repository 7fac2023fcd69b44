package x86

import (
	"github.com/wnxd/microx86/emulator"
)

const (
	codeAccess = GDT_A_PRESENT | GDT_A_CODE | GDT_A_CODE_READABLE | GDT_A_PRIV_3 | GDT_A_EXEC | GDT_A_DIR_CON_BIT
	dataAccess = GDT_A_PRESENT | GDT_A_DATA | GDT_A_DATA_WRITABLE | GDT_A_PRIV_0 | GDT_A_DIR_CON_BIT
	tlsAccess  = GDT_A_PRESENT | GDT_A_DATA | GDT_A_DATA_WRITABLE | GDT_A_PRIV_3 | GDT_A_DIR_CON_BIT
)

func (m *GDTManager) setupSegment(index int, base, size uint64, access uint8, selFlags uint16, regs ...string) (Selector, error) {
	if err := m.RegisterSegment(index, base, size, access, GDT_F_PROT_32); err != nil {
		return 0, err
	}
	sel := m.MakeSelector(index, selFlags)
	for _, reg := range regs {
		if err := m.regs.Write(reg, uint64(sel)); err != nil {
			return 0, err
		}
	}
	return sel, nil
}

func (m *GDTManager) SetupCS32() (Selector, error) {
	return m.setupSegment(GDT_SLOT_CS32, 0, 0xFFFFF000, codeAccess, GDT_S_GDT|GDT_S_PRIV_3, "cs")
}

func (m *GDTManager) SetupCS64() (Selector, error) {
	return m.setupSegment(GDT_SLOT_CS64, 0, 0xFFFFFFFFFFFFF000, codeAccess, GDT_S_GDT|GDT_S_PRIV_3, "cs")
}

func (m *GDTManager) SetupDataSegments32() (Selector, error) {
	return m.setupSegment(GDT_SLOT_DATA, 0, 0xFFFFF000, dataAccess, GDT_S_GDT|GDT_S_PRIV_0, "ds", "ss", "es")
}

// Only SS is loaded; DS and ES stay untouched.
func (m *GDTManager) SetupDataSegments64() (Selector, error) {
	return m.setupSegment(GDT_SLOT_DATA, 0, 0xFFFFF000, dataAccess, GDT_S_GDT|GDT_S_PRIV_0, "ss")
}

func (m *GDTManager) SetupFS32(base, size uint64) (Selector, error) {
	return m.setupSegment(GDT_SLOT_FS, base, size, tlsAccess, GDT_S_GDT|GDT_S_PRIV_3, "fs")
}

// SetupGS32 loads GS with RPL 0 even though the descriptor is ring 3.
func (m *GDTManager) SetupGS32(base, size uint64) (Selector, error) {
	return m.setupSegment(GDT_SLOT_GS, base, size, tlsAccess, GDT_S_GDT|GDT_S_PRIV_0, "gs")
}

func (a *X8664) SetFS(base, size uint64) error {
	return a.setSegmentBase(FSMSR, base, size)
}

func (a *X8664) GetFS() (uint64, error) {
	return a.segmentBase(FSMSR)
}

func (a *X8664) SetGS(base, size uint64) error {
	return a.setSegmentBase(GSMSR, base, size)
}

func (a *X8664) GetGS() (uint64, error) {
	return a.segmentBase(GSMSR)
}

func (a *X8664) setSegmentBase(msr uint32, base, size uint64) error {
	emu, err := a.Emulator()
	if err != nil {
		return err
	}
	if size != 0 {
		if err = emulator.MapRange(emu, base, size, emulator.MEM_PROT_READ|emulator.MEM_PROT_WRITE); err != nil {
			return err
		}
	}
	msrs, err := a.Msr()
	if err != nil {
		return err
	}
	a.Logger().Debug("set segment base", "msr", msr, "base", base)
	return msrs.Write(msr, base)
}

func (a *X8664) segmentBase(msr uint32) (uint64, error) {
	msrs, err := a.Msr()
	if err != nil {
		return 0, err
	}
	return msrs.Read(msr)
}
