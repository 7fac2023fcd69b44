package x86

import (
	"unsafe"

	"github.com/wnxd/microx86/emulator"
	ex86 "github.com/wnxd/microx86/emulator/x86"
)

const (
	FSMSR = ex86.X86_MSR_FS_BASE
	GSMSR = ex86.X86_MSR_GS_BASE
)

type MsrManager struct {
	ctx emulator.RegisterContext
}

func NewMsrManager(ctx emulator.RegisterContext) *MsrManager {
	return &MsrManager{ctx: ctx}
}

func (m *MsrManager) Read(msr uint32) (uint64, error) {
	rec := ex86.Msr{ID: msr}
	if err := m.ctx.RegReadPtr(ex86.X86_REG_MSR, unsafe.Pointer(&rec)); err != nil {
		return 0, err
	}
	return rec.Value, nil
}

func (m *MsrManager) Write(msr uint32, value uint64) error {
	rec := ex86.Msr{ID: msr, Value: value}
	return m.ctx.RegWritePtr(ex86.X86_REG_MSR, unsafe.Pointer(&rec))
}
