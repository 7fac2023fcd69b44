package soft

import (
	"fmt"
	"unsafe"

	"github.com/wnxd/microx86/emulator"
	"github.com/wnxd/microx86/emulator/x86"
)

const (
	slotGPR    = 0
	slotRIP    = 16
	slotFlags  = 17
	slotSeg    = 18
	slotFSBase = 24
	slotGSBase = 25
	slotCR     = 26
	slotDR     = 42
	slotST     = 50
	slotFPSW   = 58
	slotFPCW   = 59
	slotFPTag  = 60
	slotMXCSR  = 61
	slotCount  = 62
)

// view is a window of bits inside one storage slot. Narrow registers
// are views over the same slot as their wide parent.
type view struct {
	slot  int
	shift uint
	bits  uint
}

func (v view) mask() uint64 {
	if v.bits == 64 {
		return ^uint64(0)
	}
	return 1<<v.bits - 1
}

var views = make(map[emulator.Reg]view)

func init() {
	gpr64 := []emulator.Reg{x86.X86_REG_RAX, x86.X86_REG_RCX, x86.X86_REG_RDX, x86.X86_REG_RBX, x86.X86_REG_RSP, x86.X86_REG_RBP, x86.X86_REG_RSI, x86.X86_REG_RDI}
	gpr32 := []emulator.Reg{x86.X86_REG_EAX, x86.X86_REG_ECX, x86.X86_REG_EDX, x86.X86_REG_EBX, x86.X86_REG_ESP, x86.X86_REG_EBP, x86.X86_REG_ESI, x86.X86_REG_EDI}
	gpr16 := []emulator.Reg{x86.X86_REG_AX, x86.X86_REG_CX, x86.X86_REG_DX, x86.X86_REG_BX, x86.X86_REG_SP, x86.X86_REG_BP, x86.X86_REG_SI, x86.X86_REG_DI}
	gpr8 := []emulator.Reg{x86.X86_REG_AL, x86.X86_REG_CL, x86.X86_REG_DL, x86.X86_REG_BL, x86.X86_REG_SPL, x86.X86_REG_BPL, x86.X86_REG_SIL, x86.X86_REG_DIL}
	gpr8h := []emulator.Reg{x86.X86_REG_AH, x86.X86_REG_CH, x86.X86_REG_DH, x86.X86_REG_BH}
	for i := range 8 {
		views[gpr64[i]] = view{slotGPR + i, 0, 64}
		views[gpr32[i]] = view{slotGPR + i, 0, 32}
		views[gpr16[i]] = view{slotGPR + i, 0, 16}
		views[gpr8[i]] = view{slotGPR + i, 0, 8}
	}
	for i, reg := range gpr8h {
		views[reg] = view{slotGPR + i, 8, 8}
	}
	for i := range 8 {
		slot := slotGPR + 8 + i
		views[x86.X86_REG_R8+emulator.Reg(i)] = view{slot, 0, 64}
		views[x86.X86_REG_R8D+emulator.Reg(i)] = view{slot, 0, 32}
		views[x86.X86_REG_R8W+emulator.Reg(i)] = view{slot, 0, 16}
		views[x86.X86_REG_R8B+emulator.Reg(i)] = view{slot, 0, 8}
	}
	views[x86.X86_REG_RIP] = view{slotRIP, 0, 64}
	views[x86.X86_REG_EIP] = view{slotRIP, 0, 32}
	views[x86.X86_REG_IP] = view{slotRIP, 0, 16}
	views[x86.X86_REG_RFLAGS] = view{slotFlags, 0, 64}
	views[x86.X86_REG_EFLAGS] = view{slotFlags, 0, 32}
	views[x86.X86_REG_FLAGS] = view{slotFlags, 0, 16}
	for i, reg := range []emulator.Reg{x86.X86_REG_ES, x86.X86_REG_CS, x86.X86_REG_SS, x86.X86_REG_DS, x86.X86_REG_FS, x86.X86_REG_GS} {
		views[reg] = view{slotSeg + i, 0, 16}
	}
	views[x86.X86_REG_FS_BASE] = view{slotFSBase, 0, 64}
	views[x86.X86_REG_GS_BASE] = view{slotGSBase, 0, 64}
	for i := range 16 {
		views[x86.X86_REG_CR0+emulator.Reg(i)] = view{slotCR + i, 0, 64}
	}
	for i := range 8 {
		views[x86.X86_REG_DR0+emulator.Reg(i)] = view{slotDR + i, 0, 64}
		views[x86.X86_REG_ST0+emulator.Reg(i)] = view{slotST + i, 0, 64}
		views[x86.X86_REG_FP0+emulator.Reg(i)] = view{slotST + i, 0, 64}
	}
	views[x86.X86_REG_FPSW] = view{slotFPSW, 0, 16}
	views[x86.X86_REG_FPCW] = view{slotFPCW, 0, 16}
	views[x86.X86_REG_FPTAG] = view{slotFPTag, 0, 16}
	views[x86.X86_REG_MXCSR] = view{slotMXCSR, 0, 32}
}

type regFile struct {
	slots [slotCount]uint64
	mmr   map[emulator.Reg]x86.Mmr
	msr   map[uint32]uint64

	// long mode clears bits 32..63 of a general purpose register on a
	// 32-bit write
	zeroExt32 bool
}

func newRegFile(arch emulator.Arch) regFile {
	return regFile{
		mmr:       make(map[emulator.Reg]x86.Mmr),
		msr:       make(map[uint32]uint64),
		zeroExt32: arch == emulator.ARCH_X86_64,
	}
}

func (rf *regFile) read(reg emulator.Reg) (uint64, error) {
	v, ok := views[reg]
	if !ok {
		return 0, fmt.Errorf("%w: %d", emulator.ErrRegInvalid, reg)
	}
	return rf.slots[v.slot] >> v.shift & v.mask(), nil
}

func (rf *regFile) write(reg emulator.Reg, value uint64) error {
	v, ok := views[reg]
	if !ok {
		return fmt.Errorf("%w: %d", emulator.ErrRegInvalid, reg)
	}
	mask := v.mask()
	if rf.zeroExt32 && v.bits == 32 && v.slot < slotGPR+16 {
		rf.slots[v.slot] = value & mask
		return nil
	}
	rf.slots[v.slot] = rf.slots[v.slot]&^(mask<<v.shift) | (value&mask)<<v.shift
	return nil
}

func (rf *regFile) readMsr(id uint32) uint64 {
	switch id {
	case x86.X86_MSR_FS_BASE:
		return rf.slots[slotFSBase]
	case x86.X86_MSR_GS_BASE:
		return rf.slots[slotGSBase]
	}
	return rf.msr[id]
}

func (rf *regFile) writeMsr(id uint32, value uint64) {
	switch id {
	case x86.X86_MSR_FS_BASE:
		rf.slots[slotFSBase] = value
	case x86.X86_MSR_GS_BASE:
		rf.slots[slotGSBase] = value
	default:
		rf.msr[id] = value
	}
}

func (rf *regFile) readPtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	switch {
	case x86.IsMmr(reg):
		*(*x86.Mmr)(ptr) = rf.mmr[reg]
	case reg == x86.X86_REG_MSR:
		msr := (*x86.Msr)(ptr)
		msr.Value = rf.readMsr(msr.ID)
	default:
		val, err := rf.read(reg)
		if err != nil {
			return err
		}
		*(*uint64)(ptr) = val
	}
	return nil
}

func (rf *regFile) writePtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	switch {
	case x86.IsMmr(reg):
		rf.mmr[reg] = *(*x86.Mmr)(ptr)
	case reg == x86.X86_REG_MSR:
		msr := (*x86.Msr)(ptr)
		rf.writeMsr(msr.ID, msr.Value)
	default:
		return rf.write(reg, *(*uint64)(ptr))
	}
	return nil
}
