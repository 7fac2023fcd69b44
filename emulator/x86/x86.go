// Package x86 holds the x86 register identifiers in unicorn numbering.
package x86

import "github.com/wnxd/microx86/emulator"

const (
	X86_REG_INVALID emulator.Reg = iota
	X86_REG_AH
	X86_REG_AL
	X86_REG_AX
	X86_REG_BH
	X86_REG_BL
	X86_REG_BP
	X86_REG_BPL
	X86_REG_BX
	X86_REG_CH
	X86_REG_CL
	X86_REG_CS
	X86_REG_CX
	X86_REG_DH
	X86_REG_DI
	X86_REG_DIL
	X86_REG_DL
	X86_REG_DS
	X86_REG_DX
	X86_REG_EAX
	X86_REG_EBP
	X86_REG_EBX
	X86_REG_ECX
	X86_REG_EDI
	X86_REG_EDX
	X86_REG_EFLAGS
	X86_REG_EIP
	X86_REG_EIZ
	X86_REG_ES
	X86_REG_ESI
	X86_REG_ESP
	X86_REG_FPSW
	X86_REG_FS
	X86_REG_GS
	X86_REG_IP
	X86_REG_RAX
	X86_REG_RBP
	X86_REG_RBX
	X86_REG_RCX
	X86_REG_RDI
	X86_REG_RDX
	X86_REG_RIP
	X86_REG_RIZ
	X86_REG_RSI
	X86_REG_RSP
	X86_REG_SI
	X86_REG_SIL
	X86_REG_SP
	X86_REG_SPL
	X86_REG_SS
)

const (
	X86_REG_CR0 emulator.Reg = 50 + iota
	X86_REG_CR1
	X86_REG_CR2
	X86_REG_CR3
	X86_REG_CR4
	X86_REG_CR5
	X86_REG_CR6
	X86_REG_CR7
	X86_REG_CR8
	X86_REG_CR9
	X86_REG_CR10
	X86_REG_CR11
	X86_REG_CR12
	X86_REG_CR13
	X86_REG_CR14
	X86_REG_CR15
)

const (
	X86_REG_DR0 emulator.Reg = 66 + iota
	X86_REG_DR1
	X86_REG_DR2
	X86_REG_DR3
	X86_REG_DR4
	X86_REG_DR5
	X86_REG_DR6
	X86_REG_DR7
)

const (
	X86_REG_FP0 emulator.Reg = 82 + iota
	X86_REG_FP1
	X86_REG_FP2
	X86_REG_FP3
	X86_REG_FP4
	X86_REG_FP5
	X86_REG_FP6
	X86_REG_FP7
)

const (
	X86_REG_R8 emulator.Reg = 106 + iota
	X86_REG_R9
	X86_REG_R10
	X86_REG_R11
	X86_REG_R12
	X86_REG_R13
	X86_REG_R14
	X86_REG_R15
)

const (
	X86_REG_ST0 emulator.Reg = 114 + iota
	X86_REG_ST1
	X86_REG_ST2
	X86_REG_ST3
	X86_REG_ST4
	X86_REG_ST5
	X86_REG_ST6
	X86_REG_ST7
)

const (
	X86_REG_XMM0 emulator.Reg = 122
	X86_REG_YMM0 emulator.Reg = 154
	X86_REG_ZMM0 emulator.Reg = 186
)

const (
	X86_REG_R8B emulator.Reg = 218 + iota
	X86_REG_R9B
	X86_REG_R10B
	X86_REG_R11B
	X86_REG_R12B
	X86_REG_R13B
	X86_REG_R14B
	X86_REG_R15B
)

const (
	X86_REG_R8D emulator.Reg = 226 + iota
	X86_REG_R9D
	X86_REG_R10D
	X86_REG_R11D
	X86_REG_R12D
	X86_REG_R13D
	X86_REG_R14D
	X86_REG_R15D
)

const (
	X86_REG_R8W emulator.Reg = 234 + iota
	X86_REG_R9W
	X86_REG_R10W
	X86_REG_R11W
	X86_REG_R12W
	X86_REG_R13W
	X86_REG_R14W
	X86_REG_R15W
)

const (
	X86_REG_IDTR emulator.Reg = 242 + iota
	X86_REG_GDTR
	X86_REG_LDTR
	X86_REG_TR
	X86_REG_FPCW
	X86_REG_FPTAG
	X86_REG_MSR
	X86_REG_MXCSR
	X86_REG_FS_BASE
	X86_REG_GS_BASE
	X86_REG_FLAGS
	X86_REG_RFLAGS
	X86_REG_FIP
	X86_REG_FCS
	X86_REG_FDP
	X86_REG_FDS
	X86_REG_FOP
	X86_REG_ENDING
)

// Layout matches uc_x86_mmr.
type Mmr struct {
	Selector uint16
	Base     uint64
	Limit    uint32
	Flags    uint32
}

// Layout matches uc_x86_msr.
type Msr struct {
	ID    uint32
	Value uint64
}

func IsMmr(reg emulator.Reg) bool {
	switch reg {
	case X86_REG_IDTR, X86_REG_GDTR, X86_REG_LDTR, X86_REG_TR:
		return true
	}
	return false
}

const (
	X86_MSR_FS_BASE        = 0xC0000100
	X86_MSR_GS_BASE        = 0xC0000101
	X86_MSR_KERNEL_GS_BASE = 0xC0000102
)
