package x86

import (
	"github.com/wnxd/microx86/arch"
	"github.com/wnxd/microx86/emulator"
	ex86 "github.com/wnxd/microx86/emulator/x86"
)

var RegMap8 = map[string]emulator.Reg{
	"ah": ex86.X86_REG_AH,
	"al": ex86.X86_REG_AL,
	"ch": ex86.X86_REG_CH,
	"cl": ex86.X86_REG_CL,
	"dh": ex86.X86_REG_DH,
	"dl": ex86.X86_REG_DL,
	"bh": ex86.X86_REG_BH,
	"bl": ex86.X86_REG_BL,
}

var RegMap16 = map[string]emulator.Reg{
	"ax": ex86.X86_REG_AX,
	"cx": ex86.X86_REG_CX,
	"dx": ex86.X86_REG_DX,
	"bx": ex86.X86_REG_BX,
	"sp": ex86.X86_REG_SP,
	"bp": ex86.X86_REG_BP,
	"si": ex86.X86_REG_SI,
	"di": ex86.X86_REG_DI,
	"ip": ex86.X86_REG_IP,
}

var RegMap32 = map[string]emulator.Reg{
	"eax": ex86.X86_REG_EAX,
	"ecx": ex86.X86_REG_ECX,
	"edx": ex86.X86_REG_EDX,
	"ebx": ex86.X86_REG_EBX,
	"esp": ex86.X86_REG_ESP,
	"ebp": ex86.X86_REG_EBP,
	"esi": ex86.X86_REG_ESI,
	"edi": ex86.X86_REG_EDI,
	"eip": ex86.X86_REG_EIP,
}

var RegMap64 = map[string]emulator.Reg{
	"rax": ex86.X86_REG_RAX,
	"rbx": ex86.X86_REG_RBX,
	"rcx": ex86.X86_REG_RCX,
	"rdx": ex86.X86_REG_RDX,
	"rsi": ex86.X86_REG_RSI,
	"rdi": ex86.X86_REG_RDI,
	"rbp": ex86.X86_REG_RBP,
	"rsp": ex86.X86_REG_RSP,
	"r8":  ex86.X86_REG_R8,
	"r9":  ex86.X86_REG_R9,
	"r10": ex86.X86_REG_R10,
	"r11": ex86.X86_REG_R11,
	"r12": ex86.X86_REG_R12,
	"r13": ex86.X86_REG_R13,
	"r14": ex86.X86_REG_R14,
	"r15": ex86.X86_REG_R15,
	"rip": ex86.X86_REG_RIP,
}

var RegMap64B = map[string]emulator.Reg{
	"sil":  ex86.X86_REG_SIL,
	"dil":  ex86.X86_REG_DIL,
	"bpl":  ex86.X86_REG_BPL,
	"spl":  ex86.X86_REG_SPL,
	"r8b":  ex86.X86_REG_R8B,
	"r9b":  ex86.X86_REG_R9B,
	"r10b": ex86.X86_REG_R10B,
	"r11b": ex86.X86_REG_R11B,
	"r12b": ex86.X86_REG_R12B,
	"r13b": ex86.X86_REG_R13B,
	"r14b": ex86.X86_REG_R14B,
	"r15b": ex86.X86_REG_R15B,
}

var RegMap64W = map[string]emulator.Reg{
	"r8w":  ex86.X86_REG_R8W,
	"r9w":  ex86.X86_REG_R9W,
	"r10w": ex86.X86_REG_R10W,
	"r11w": ex86.X86_REG_R11W,
	"r12w": ex86.X86_REG_R12W,
	"r13w": ex86.X86_REG_R13W,
	"r14w": ex86.X86_REG_R14W,
	"r15w": ex86.X86_REG_R15W,
}

var RegMap64D = map[string]emulator.Reg{
	"r8d":  ex86.X86_REG_R8D,
	"r9d":  ex86.X86_REG_R9D,
	"r10d": ex86.X86_REG_R10D,
	"r11d": ex86.X86_REG_R11D,
	"r12d": ex86.X86_REG_R12D,
	"r13d": ex86.X86_REG_R13D,
	"r14d": ex86.X86_REG_R14D,
	"r15d": ex86.X86_REG_R15D,
}

var RegMapCR = map[string]emulator.Reg{
	"cr0": ex86.X86_REG_CR0,
	"cr1": ex86.X86_REG_CR1,
	"cr2": ex86.X86_REG_CR2,
	"cr3": ex86.X86_REG_CR3,
	"cr4": ex86.X86_REG_CR4,
	"cr8": ex86.X86_REG_CR8,
}

var RegMapST = map[string]emulator.Reg{
	"st0": ex86.X86_REG_ST0,
	"st1": ex86.X86_REG_ST1,
	"st2": ex86.X86_REG_ST2,
	"st3": ex86.X86_REG_ST3,
	"st4": ex86.X86_REG_ST4,
	"st5": ex86.X86_REG_ST5,
	"st6": ex86.X86_REG_ST6,
	"st7": ex86.X86_REG_ST7,
}

var RegMapMisc = map[string]emulator.Reg{
	"eflags": ex86.X86_REG_EFLAGS,
	"cs":     ex86.X86_REG_CS,
	"ss":     ex86.X86_REG_SS,
	"ds":     ex86.X86_REG_DS,
	"es":     ex86.X86_REG_ES,
	"fs":     ex86.X86_REG_FS,
	"gs":     ex86.X86_REG_GS,
}

var RegMapSegBase = map[string]emulator.Reg{
	"fsbase": ex86.X86_REG_FS_BASE,
	"gsbase": ex86.X86_REG_GS_BASE,
}

var (
	regMapA8086 = mustCompose(RegMap8, RegMap16, RegMapMisc)
	regMapX86   = mustCompose(RegMap8, RegMap16, RegMap32, RegMapCR, RegMapST, RegMapMisc)
	regMapX8664 = mustCompose(RegMap8, RegMap16, RegMap32, RegMap64, RegMapCR, RegMapST, RegMapMisc,
		RegMap64B, RegMap64W, RegMap64D, RegMapSegBase)
)

type widthClass struct {
	table map[string]emulator.Reg
	bits  int
}

// Lookup order decides the width of an identifier listed in more than one class.
var widthClasses = []widthClass{
	{RegMap8, 8},
	{RegMap16, 16},
	{RegMap32, 32},
	{RegMap64, 64},
	{RegMapMisc, 16},
	{RegMapCR, 64},
	{RegMapST, 32},
	{RegMapSegBase, 64},
	{RegMap64B, 8},
	{RegMap64W, 16},
	{RegMap64D, 32},
}

var regBits = func() map[emulator.Reg]int {
	bits := make(map[emulator.Reg]int)
	for _, class := range widthClasses {
		for _, reg := range class.table {
			if _, ok := bits[reg]; !ok {
				bits[reg] = class.bits
			}
		}
	}
	return bits
}()

func widthOf(reg emulator.Reg) int {
	// eflags sits among the 16-bit selectors but is 32 bits wide.
	if reg == ex86.X86_REG_EFLAGS {
		return 32
	}
	return regBits[reg]
}

func mustCompose(tables ...map[string]emulator.Reg) map[string]emulator.Reg {
	mapping, err := arch.ComposeMapping(tables...)
	if err != nil {
		panic(err)
	}
	return mapping
}
