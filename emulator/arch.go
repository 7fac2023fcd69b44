package emulator

type Arch int

const (
	ARCH_UNKNOWN Arch = iota
	ARCH_A8086
	ARCH_X86
	ARCH_X86_64
)

func (a Arch) Bits() int {
	switch a {
	case ARCH_A8086:
		return 16
	case ARCH_X86:
		return 32
	case ARCH_X86_64:
		return 64
	}
	return 0
}

func (a Arch) String() string {
	switch a {
	case ARCH_A8086:
		return "a8086"
	case ARCH_X86:
		return "x86"
	case ARCH_X86_64:
		return "x8664"
	}
	return "unknown"
}

func ParseArch(name string) Arch {
	switch name {
	case "a8086", "8086", "x86_16":
		return ARCH_A8086
	case "x86", "i386", "x86_32":
		return ARCH_X86
	case "x8664", "x86_64", "amd64":
		return ARCH_X86_64
	}
	return ARCH_UNKNOWN
}
