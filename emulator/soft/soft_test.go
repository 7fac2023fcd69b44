package soft_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microx86/emulator"
	"github.com/wnxd/microx86/emulator/soft"
	"github.com/wnxd/microx86/emulator/x86"
)

func newEmu(t *testing.T, arch emulator.Arch) emulator.Emulator {
	t.Helper()
	emu, err := soft.New(arch)
	require.NoError(t, err)
	t.Cleanup(func() { emu.Close() })
	return emu
}

func TestNewRejectsForeignArch(t *testing.T) {
	_, err := soft.New(emulator.ARCH_UNKNOWN)
	require.ErrorIs(t, err, emulator.ErrArchUnsupported)
}

func TestRegistered(t *testing.T) {
	for _, arch := range []emulator.Arch{emulator.ARCH_A8086, emulator.ARCH_X86, emulator.ARCH_X86_64} {
		emu, err := emulator.New(arch)
		require.NoError(t, err)
		assert.Equal(t, arch, emu.Arch())
		require.NoError(t, emu.Close())
	}
}

func TestNarrowAliasWritesIntoWideRegister(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86_64)

	require.NoError(t, emu.RegWrite(x86.X86_REG_RAX, 0x1122334455667788))
	require.NoError(t, emu.RegWrite(x86.X86_REG_AL, 0xAA))
	require.NoError(t, emu.RegWrite(x86.X86_REG_AH, 0xBB))

	rax, err := emu.RegRead(x86.X86_REG_RAX)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x112233445566BBAA), rax)

	ax, err := emu.RegRead(x86.X86_REG_AX)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xBBAA), ax)

	eax, err := emu.RegRead(x86.X86_REG_EAX)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5566BBAA), eax)
}

func TestWideWriteVisibleThroughNarrowAliases(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86_64)

	require.NoError(t, emu.RegWrite(x86.X86_REG_R9, 0x0102030405060708))
	tests := []struct {
		reg  emulator.Reg
		want uint64
	}{
		{x86.X86_REG_R9D, 0x05060708},
		{x86.X86_REG_R9W, 0x0708},
		{x86.X86_REG_R9B, 0x08},
	}
	for _, tt := range tests {
		val, err := emu.RegRead(tt.reg)
		require.NoError(t, err)
		assert.Equal(t, tt.want, val)
	}

	require.NoError(t, emu.RegWrite(x86.X86_REG_EIP, 0xFFFFFFFF_12345678))
	ip, err := emu.RegRead(x86.X86_REG_IP)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x5678), ip)
}

func TestUnknownRegister(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86)
	_, err := emu.RegRead(x86.X86_REG_XMM0)
	require.ErrorIs(t, err, emulator.ErrRegInvalid)
}

func TestMsrSharesSegmentBase(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86_64)

	msr := x86.Msr{ID: x86.X86_MSR_FS_BASE, Value: 0x7000}
	require.NoError(t, emu.RegWritePtr(x86.X86_REG_MSR, unsafe.Pointer(&msr)))
	base, err := emu.RegRead(x86.X86_REG_FS_BASE)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7000), base)

	require.NoError(t, emu.RegWrite(x86.X86_REG_GS_BASE, 0x9000))
	msr = x86.Msr{ID: x86.X86_MSR_GS_BASE}
	require.NoError(t, emu.RegReadPtr(x86.X86_REG_MSR, unsafe.Pointer(&msr)))
	assert.Equal(t, uint64(0x9000), msr.Value)
}

func TestMmr(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86)

	in := x86.Mmr{Base: 0x3000, Limit: 0x1000}
	require.NoError(t, emu.RegWritePtr(x86.X86_REG_GDTR, unsafe.Pointer(&in)))
	var out x86.Mmr
	require.NoError(t, emu.RegReadPtr(x86.X86_REG_GDTR, unsafe.Pointer(&out)))
	assert.Equal(t, in, out)
}

func TestMemory(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86)

	require.ErrorIs(t, emu.MemMap(0x1001, 0x1000, emulator.MEM_PROT_ALL), emulator.ErrMemArgument)
	require.NoError(t, emu.MemMap(0x1000, 0x2000, emulator.MEM_PROT_ALL))
	require.ErrorIs(t, emu.MemMap(0x2000, 0x1000, emulator.MEM_PROT_ALL), emulator.ErrMemMapped)

	require.NoError(t, emu.MemWrite(0x1FFE, []byte{1, 2, 3, 4}))
	data, err := emu.MemRead(0x1FFE, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	_, err = emu.MemRead(0x2FFE, 4)
	require.ErrorIs(t, err, emulator.ErrMemUnmapped)

	regions, err := emu.MemRegions()
	require.NoError(t, err)
	assert.Equal(t, []emulator.MemRegion{{Addr: 0x1000, Size: 0x2000, Prot: emulator.MEM_PROT_ALL}}, regions)

	require.NoError(t, emu.MemUnmap(0x1000, 0x1000))
	regions, err = emu.MemRegions()
	require.NoError(t, err)
	assert.Equal(t, []emulator.MemRegion{{Addr: 0x2000, Size: 0x1000, Prot: emulator.MEM_PROT_ALL}}, regions)
}

func TestDwordWriteZeroExtendsInLongMode(t *testing.T) {
	tests := []struct {
		arch emulator.Arch
		want uint64
	}{
		{emulator.ARCH_X86_64, 0x00000000CAFEBABE},
		{emulator.ARCH_X86, 0xFFFFFFFFCAFEBABE},
	}
	for _, tt := range tests {
		t.Run(tt.arch.String(), func(t *testing.T) {
			emu := newEmu(t, tt.arch)
			for _, regs := range [][2]emulator.Reg{
				{x86.X86_REG_RAX, x86.X86_REG_EAX},
				{x86.X86_REG_R12, x86.X86_REG_R12D},
			} {
				require.NoError(t, emu.RegWrite(regs[0], 0xFFFFFFFFFFFFFFFF))
				require.NoError(t, emu.RegWrite(regs[1], 0xCAFEBABE))
				val, err := emu.RegRead(regs[0])
				require.NoError(t, err)
				assert.Equal(t, tt.want, val)
			}
		})
	}

	// 16- and 8-bit writes keep the upper bits.
	emu := newEmu(t, emulator.ARCH_X86_64)
	require.NoError(t, emu.RegWrite(x86.X86_REG_RBX, 0xFFFFFFFFFFFFFFFF))
	require.NoError(t, emu.RegWrite(x86.X86_REG_BX, 0))
	rbx, err := emu.RegRead(x86.X86_REG_RBX)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFFFFFFFFFFFF0000), rbx)
}

func TestTopPage(t *testing.T) {
	emu := newEmu(t, emulator.ARCH_X86_64)

	const top = 0xFFFFFFFFFFFFF000
	require.NoError(t, emu.MemMap(top, 0x1000, emulator.MEM_PROT_ALL))
	require.ErrorIs(t, emu.MemMap(top-0x1000, 0x2000, emulator.MEM_PROT_ALL), emulator.ErrMemMapped)
	require.ErrorIs(t, emu.MemMap(top, 0x2000, emulator.MEM_PROT_ALL), emulator.ErrMemArgument)

	regions, err := emu.MemRegions()
	require.NoError(t, err)
	assert.Equal(t, []emulator.MemRegion{{Addr: top, Size: 0x1000, Prot: emulator.MEM_PROT_ALL}}, regions)
	assert.True(t, regions[0].Contains(0xFFFFFFFFFFFFFFFF))

	require.NoError(t, emu.MemWrite(0xFFFFFFFFFFFFFFFC, []byte{9, 8, 7, 6}))
	data, err := emu.MemRead(0xFFFFFFFFFFFFFFFC, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 6}, data)
}
