package arch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microx86/arch"
	"github.com/wnxd/microx86/emulator"
	"github.com/wnxd/microx86/emulator/soft"
	"github.com/wnxd/microx86/emulator/x86"
)

func newManager(t *testing.T) *arch.RegisterManager {
	t.Helper()
	emu, err := soft.New(emulator.ARCH_X86)
	require.NoError(t, err)
	t.Cleanup(func() { emu.Close() })
	mapping := map[string]emulator.Reg{
		"eax": x86.X86_REG_EAX,
		"al":  x86.X86_REG_AL,
		"eip": x86.X86_REG_EIP,
		"esp": x86.X86_REG_ESP,
	}
	rm, err := arch.NewRegisterManager(emu, mapping, "eip", "esp")
	require.NoError(t, err)
	return rm
}

func TestNewRegisterManagerNeedsPCAndSP(t *testing.T) {
	emu, err := soft.New(emulator.ARCH_X86)
	require.NoError(t, err)
	defer emu.Close()

	_, err = arch.NewRegisterManager(emu, map[string]emulator.Reg{"eip": x86.X86_REG_EIP}, "eip", "esp")
	require.ErrorIs(t, err, arch.ErrRegisterNotFound)
}

func TestResolve(t *testing.T) {
	rm := newManager(t)

	reg, err := rm.Resolve("EAX")
	require.NoError(t, err)
	assert.Equal(t, x86.X86_REG_EAX, reg)

	reg, err = rm.Resolve(x86.X86_REG_AL)
	require.NoError(t, err)
	assert.Equal(t, x86.X86_REG_AL, reg)

	_, err = rm.Resolve("ebx")
	require.ErrorIs(t, err, arch.ErrRegisterNotFound)
	_, err = rm.Resolve(x86.X86_REG_EBX)
	require.ErrorIs(t, err, arch.ErrRegisterNotFound)
}

func TestReadWriteThroughAliases(t *testing.T) {
	rm := newManager(t)

	require.NoError(t, rm.Write("eax", 0x11223344))
	al, err := rm.Read("al")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x44), al)

	require.NoError(t, rm.Write(x86.X86_REG_AL, 0xFF))
	eax, err := rm.Read("eax")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x112233FF), eax)
}

func TestMappingIsACopy(t *testing.T) {
	rm := newManager(t)

	m := rm.Mapping()
	delete(m, "eax")
	_, err := rm.Resolve("eax")
	require.NoError(t, err)
	assert.Equal(t, []string{"al", "eax", "eip", "esp"}, rm.Names())
}
