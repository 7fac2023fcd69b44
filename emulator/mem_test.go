package emulator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microx86/emulator"
	"github.com/wnxd/microx86/emulator/soft"
)

func TestAlign(t *testing.T) {
	assert.Equal(t, uint64(0x2000), emulator.Align[uint64](0x1001, 0x1000))
	assert.Equal(t, uint64(0x1000), emulator.Align[uint64](0x1000, 0x1000))
	assert.Equal(t, uint64(0x1000), emulator.AlignDown[uint64](0x1FFF, 0x1000))
}

func TestIsMappedAndMapRange(t *testing.T) {
	emu, err := soft.New(emulator.ARCH_X86)
	require.NoError(t, err)
	defer emu.Close()

	require.NoError(t, emu.MemMap(0x3000, 0x1000, emulator.MEM_PROT_READ))

	ok, err := emulator.IsMapped(emu, 0x3000, 0x1000)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = emulator.IsMapped(emu, 0x2800, 0x1000)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, emulator.MapRange(emu, 0x2800, 0x3000, emulator.MEM_PROT_ALL))
	ok, err = emulator.IsMapped(emu, 0x2000, 0x4000)
	require.NoError(t, err)
	assert.True(t, ok)

	regions, err := emu.MemRegions()
	require.NoError(t, err)
	assert.Equal(t, []emulator.MemRegion{
		{Addr: 0x2000, Size: 0x1000, Prot: emulator.MEM_PROT_ALL},
		{Addr: 0x3000, Size: 0x1000, Prot: emulator.MEM_PROT_READ},
		{Addr: 0x4000, Size: 0x2000, Prot: emulator.MEM_PROT_ALL},
	}, regions)

	require.NoError(t, emulator.MapRange(emu, 0x2000, 0x4000, emulator.MEM_PROT_ALL))
}

func TestPointer(t *testing.T) {
	emu, err := soft.New(emulator.ARCH_X86_64)
	require.NoError(t, err)
	defer emu.Close()
	require.NoError(t, emu.MemMap(0x1000, 0x1000, emulator.MEM_PROT_ALL))

	p := emulator.ToPointer(emu, 0x1000)
	require.NoError(t, p.Add(8).MemWriteUint64(0x2000))
	val, err := p.Add(8).MemReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2000), val)

	next, err := p.Add(8).MemReadPointer()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x2000), next.Address())

	require.NoError(t, p.Add(0x20).MemWrite([]byte("gdt\x00")))
	s, err := p.Add(0x20).MemReadString()
	require.NoError(t, err)
	assert.Equal(t, "gdt", s)
}

func TestMapRangeAtTopOfAddressSpace(t *testing.T) {
	emu, err := soft.New(emulator.ARCH_X86_64)
	require.NoError(t, err)
	defer emu.Close()

	const top = 0xFFFFFFFFFFFFF000
	ok, err := emulator.IsMapped(emu, top, 0x1000)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, emulator.MapRange(emu, top+0x800, 0x800, emulator.MEM_PROT_READ|emulator.MEM_PROT_WRITE))
	ok, err = emulator.IsMapped(emu, top, 0x1000)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, emu.MemWrite(top+0xFF8, []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	data, err := emu.MemRead(top+0xFF8, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data)

	// Already mapped: nothing left to map.
	require.NoError(t, emulator.MapRange(emu, top, 0x1000, emulator.MEM_PROT_ALL))

	_, err = emulator.IsMapped(emu, top, 0x2000)
	require.ErrorIs(t, err, emulator.ErrMemArgument)
	err = emulator.MapRange(emu, top+0x800, 0x1000, emulator.MEM_PROT_ALL)
	require.ErrorIs(t, err, emulator.ErrMemArgument)
}
