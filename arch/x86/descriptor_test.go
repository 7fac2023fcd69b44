package x86_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnxd/microx86/arch/x86"
)

func TestDescriptorLayout(t *testing.T) {
	d := x86.NewDescriptor(0, 0xFFFFF000, 0xFE, x86.GDT_F_PROT_32)
	assert.Equal(t, uint64(0x004FFE000000F000), d.Uint64())
	assert.Equal(t, []byte{0x00, 0xF0, 0x00, 0x00, 0x00, 0xFE, 0x4F, 0x00}, d.Bytes())

	d = x86.NewDescriptor(0xAABBCCDD, 0x12345, 0x92, 0xC)
	assert.Equal(t, []byte{0x45, 0x23, 0xDD, 0xCC, 0xBB, 0x92, 0xC1, 0xAA}, d.Bytes())
}

func TestDescriptorRoundTrip(t *testing.T) {
	tests := []x86.Descriptor{
		{},
		{Base: 0xFFFFFFFF, Limit: 0xFFFFF, Access: 0xFF, Flags: 0xF},
		{Base: 0x01000000, Limit: 0x10000, Access: 0x80, Flags: 0x8},
		{Base: 0x00FFFFFF, Limit: 0x0FFFF, Access: 0x01, Flags: 0x1},
		{Base: 0x6000, Limit: 0x6000, Access: 0xF6, Flags: 0x4},
		{Base: 0x12345678, Limit: 0xABCDE, Access: 0x9A, Flags: 0x6},
	}
	for _, want := range tests {
		got, err := x86.DecodeDescriptor(want.Bytes())
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, want, x86.DescriptorFromUint64(want.Uint64()))
	}
}

func TestDescriptorTruncatesToHardwareFields(t *testing.T) {
	d := x86.NewDescriptor(0x1_2345_6789, 0xFFFFF000, 0xFE, 0xF4)
	assert.Equal(t, uint32(0x23456789), d.Base)
	assert.Equal(t, uint32(0xFF000), d.Limit)
	assert.Equal(t, uint8(0x4), d.Flags)
}

func TestDecodeDescriptorSize(t *testing.T) {
	_, err := x86.DecodeDescriptor(make([]byte, 7))
	require.ErrorIs(t, err, x86.ErrGDTEntrySize)
}

func TestDescriptorAccessors(t *testing.T) {
	d := x86.NewDescriptor(0, 0xFFFFF, 0xFE, x86.GDT_F_GRANULARITY|x86.GDT_F_LONG)
	assert.True(t, d.Present())
	assert.True(t, d.IsCode())
	assert.Equal(t, uint8(3), d.DPL())
	assert.True(t, d.LongMode())
	assert.Equal(t, uint64(0xFFFFFFFF), d.ByteLimit())

	d = x86.NewDescriptor(0, 0x1000, 0x92, 0)
	assert.False(t, d.IsCode())
	assert.Equal(t, uint8(0), d.DPL())
	assert.Equal(t, uint64(0x1000), d.ByteLimit())
	assert.True(t, x86.Descriptor{}.IsNull())
}

func TestMakeSelector(t *testing.T) {
	for index := range x86.GDT_ENTRY_COUNT {
		for flags := uint16(0); flags < 8; flags++ {
			sel := x86.MakeSelector(index, flags)
			assert.Equal(t, x86.Selector(index<<3|int(flags)), sel)
			assert.Equal(t, flags, uint16(sel)&0x7)
			assert.Equal(t, index, sel.Index())
		}
	}
	sel := x86.MakeSelector(14, x86.GDT_S_LDT|x86.GDT_S_PRIV_3)
	assert.True(t, sel.IsLDT())
	assert.Equal(t, uint16(x86.GDT_S_LDT), sel.Table())
	assert.Equal(t, uint8(3), sel.RPL())
	assert.Equal(t, x86.Selector(0x77), sel)
}
