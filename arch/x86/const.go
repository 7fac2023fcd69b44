package x86

const (
	GDT_ADDR        = 0x3000
	GDT_LIMIT       = 0x1000
	GDT_ENTRY_SIZE  = 0x8
	GDT_ENTRY_COUNT = 16

	GDT_NO_FREE_SLOT = -1
)

// Well-known slots the Linux kernel uses.
const (
	GDT_SLOT_CS32 = 3
	GDT_SLOT_DATA = 5
	GDT_SLOT_CS64 = 6
	GDT_SLOT_FS   = 14
	GDT_SLOT_GS   = 15
)

const (
	FS_SEGMENT_ADDR = 0x6000
	FS_SEGMENT_SIZE = 0x6000
	GS_SEGMENT_ADDR = 0x5000
	GS_SEGMENT_SIZE = 0x1000
)

// Descriptor flags nibble.
const (
	GDT_F_GRANULARITY = 0x8
	GDT_F_PROT_32     = 0x4
	GDT_F_LONG        = 0x2
	GDT_F_AVAILABLE   = 0x1
)

// Descriptor access byte.
const (
	GDT_A_PRESENT = 0x80

	GDT_A_PRIV_3 = 0x60
	GDT_A_PRIV_2 = 0x40
	GDT_A_PRIV_1 = 0x20
	GDT_A_PRIV_0 = 0x0

	GDT_A_CODE = 0x10
	GDT_A_DATA = 0x10
	GDT_A_TSS  = 0x0
	GDT_A_GATE = 0x0

	GDT_A_EXEC          = 0x8
	GDT_A_DATA_WRITABLE = 0x2
	GDT_A_CODE_READABLE = 0x2
	GDT_A_DIR_CON_BIT   = 0x4
)

// Selector low bits.
const (
	GDT_S_GDT    = 0x0
	GDT_S_LDT    = 0x4
	GDT_S_PRIV_3 = 0x3
	GDT_S_PRIV_2 = 0x2
	GDT_S_PRIV_1 = 0x1
	GDT_S_PRIV_0 = 0x0
)
