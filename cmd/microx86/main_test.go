package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRegs(t *testing.T) {
	out, err := run(t, "regs", "--arch", "x86")
	require.NoError(t, err)
	assert.Contains(t, out, "pc=eip sp=esp")
	assert.Contains(t, out, "32-bit")
	assert.Contains(t, out, "eax")
	assert.NotContains(t, out, "rax")

	out, err = run(t, "regs", "--arch", "x8664")
	require.NoError(t, err)
	assert.Contains(t, out, "64-bit low byte")
	assert.Contains(t, out, "r8b")
	assert.Contains(t, out, "fsbase")
}

func TestGDT(t *testing.T) {
	out, err := run(t, "gdt", "--arch", "x86")
	require.NoError(t, err)
	assert.Contains(t, out, "gdt @ 0x3000 limit 0x1000")
	assert.Contains(t, out, "[3] ")
	assert.Contains(t, out, "[5] ")
	assert.Contains(t, out, "[14] base=0x6000")
	assert.Contains(t, out, "[15] base=0x5000")
	assert.Contains(t, out, "cs = 0x1b")
	assert.NotContains(t, out, "msr bases")

	out, err = run(t, "gdt", "--arch", "x8664", "--gdt-addr", "0x8000")
	require.NoError(t, err)
	assert.Contains(t, out, "gdt @ 0x8000")
	assert.Contains(t, out, "[6] ")
	assert.NotContains(t, out, "[14]")
	assert.Contains(t, out, "msr bases")
	assert.Contains(t, out, "fs = 0x6000")
	assert.Contains(t, out, "gs = 0x5000")
}

func TestGDTBadConfig(t *testing.T) {
	_, err := run(t, "gdt", "--gdt-entries", "1024")
	require.Error(t, err)
}

func TestDisasm(t *testing.T) {
	out, err := run(t, "disasm", "--arch", "x8664", "48c7c001000000c3")
	require.NoError(t, err)
	assert.Contains(t, out, "mov")
	assert.Contains(t, out, "ret")

	out, err = run(t, "disasm", "--count", "1", "90c3")
	require.NoError(t, err)
	assert.NotContains(t, out, "ret")
}

func TestErrors(t *testing.T) {
	_, err := run(t, "regs", "--arch", "mips")
	require.Error(t, err)

	_, err = run(t, "regs", "--backend", "nope")
	require.Error(t, err)

	_, err = run(t, "disasm", "zz")
	require.Error(t, err)

	_, err = run(t, "disasm", "--syntax", "nasm", "90")
	require.Error(t, err)
}
