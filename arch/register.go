package arch

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unsafe"

	"github.com/wnxd/microx86/emulator"
)

type RegisterManager struct {
	ctx     emulator.RegisterContext
	mapping map[string]emulator.Reg
	known   map[emulator.Reg]struct{}
	pc, sp  emulator.Reg
}

func NewRegisterManager(ctx emulator.RegisterContext, mapping map[string]emulator.Reg, pc, sp string) (*RegisterManager, error) {
	rm := &RegisterManager{
		ctx:     ctx,
		mapping: make(map[string]emulator.Reg, len(mapping)),
		known:   make(map[emulator.Reg]struct{}, len(mapping)),
	}
	for name, reg := range mapping {
		rm.mapping[strings.ToLower(name)] = reg
		rm.known[reg] = struct{}{}
	}
	var err error
	if rm.pc, err = rm.Resolve(pc); err != nil {
		return nil, err
	}
	if rm.sp, err = rm.Resolve(sp); err != nil {
		return nil, err
	}
	return rm, nil
}

func ComposeMapping(tables ...map[string]emulator.Reg) (map[string]emulator.Reg, error) {
	mapping := make(map[string]emulator.Reg)
	for _, table := range tables {
		for name, reg := range table {
			if _, ok := mapping[name]; ok {
				return nil, fmt.Errorf("%w: %s", ErrRegisterDuplicate, name)
			}
			mapping[name] = reg
		}
	}
	return mapping, nil
}

func (rm *RegisterManager) Resolve(reg any) (emulator.Reg, error) {
	switch v := reg.(type) {
	case string:
		if r, ok := rm.mapping[strings.ToLower(v)]; ok {
			return r, nil
		}
		return 0, fmt.Errorf("%w: %s", ErrRegisterNotFound, v)
	case emulator.Reg:
		if _, ok := rm.known[v]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrRegisterNotFound, v)
	}
	return 0, fmt.Errorf("%w: %v", ErrRegisterNotFound, reg)
}

func (rm *RegisterManager) Read(reg any) (uint64, error) {
	r, err := rm.Resolve(reg)
	if err != nil {
		return 0, err
	}
	return rm.ctx.RegRead(r)
}

func (rm *RegisterManager) Write(reg any, value uint64) error {
	r, err := rm.Resolve(reg)
	if err != nil {
		return err
	}
	return rm.ctx.RegWrite(r, value)
}

// ReadPtr and WritePtr pass structured values (table registers, MSR
// records) straight to the core; reg is not checked against the mapping.
func (rm *RegisterManager) ReadPtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	return rm.ctx.RegReadPtr(reg, ptr)
}

func (rm *RegisterManager) WritePtr(reg emulator.Reg, ptr unsafe.Pointer) error {
	return rm.ctx.RegWritePtr(reg, ptr)
}

func (rm *RegisterManager) ArchPC() emulator.Reg {
	return rm.pc
}

func (rm *RegisterManager) ArchSP() emulator.Reg {
	return rm.sp
}

func (rm *RegisterManager) PC() (uint64, error) {
	return rm.ctx.RegRead(rm.pc)
}

func (rm *RegisterManager) SetPC(value uint64) error {
	return rm.ctx.RegWrite(rm.pc, value)
}

func (rm *RegisterManager) SP() (uint64, error) {
	return rm.ctx.RegRead(rm.sp)
}

func (rm *RegisterManager) SetSP(value uint64) error {
	return rm.ctx.RegWrite(rm.sp, value)
}

func (rm *RegisterManager) Mapping() map[string]emulator.Reg {
	return maps.Clone(rm.mapping)
}

func (rm *RegisterManager) Names() []string {
	return slices.Sorted(maps.Keys(rm.mapping))
}

func (rm *RegisterManager) Save() (map[string]uint64, error) {
	names := rm.Names()
	regs := make([]emulator.Reg, len(names))
	for i, name := range names {
		regs[i] = rm.mapping[name]
	}
	vals, err := rm.ctx.RegReadBatch(regs...)
	if err != nil {
		return nil, err
	}
	ctx := make(map[string]uint64, len(names))
	for i, name := range names {
		ctx[name] = vals[i]
	}
	return ctx, nil
}

func (rm *RegisterManager) Restore(ctx map[string]uint64) error {
	names := slices.Sorted(maps.Keys(ctx))
	var regs []emulator.Reg
	var vals []uint64
	for _, name := range names {
		reg, err := rm.Resolve(name)
		if err != nil {
			return err
		}
		regs = append(regs, reg)
		vals = append(vals, ctx[name])
	}
	return rm.ctx.RegWriteBatch(regs, vals)
}
