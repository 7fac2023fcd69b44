// microx86 inspects the x86 architecture variants: register tables,
// a freshly built GDT and instruction decoding.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/wnxd/microx86/arch"
	"github.com/wnxd/microx86/arch/x86"
	"github.com/wnxd/microx86/emulator"
	"github.com/wnxd/microx86/emulator/soft"
)

var backends = map[string]emulator.EmuCtor{
	"soft": soft.New,
}

type config struct {
	arch       string
	backend    string
	syntax     string
	logLevel   string
	gdtAddr    uint64
	gdtEntries int
	addr       uint64
	count      int
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var cfg config

	var rootCmd = &cobra.Command{
		Use:          "microx86",
		Short:        "x86 architecture variant inspector",
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&cfg.arch, "arch", "x8664", "Architecture variant (a8086, x86, x8664)")
	rootCmd.PersistentFlags().StringVar(&cfg.backend, "backend", "soft", "Emulation core backend")
	rootCmd.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	var regsCmd = &cobra.Command{
		Use:   "regs",
		Short: "Print the register names of a variant grouped by width",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArch(&cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			regs, err := a.Registers()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), regsTree(a, regs.Mapping()).String())
			return nil
		},
	}

	var gdtCmd = &cobra.Command{
		Use:   "gdt",
		Short: "Build the standard segments and dump the decoded GDT",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArch(&cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return dumpGDT(cmd.OutOrStdout(), a, &cfg)
		},
	}
	gdtCmd.Flags().Uint64Var(&cfg.gdtAddr, "gdt-addr", x86.GDT_ADDR, "Guest address of the table")
	gdtCmd.Flags().IntVar(&cfg.gdtEntries, "gdt-entries", x86.GDT_ENTRY_COUNT, "Number of descriptor slots")

	var disasmCmd = &cobra.Command{
		Use:   "disasm <hex>",
		Short: "Decode hex-encoded machine code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := hex.DecodeString(strings.ReplaceAll(args[0], " ", ""))
			if err != nil {
				return fmt.Errorf("decode hex: %w", err)
			}
			a, err := openArch(&cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			dis, err := a.Disassembler()
			if err != nil {
				return err
			}
			insts, err := dis.DisasmAll(code, cfg.addr, cfg.count)
			if err != nil {
				return err
			}
			for _, inst := range insts {
				fmt.Fprintf(cmd.OutOrStdout(), "%#08x  %-20x  %s\n", inst.Addr, inst.Bytes, inst.Text)
			}
			return nil
		},
	}
	disasmCmd.Flags().StringVar(&cfg.syntax, "syntax", "intel", "Output syntax (intel, gnu)")
	disasmCmd.Flags().Uint64Var(&cfg.addr, "addr", 0, "Address of the first byte")
	disasmCmd.Flags().IntVar(&cfg.count, "count", 0, "Maximum instructions to decode, 0 for all")

	rootCmd.AddCommand(regsCmd, gdtCmd, disasmCmd)
	return rootCmd
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func openArch(cfg *config) (arch.Arch, error) {
	typ := emulator.ParseArch(strings.ToLower(cfg.arch))
	if typ == emulator.ARCH_UNKNOWN {
		return nil, fmt.Errorf("arch %q: %w", cfg.arch, emulator.ErrArchUnsupported)
	}
	ctor, ok := backends[cfg.backend]
	if !ok {
		return nil, fmt.Errorf("backend %q: %w", cfg.backend, emulator.ErrNotImplemented)
	}
	logger, err := newLogger(cfg.logLevel)
	if err != nil {
		return nil, err
	}
	syntax := arch.SYNTAX_INTEL
	switch cfg.syntax {
	case "", "intel":
	case "gnu", "att":
		syntax = arch.SYNTAX_GNU
	default:
		return nil, fmt.Errorf("syntax %q: unknown", cfg.syntax)
	}
	return arch.New(typ, arch.WithEmulatorCtor(ctor), arch.WithLogger(logger), arch.WithSyntax(syntax))
}

var widthTables = []struct {
	name  string
	table map[string]emulator.Reg
}{
	{"8-bit", x86.RegMap8},
	{"16-bit", x86.RegMap16},
	{"32-bit", x86.RegMap32},
	{"64-bit", x86.RegMap64},
	{"64-bit low byte", x86.RegMap64B},
	{"64-bit low word", x86.RegMap64W},
	{"64-bit low dword", x86.RegMap64D},
	{"control", x86.RegMapCR},
	{"x87 stack", x86.RegMapST},
	{"misc", x86.RegMapMisc},
	{"segment base", x86.RegMapSegBase},
}

func regsTree(a arch.Arch, mapping map[string]emulator.Reg) treeprint.Tree {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s (%d-bit), pc=%s sp=%s", a.Type(), a.Bits(), a.PC(), a.SP()))
	for _, wt := range widthTables {
		var names []string
		for name, reg := range wt.table {
			if mapped, ok := mapping[name]; ok && mapped == reg {
				names = append(names, name)
			}
		}
		if len(names) == 0 {
			continue
		}
		slices.Sort(names)
		branch := tree.AddBranch(wt.name)
		for _, name := range names {
			branch.AddNode(name)
		}
	}
	return tree
}

type gdtOwner interface {
	NewGDTManager(opts ...x86.GDTOption) (*x86.GDTManager, error)
}

func dumpGDT(w io.Writer, a arch.Arch, cfg *config) error {
	owner, ok := a.(gdtOwner)
	if !ok {
		return fmt.Errorf("%s: %w", a.Type(), arch.ErrArchUnsupported)
	}
	gdt, err := owner.NewGDTManager(x86.WithGDTAddr(cfg.gdtAddr), x86.WithGDTEntries(cfg.gdtEntries))
	if err != nil {
		return err
	}
	sels := make(map[string]x86.Selector)
	bases := make(map[string]uint64)
	if a64, ok := a.(*x86.X8664); ok {
		if sels["cs"], err = gdt.SetupCS64(); err != nil {
			return err
		}
		if sels["ss"], err = gdt.SetupDataSegments64(); err != nil {
			return err
		}
		if err = a64.SetFS(x86.FS_SEGMENT_ADDR, x86.FS_SEGMENT_SIZE); err != nil {
			return err
		}
		if err = a64.SetGS(x86.GS_SEGMENT_ADDR, x86.GS_SEGMENT_SIZE); err != nil {
			return err
		}
		if bases["fs"], err = a64.GetFS(); err != nil {
			return err
		}
		if bases["gs"], err = a64.GetGS(); err != nil {
			return err
		}
	} else {
		if sels["cs"], err = gdt.SetupCS32(); err != nil {
			return err
		}
		if sels["ds"], err = gdt.SetupDataSegments32(); err != nil {
			return err
		}
		if sels["fs"], err = gdt.SetupFS32(x86.FS_SEGMENT_ADDR, x86.FS_SEGMENT_SIZE); err != nil {
			return err
		}
		if sels["gs"], err = gdt.SetupGS32(x86.GS_SEGMENT_ADDR, x86.GS_SEGMENT_SIZE); err != nil {
			return err
		}
	}

	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("gdt @ %#x limit %#x", gdt.Addr(), gdt.Limit()))
	for i := 0; i < gdt.Entries(); i++ {
		desc, err := gdt.Entry(i)
		if err != nil {
			return err
		}
		if desc.IsNull() {
			continue
		}
		tree.AddNode(fmt.Sprintf("[%d] %s", i, desc))
	}
	selBranch := tree.AddBranch("selectors")
	for _, name := range slices.Sorted(maps.Keys(sels)) {
		sel := sels[name]
		selBranch.AddNode(fmt.Sprintf("%s = %#04x (index %d, rpl %d)", name, uint16(sel), sel.Index(), sel.RPL()))
	}
	if len(bases) > 0 {
		msrBranch := tree.AddBranch("msr bases")
		for _, name := range slices.Sorted(maps.Keys(bases)) {
			msrBranch.AddNode(fmt.Sprintf("%s = %#x", name, bases[name]))
		}
	}
	fmt.Fprintln(w, tree.String())
	return nil
}
