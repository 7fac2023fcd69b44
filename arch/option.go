package arch

import (
	"io"
	"log/slog"

	"github.com/wnxd/microx86/emulator"
)

type Syntax int

const (
	SYNTAX_INTEL Syntax = iota
	SYNTAX_GNU
)

type Options struct {
	Emulator     emulator.Emulator
	EmulatorCtor emulator.EmuCtor
	Syntax       Syntax
	Logger       *slog.Logger
}

type Option func(*Options)

// The variant does not close an injected core.
func WithEmulator(emu emulator.Emulator) Option {
	return func(o *Options) {
		o.Emulator = emu
	}
}

func WithEmulatorCtor(ctor emulator.EmuCtor) Option {
	return func(o *Options) {
		o.EmulatorCtor = ctor
	}
}

func WithSyntax(syntax Syntax) Option {
	return func(o *Options) {
		o.Syntax = syntax
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{
		EmulatorCtor: emulator.New,
		Logger:       DiscardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
