// Package cgen lowers monomorphized MIR and the aggregates it references to
// C source text. One Emitter owns one output stream; emitters for different
// translation units share only the read-only crate catalog.
package cgen

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"mirc/internal/hir"
	"mirc/internal/layout"
)

// Options configures an Emitter.
type Options struct {
	Target layout.Target
	// Comments appends the MIR form of every assignment and local type.
	Comments bool
}

// DefaultOptions targets x86_64 with comments on.
func DefaultOptions() Options {
	return Options{Target: layout.X86_64LinuxGNU(), Comments: true}
}

// Emitter writes one C translation unit.
type Emitter struct {
	out    *bufio.Writer
	crate  *hir.Crate
	policy *layout.Policy
	engine *layout.LayoutEngine
	opts   Options
}

// New returns an emitter writing to w.
func New(w io.Writer, crate *hir.Crate, opts Options) *Emitter {
	if opts.Target.PtrSize == 0 {
		opts.Target = layout.X86_64LinuxGNU()
	}
	engine := layout.New(opts.Target, crate)
	return &Emitter{
		out:    bufio.NewWriter(w),
		crate:  crate,
		policy: engine.Policy,
		engine: engine,
		opts:   opts,
	}
}

// Flush writes buffered output through to the underlying writer.
func (e *Emitter) Flush() error {
	if err := e.out.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Finalise flushes the unit.
func (e *Emitter) Finalise() error {
	return e.Flush()
}

func (e *Emitter) write(s string) error {
	if _, err := e.out.WriteString(s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (e *Emitter) writeBuilder(sb *strings.Builder) error {
	return e.write(sb.String())
}
