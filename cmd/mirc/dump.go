package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"mirc/internal/hir"
	"mirc/internal/irfile"
	"mirc/internal/mir"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [bundle] [function-path...]",
	Short: "Print the MIR of the bundle's function bodies",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundlePath, filters, err := splitBundleArg(args)
		if err != nil {
			return err
		}
		bundle, err := irfile.Load(bundlePath)
		if err != nil {
			return err
		}
		return dumpBodies(cmd.OutOrStdout(), bundle.Crate, filters)
	},
}

func dumpBodies(out io.Writer, c *hir.Crate, filters []string) error {
	fns := make([]*hir.Function, 0, len(c.Functions))
	for _, fn := range c.Functions {
		if fn.Body == nil {
			continue
		}
		if len(filters) > 0 && !slices.Contains(filters, fn.Path.String()) {
			continue
		}
		fns = append(fns, fn)
	}
	slices.SortFunc(fns, func(a, b *hir.Function) int { return strings.Compare(a.Path.String(), b.Path.String()) })
	for i, fn := range fns {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if err := mir.DumpBody(out, fn.Path.String(), fn.Body); err != nil {
			return fmt.Errorf("%s: %w", fn.Path, err)
		}
	}
	return nil
}
