package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"mirc/internal/hir"
	"mirc/internal/irfile"
	"mirc/internal/layout"
	"mirc/internal/types"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [bundle] [type-path...]",
	Short: "Print the C layout of the bundle's aggregates",
	Long: `Print size, alignment and field offsets of every non-generic struct, enum and
union in the bundle. Type paths restrict the listing; without a bundle argument
the bundle named by mirc.toml is used.`,
	RunE: layoutExecution,
}

func layoutExecution(cmd *cobra.Command, args []string) error {
	targetName, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	target, err := layout.TargetByName(targetName)
	if err != nil {
		return err
	}
	bundlePath, filters, err := splitBundleArg(args)
	if err != nil {
		return err
	}
	bundle, err := irfile.Load(bundlePath)
	if err != nil {
		return err
	}
	return describeLayouts(cmd.OutOrStdout(), bundle.Crate, target, filters)
}

// splitBundleArg treats the first argument as the bundle when it names an
// existing file and falls back to the manifest otherwise.
func splitBundleArg(args []string) (string, []string, error) {
	if len(args) > 0 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return args[0], args[1:], nil
		}
	}
	m, found, err := loadProjectManifest(".")
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, errors.New(noManifestMessage)
	}
	return m.resolve(m.Config.Build.Bundle), args, nil
}

type aggregate struct {
	kind   string
	path   types.SimplePath
	ty     types.TypeRef
	fields []string
}

func collectAggregates(c *hir.Crate) []aggregate {
	var out []aggregate
	for _, s := range c.Structs {
		if len(s.Params) > 0 {
			continue
		}
		names := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			names[i] = f.Name
			if names[i] == "" {
				names[i] = fmt.Sprintf("%d", i)
			}
		}
		out = append(out, aggregate{"struct", s.Path, types.Named(types.BindingStruct, s.Path.Generic()), names})
	}
	for _, e := range c.Enums {
		if len(e.Params) == 0 {
			out = append(out, aggregate{"enum", e.Path, types.Named(types.BindingEnum, e.Path.Generic()), nil})
		}
	}
	for _, u := range c.Unions {
		if len(u.Params) == 0 {
			out = append(out, aggregate{"union", u.Path, types.Named(types.BindingUnion, u.Path.Generic()), nil})
		}
	}
	slices.SortFunc(out, func(a, b aggregate) int { return strings.Compare(a.path.String(), b.path.String()) })
	return out
}

func describeLayouts(out io.Writer, c *hir.Crate, target layout.Target, filters []string) error {
	engine := layout.New(target, c)
	aggs := collectAggregates(c)
	seen := make(map[string]bool, len(filters))
	var errs []error
	for _, a := range aggs {
		name := a.path.String()
		if len(filters) > 0 && !slices.Contains(filters, name) {
			continue
		}
		seen[name] = true
		l, err := engine.LayoutOf(a.ty)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		fmt.Fprintf(out, "%s %s: size %d, align %d", a.kind, name, l.Size, l.Align)
		if l.Flexible {
			fmt.Fprint(out, ", unsized tail")
		}
		if a.kind == "enum" && l.TagSize > 0 {
			fmt.Fprintf(out, ", tag %d, payload at %d", l.TagSize, l.PayloadOffset)
		}
		fmt.Fprintln(out)
		for i, off := range l.FieldOffsets {
			if i < len(a.fields) {
				fmt.Fprintf(out, "  .%s @%d\n", a.fields[i], off)
			}
		}
	}
	for _, f := range filters {
		if !seen[f] {
			errs = append(errs, fmt.Errorf("no non-generic aggregate named %q", f))
		}
	}
	return errors.Join(errs...)
}

func init() {
	layoutCmd.Flags().String("target", "x86_64", "target ABI (x86_64|i686|aarch64)")
}
