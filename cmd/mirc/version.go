package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mirc/internal/layout"
	"mirc/internal/version"
)

// buildInfo is what `mirc version --json` prints.
type buildInfo struct {
	Version string   `json:"version"`
	Targets []string `json:"targets"`
	Commit  string   `json:"commit,omitempty"`
	Built   string   `json:"built,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show mirc version and supported targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, err := cmd.Flags().GetBool("json")
		if err != nil {
			return err
		}
		full, err := cmd.Flags().GetBool("full")
		if err != nil {
			return err
		}
		info := currentBuild(full)
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		printBuild(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "print as JSON")
	versionCmd.Flags().Bool("full", false, "include commit and build date")
}

func currentBuild(full bool) buildInfo {
	info := buildInfo{Version: strings.TrimSpace(version.Version), Targets: layout.Targets()}
	if info.Version == "" {
		info.Version = "dev"
	}
	if full {
		info.Commit = orUnknown(version.GitCommit)
		info.Built = orUnknown(version.BuildDate)
	}
	return info
}

func printBuild(out io.Writer, info buildInfo) {
	v := info.Version
	if v == version.Version {
		v = version.Colored()
	}
	fmt.Fprintf(out, "mirc %s (targets: %s)\n", v, strings.Join(info.Targets, ", "))
	if info.Commit != "" {
		fmt.Fprintf(out, "commit: %s\n", info.Commit)
	}
	if info.Built != "" {
		fmt.Fprintf(out, "built:  %s\n", info.Built)
	}
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
