package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mirc/internal/buildpipeline"
	"mirc/internal/irfile"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [bundle]",
	Short: "Translate the units of a MIR bundle to C",
	Long:  "Translate every unit of a MIR bundle to C. Without an argument the bundle named by mirc.toml is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

// buildSettings is the merged view of flags, manifest and environment.
type buildSettings struct {
	bundle   string
	outDir   string
	jobs     int
	target   string
	comments bool
	units    []string
	failFast bool
	ui       uiMode
	timings  bool
	root     string
}

func buildExecution(cmd *cobra.Command, args []string) error {
	settings, err := readBuildSettings(cmd, args)
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	bundle, err := irfile.Load(settings.bundle)
	if err != nil {
		return err
	}
	req := buildpipeline.Request{
		BundlePath: settings.bundle,
		Bundle:     bundle,
		OutDir:     settings.outDir,
		Jobs:       settings.jobs,
		Target:     settings.target,
		Comments:   settings.comments,
		Units:      settings.units,
		FailFast:   settings.failFast,
	}

	var res buildpipeline.Result
	if shouldUseTUI(settings.ui) {
		res, err = runBuildWithUI(cmd.Context(), "mirc build", unitNames(bundle, settings.units), &req)
	} else {
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	out := cmd.OutOrStdout()
	if settings.timings {
		printStageTimings(out, res)
	}
	if err != nil {
		dumpTraceRing(cmd, cmd.ErrOrStderr())
		return err
	}
	for _, u := range res.Units {
		if _, printErr := fmt.Fprintf(out, "wrote %s\n", formatPathForOutput(settings.root, u.Output)); printErr != nil {
			return printErr
		}
	}
	return nil
}

func readBuildSettings(cmd *cobra.Command, args []string) (buildSettings, error) {
	flags := cmd.Flags()
	outFlag, err := flags.GetString("out")
	if err != nil {
		return buildSettings{}, err
	}
	jobsFlag, err := flags.GetInt("jobs")
	if err != nil {
		return buildSettings{}, err
	}
	targetFlag, err := flags.GetString("target")
	if err != nil {
		return buildSettings{}, err
	}
	noComments, err := flags.GetBool("no-comments")
	if err != nil {
		return buildSettings{}, err
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return buildSettings{}, err
	}
	units, err := flags.GetStringSlice("units")
	if err != nil {
		return buildSettings{}, err
	}
	failFast, err := flags.GetBool("fail-fast")
	if err != nil {
		return buildSettings{}, err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return buildSettings{}, fmt.Errorf("failed to get timings flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return buildSettings{}, err
	}
	if jobsFlag < 0 {
		return buildSettings{}, fmt.Errorf("--jobs must not be negative")
	}

	s := buildSettings{
		jobs:     loadEnvDefaults().jobs,
		comments: true,
		units:    units,
		failFast: failFast,
		ui:       mode,
		timings:  timings,
	}

	var manifest *projectManifest
	if len(args) == 1 {
		s.bundle = args[0]
	} else {
		m, found, err := loadProjectManifest(".")
		if err != nil {
			return buildSettings{}, err
		}
		if !found {
			return buildSettings{}, errors.New(noManifestMessage)
		}
		manifest = m
		s.root = m.Root
		s.bundle = m.resolve(m.Config.Build.Bundle)
	}
	if manifest.isDefined("out_dir") {
		s.outDir = manifest.resolve(manifest.Config.Build.OutDir)
	}
	if manifest.isDefined("jobs") {
		s.jobs = manifest.Config.Build.Jobs
	}
	if manifest.isDefined("target") {
		s.target = manifest.Config.Build.Target
	}
	if manifest.isDefined("comments") {
		s.comments = manifest.Config.Build.Comments
	}

	if flags.Changed("out") {
		s.outDir = outFlag
	} else if s.outDir == "" {
		s.outDir = manifest.resolve(outFlag)
	}
	if flags.Changed("jobs") {
		s.jobs = jobsFlag
	}
	if flags.Changed("target") {
		s.target = targetFlag
	}
	if noComments {
		s.comments = false
	}
	if s.root == "" {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			s.root = cwd
		}
	}
	return s, nil
}

func unitNames(b *irfile.Bundle, selected []string) []string {
	if len(selected) > 0 {
		return selected
	}
	names := make([]string, 0, len(b.Units))
	for _, u := range b.Units {
		names = append(names, u.Name)
	}
	return names
}

func printStageTimings(out io.Writer, res buildpipeline.Result) {
	if out == nil || res.Timings == nil {
		return
	}
	if res.Timings.Has(buildpipeline.StageLoad) {
		fmt.Fprintf(out, "loaded %.1f ms\n", toMillis(res.Timings.Duration(buildpipeline.StageLoad)))
	}
	if res.Timings.Has(buildpipeline.StageTranslate) {
		fmt.Fprintf(out, "translated %.1f ms (cpu)\n", toMillis(res.Timings.Duration(buildpipeline.StageTranslate)))
	}
	if len(res.Report.Phases) > 0 {
		fmt.Fprint(out, res.Report.Summary())
	}
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func init() {
	buildCmd.Flags().StringP("out", "o", "target/c", "output directory for generated C files")
	buildCmd.Flags().IntP("jobs", "j", 0, "units translated in parallel (0 = GOMAXPROCS, env MIRC_JOBS)")
	buildCmd.Flags().String("target", "x86_64", "target ABI (x86_64|i686|aarch64)")
	buildCmd.Flags().Bool("no-comments", false, "omit MIR comments from the generated C")
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
	buildCmd.Flags().StringSlice("units", nil, "translate only the named units")
	buildCmd.Flags().Bool("fail-fast", false, "stop the remaining units after the first failure")
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
