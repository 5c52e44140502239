// Package buildpipeline translates every unit of a bundle to C, in
// parallel, writing one source file per unit.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"mirc/internal/backend/cgen"
	"mirc/internal/irfile"
	"mirc/internal/layout"
	"mirc/internal/observ"
	"mirc/internal/trace"
	"mirc/internal/trans"
)

// Request configures a build.
type Request struct {
	// BundlePath is read when Bundle is nil.
	BundlePath string
	Bundle     *irfile.Bundle
	OutDir     string
	// Jobs bounds the number of units translated at once; zero means
	// GOMAXPROCS.
	Jobs int
	// Target is a layout.TargetByName name; empty selects the default.
	Target   string
	Comments bool
	// Units restricts the build to the named units.
	Units []string
	// FailFast cancels the remaining units after the first failure.
	FailFast bool
	Progress ProgressSink
}

// UnitResult describes one translated unit.
type UnitResult struct {
	Name    string
	Output  string
	Elapsed time.Duration
	Err     error
}

// Result captures build artefacts and timings.
type Result struct {
	Units   []UnitResult
	Timings *Timings
	Report  observ.Report
}

// Build loads the bundle and writes <OutDir>/<unit>.c for every selected
// unit. A failed unit leaves no output file; the returned error joins the
// failures of all units.
func Build(ctx context.Context, req *Request) (Result, error) {
	if req == nil {
		return Result{Timings: &Timings{}}, fmt.Errorf("missing build request")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timer := observ.NewTimer()
	result, err := build(ctx, req, timer)
	result.Report = timer.Report()
	return result, err
}

func build(ctx context.Context, req *Request, timer *observ.Timer) (Result, error) {
	result := Result{Timings: &Timings{}}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "build", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: span.ID()})

	target := layout.X86_64LinuxGNU()
	if req.Target != "" {
		t, err := layout.TargetByName(req.Target)
		if err != nil {
			return result, err
		}
		target = t
	}
	opts := cgen.Options{Target: target, Comments: req.Comments}

	loadStart := time.Now()
	idx := timer.Begin("load")
	emitStage(req.Progress, "", StageLoad, StatusWorking, nil, 0)
	bundle, err := loadBundle(req)
	timer.End(idx, req.BundlePath)
	result.Timings.Set(StageLoad, time.Since(loadStart))
	if err != nil {
		emitStage(req.Progress, "", StageLoad, StatusError, err, 0)
		return result, err
	}
	emitStage(req.Progress, "", StageLoad, StatusDone, nil, result.Timings.Duration(StageLoad))

	units, err := selectUnits(bundle, req.Units)
	if err != nil {
		return result, err
	}
	if req.OutDir == "" {
		return result, fmt.Errorf("missing output directory")
	}
	if err := os.MkdirAll(req.OutDir, 0o750); err != nil {
		return result, fmt.Errorf("failed to create output dir: %w", err)
	}
	for _, u := range units {
		emitStage(req.Progress, u.Name, StageTranslate, StatusQueued, nil, 0)
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span.WithExtra("units", strconv.Itoa(len(units))).WithExtra("jobs", strconv.Itoa(jobs))

	// Each goroutine writes only its own slot.
	result.Units = make([]UnitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(units))))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				result.Units[i] = UnitResult{Name: u.Name, Err: err}
				emitStage(req.Progress, u.Name, StageTranslate, StatusError, err, 0)
				return nil
			}
			res := buildUnit(gctx, bundle, u, req.OutDir, opts, req.Progress, timer, result.Timings)
			result.Units[i] = res
			if res.Err != nil && req.FailFast {
				return res.Err
			}
			return nil
		})
	}
	// Unit failures are collected from the slots below.
	_ = g.Wait()

	var errs []error
	for _, u := range result.Units {
		if u.Err != nil {
			errs = append(errs, u.Err)
		}
	}
	return result, errors.Join(errs...)
}

func loadBundle(req *Request) (*irfile.Bundle, error) {
	if req.Bundle != nil {
		if err := req.Bundle.Check(); err != nil {
			return nil, err
		}
		return req.Bundle, nil
	}
	if req.BundlePath == "" {
		return nil, fmt.Errorf("missing bundle")
	}
	return irfile.Load(req.BundlePath)
}

func selectUnits(b *irfile.Bundle, names []string) ([]trans.Unit, error) {
	if len(names) == 0 {
		return b.Units, nil
	}
	out := make([]trans.Unit, 0, len(names))
	for _, n := range names {
		u, ok := b.Unit(n)
		if !ok {
			return nil, fmt.Errorf("unknown unit %q", n)
		}
		out = append(out, u)
	}
	return out, nil
}

// OutputPath is where the C source of unit is written.
func OutputPath(outDir, unit string) string {
	return filepath.Join(outDir, unit+".c")
}

func buildUnit(ctx context.Context, b *irfile.Bundle, u trans.Unit, outDir string, opts cgen.Options, sink ProgressSink, timer *observ.Timer, timings *Timings) UnitResult {
	res := UnitResult{Name: u.Name, Output: OutputPath(outDir, u.Name)}
	start := time.Now()
	idx := timer.Begin("unit " + u.Name)
	emitStage(sink, u.Name, StageTranslate, StatusWorking, nil, 0)

	err := irfile.WriteAtomic(res.Output, func(w io.Writer) error {
		return trans.Translate(ctx, b.Crate, u, cgen.New(w, b.Crate, opts))
	})
	res.Elapsed = time.Since(start)
	timings.Add(StageTranslate, res.Elapsed)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", u.Name, err)
		res.Output = ""
		timer.End(idx, "failed")
		emitStage(sink, u.Name, StageTranslate, StatusError, res.Err, res.Elapsed)
		return res
	}
	timer.End(idx, fmt.Sprintf("%d functions", len(u.Functions)))
	emitStage(sink, u.Name, StageTranslate, StatusDone, nil, res.Elapsed)
	return res
}

func emitStage(sink ProgressSink, unit string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Unit: unit, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
