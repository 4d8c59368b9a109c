// Package testgen projects the canonical test suite into every target
// language.
//
// Two populations share one mechanism: the fixed base tests exercising the
// shared containers (Cache, OrderBook), and the per-unit tests found by
// scanning the canonical Exchange test directory. Each test is transformed,
// given its target header plus any preamble the target needs, and written
// to the target's test tree.
package testgen

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/header"
	"github.com/teranos/wsgen/transpile/transform"
)

// Subdirectories of every test tree
const (
	BaseDir = "base"
	UnitDir = "Exchange"
)

// BaseTests names the fixed infrastructure tests, in generation order
var BaseTests = []string{"Cache", "OrderBook"}

// TestCase is one canonical test and where each target's rendition goes
type TestCase struct {
	// Name is the canonical name without extension ("test.Cache", "testWatchTrades")
	Name string
	Base bool
	// Source is the canonical TypeScript file
	Source  string
	Outputs map[transpile.Target]string
	// Headers are injected between a target's header and the body
	Headers map[transpile.Target][]string
}

// Failure records one test that could not be generated. Target is empty
// when the failure concerns every target (missing source).
type Failure struct {
	Test   string
	Target transpile.Target
	Err    error
}

// Report summarizes a pipeline run
type Report struct {
	Written  []string
	Failures []Failure
}

// Missing returns the failures caused by absent canonical sources
func (r *Report) Missing() []Failure {
	var out []Failure
	for _, f := range r.Failures {
		if errors.Is(f.Err, errors.ErrMissingTestSource) {
			out = append(out, f)
		}
	}
	return out
}

// Err joins every failure other than a missing source, or returns nil
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Failures {
		if !errors.Is(f.Err, errors.ErrMissingTestSource) {
			errs = append(errs, f.Err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// Pipeline derives target tests from the canonical test tree
type Pipeline struct {
	Engine   transform.Engine
	Dialects transpile.Dialects
	// Source is the canonical test root
	Source string
	// Dirs maps each target to its test root
	Dirs map[transpile.Target]string
}

// BaseCase builds the fixed TestCase for a base test ("Cache", "OrderBook")
func (p *Pipeline) BaseCase(base string) TestCase {
	name := "test." + base
	tc := p.newCase(name, BaseDir)
	tc.Base = true
	for _, target := range p.Dialects.Targets() {
		if lines := p.Dialects[target].TestPreamble(base); len(lines) > 0 {
			tc.Headers[target] = lines
		}
	}
	return tc
}

// BaseCases returns the base tests in order
func (p *Pipeline) BaseCases() []TestCase {
	cases := make([]TestCase, 0, len(BaseTests))
	for _, base := range BaseTests {
		cases = append(cases, p.BaseCase(base))
	}
	return cases
}

// UnitCases scans the canonical Exchange directory for per-unit tests,
// sorted by name. A missing directory yields no cases.
func (p *Pipeline) UnitCases() ([]TestCase, error) {
	dir := filepath.Join(p.Source, UnitDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warnw("No per-unit test directory", logger.FieldFile, dir)
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to scan %s", dir)
	}

	var cases []TestCase
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".ts" || strings.HasSuffix(name, ".d.ts") {
			continue
		}
		cases = append(cases, p.newCase(strings.TrimSuffix(name, ".ts"), UnitDir))
	}
	return cases, nil
}

// Cases returns base tests followed by per-unit tests
func (p *Pipeline) Cases() ([]TestCase, error) {
	units, err := p.UnitCases()
	if err != nil {
		return nil, err
	}
	return append(p.BaseCases(), units...), nil
}

func (p *Pipeline) newCase(name, subdir string) TestCase {
	tc := TestCase{
		Name:    name,
		Source:  filepath.Join(p.Source, subdir, name+".ts"),
		Outputs: make(map[transpile.Target]string),
		Headers: make(map[transpile.Target][]string),
	}
	for _, target := range p.Dialects.Targets() {
		d := p.Dialects[target]
		tc.Outputs[target] = filepath.Join(p.Dirs[target], subdir, d.TestFileName(name))
	}
	return tc
}

// Generate renders one test for every target with an output path
func (p *Pipeline) Generate(ctx context.Context, tc TestCase) ([]*transpile.GeneratedFile, error) {
	if _, err := os.Stat(tc.Source); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrMissingTestSource, "%s: %s", tc.Name, tc.Source)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", tc.Source)
	}

	var files []*transpile.GeneratedFile
	for _, target := range p.Dialects.Targets() {
		out, ok := tc.Outputs[target]
		if !ok {
			continue
		}
		body, err := p.Engine.TranspileTest(ctx, tc.Source, target)
		if err != nil {
			return files, errors.Wrapf(err, "failed to transform %s for %s", tc.Name, target)
		}
		lines := header.Assemble(p.Dialects[target], nil)
		lines = append(lines, tc.Headers[target]...)

		file, err := transpile.NewGeneratedFile(target, lines, body, out)
		if err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}

// Run generates every test. Failures are isolated per test and recorded in
// the report; only cancellation or a failed scan aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	cases, err := p.Cases()
	if err != nil {
		return nil, err
	}

	log := logger.ComponentLogger("testgen")
	report := &Report{}
	for _, tc := range cases {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		p.runCase(ctx, tc, report)
	}

	log.Infow("Derived tests",
		logger.FieldCount, len(report.Written),
		"failures", len(report.Failures))
	return report, nil
}

func (p *Pipeline) runCase(ctx context.Context, tc TestCase, report *Report) {
	log := logger.ComponentLogger("testgen")

	files, err := p.Generate(ctx, tc)
	if err != nil {
		if errors.Is(err, errors.ErrMissingTestSource) {
			log.Warnw("Canonical test source missing", logger.FieldTest, tc.Name, logger.FieldFile, tc.Source)
			report.Failures = append(report.Failures, Failure{Test: tc.Name, Err: err})
			return
		}
		log.Errorw("Test generation failed", logger.FieldTest, tc.Name, logger.FieldError, err)
		report.Failures = append(report.Failures, Failure{Test: tc.Name, Err: err})
	}

	for _, f := range files {
		if err := f.Write(); err != nil {
			log.Errorw("Failed to write test", logger.FieldTest, tc.Name, logger.FieldFile, f.Path, logger.FieldError, err)
			report.Failures = append(report.Failures, Failure{Test: tc.Name, Target: f.Target, Err: err})
			continue
		}
		report.Written = append(report.Written, f.Path)
		log.Debugw("Wrote test", logger.FieldTest, tc.Name, logger.FieldTarget, string(f.Target), logger.FieldFile, f.Path)
	}
}
