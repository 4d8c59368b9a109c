// Package orchestrator sequences one regeneration run.
//
// A run moves through Init, PreparingFolders, GeneratingUnits,
// GeneratingTests, Reporting and Done. Test-only runs jump from Init to
// GeneratingTests and finish silently. Child runs (fan-out workers) leave
// through ChildTerminated after generating their units. In multiprocess
// mode the parent hands unit generation to child processes and keeps every
// other step, including the type-surface export, for itself.
package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/teranos/wsgen/config"
	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/hierarchy"
	"github.com/teranos/wsgen/transpile/js"
	"github.com/teranos/wsgen/transpile/php"
	"github.com/teranos/wsgen/transpile/python"
	"github.com/teranos/wsgen/transpile/registry"
	"github.com/teranos/wsgen/transpile/testgen"
	"github.com/teranos/wsgen/transpile/transform"
	"github.com/teranos/wsgen/transpile/typesurface"
)

// Options are the per-invocation settings of a run
type Options struct {
	// Units restricts the run; empty means every registered unit
	Units        []string
	Force        bool
	Child        bool
	Multiprocess bool
	TestOnly     bool
	// ChildArgs are passed through to spawned children ahead of the unit
	// ids (e.g. --config, -v)
	ChildArgs []string
}

// State is a step of a run
type State int

const (
	Init State = iota
	PreparingFolders
	GeneratingUnits
	GeneratingTests
	Reporting
	Done
	ChildTerminated
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case PreparingFolders:
		return "preparing_folders"
	case GeneratingUnits:
		return "generating_units"
	case GeneratingTests:
		return "generating_tests"
	case Reporting:
		return "reporting"
	case Done:
		return "done"
	case ChildTerminated:
		return "child_terminated"
	default:
		return "unknown"
	}
}

// Outcome is how a run ended
type Outcome int

const (
	// OutcomeAborted means the run stopped before reporting
	OutcomeAborted Outcome = iota
	// OutcomeGenerated means at least one unit was generated
	OutcomeGenerated
	// OutcomeNothingToDo means no unit was generated; not an error
	OutcomeNothingToDo
	// OutcomeTestsOnly ends a test-only run, which reports nothing
	OutcomeTestsOnly
	// OutcomeChild ends a worker run, which leaves reporting to its parent
	OutcomeChild
)

// UnitFailure records a unit that could not be generated
type UnitFailure struct {
	Unit string
	Err  error
}

// Report describes a finished run
type Report struct {
	RunID   string
	Outcome Outcome
	States  []State
	Units   []string
	// Generated and Skipped count units
	Generated int
	Skipped   int
	// Classes are the class names declared by every processed unit,
	// generated or skipped
	Classes []string
	// Files counts generated source files across targets
	Files   int
	Failed  []UnitFailure
	Tests   *testgen.Report
	Workers int
}

// Orchestrator runs regenerations against one configuration
type Orchestrator struct {
	cfg      *config.Config
	engine   transform.Engine
	dialects transpile.Dialects
	resolver *hierarchy.Resolver
	exporter *typesurface.Exporter
	tests    *testgen.Pipeline
	spawner  Spawner
	ids      func() ([]string, error)
	state    State
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithEngine replaces the built-in transform engine
func WithEngine(engine transform.Engine) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// WithSpawner replaces the process spawner used in multiprocess mode
func WithSpawner(s Spawner) Option {
	return func(o *Orchestrator) {
		o.spawner = s
	}
}

// WithUnits replaces the registry lookup with a fixed list of unit ids
func WithUnits(ids ...string) Option {
	return func(o *Orchestrator) {
		o.ids = func() ([]string, error) { return ids, nil }
	}
}

// New creates an orchestrator for cfg
func New(cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.NewInvalidRequestError("configuration is required")
	}

	o := &Orchestrator{
		cfg:      cfg,
		engine:   transform.NewLexical(),
		dialects: transpile.NewDialects(python.NewDialect(), php.NewDialect(), js.NewDialect()),
		resolver: hierarchy.NewResolver(cfg.Hierarchy.RestMarker, cfg.Hierarchy.Strict),
	}
	o.ids = func() ([]string, error) {
		return registry.Load(cfg.Registry.Path, cfg.Registry.Key)
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.spawner == nil {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "failed to locate own executable")
		}
		o.spawner = &ExecSpawner{Executable: exe, Stderr: os.Stderr}
	}

	if cfg.Source.TypeSurface != "" {
		o.exporter = typesurface.NewExporter(cfg.Source.TypeSurface)
	}

	dirs := make(map[transpile.Target]string)
	for _, target := range o.dialects.Targets() {
		tc, ok := cfg.Target(string(target))
		if !ok {
			return nil, errors.NewInvalidRequestError("no folders configured for target %s", target)
		}
		dirs[target] = tc.Tests
	}
	o.tests = &testgen.Pipeline{
		Engine:   o.engine,
		Dialects: o.dialects,
		Source:   cfg.Source.Tests,
		Dirs:     dirs,
	}
	return o, nil
}

// State returns the step the last run reached
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) enter(ctx context.Context, report *Report, s State) {
	o.state = s
	report.States = append(report.States, s)
	logger.LoggerFromContext(ctx).Debugw("Run state", logger.FieldState, s.String())
}

// Run executes one regeneration. Unit and test failures are isolated and
// reported together at the end; folder creation failures and a
// desynchronized type surface abort the run.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	runID := logger.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logger.WithRunID(ctx, runID)
	}
	log := logger.LoggerFromContext(ctx).Named("orchestrator")

	report := &Report{RunID: runID}
	o.enter(ctx, report, Init)

	if opts.TestOnly {
		o.enter(ctx, report, GeneratingTests)
		tests, err := o.tests.Run(ctx)
		report.Tests = tests
		report.Outcome = OutcomeTestsOnly
		if err != nil {
			return report, err
		}
		o.enter(ctx, report, Done)
		return report, tests.Err()
	}

	all, err := o.ids()
	if err != nil {
		return report, err
	}
	ids, err := registry.Select(all, opts.Units)
	if err != nil {
		return report, err
	}
	report.Units = ids

	o.enter(ctx, report, PreparingFolders)
	if err := o.prepareFolders(); err != nil {
		return report, err
	}

	o.enter(ctx, report, GeneratingUnits)
	if opts.Multiprocess && !opts.Child {
		if err := o.fanOut(ctx, opts, ids, report); err != nil {
			return report, err
		}
	} else {
		o.generateUnits(ctx, ids, opts.Force, report)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	// The declaration file is shared by every unit, so only a parent that
	// covered the whole registry rewrites it
	if !opts.Child && len(opts.Units) == 0 && o.exporter != nil {
		if err := o.exporter.Export(report.surface()); err != nil {
			return report, err
		}
	}

	o.enter(ctx, report, GeneratingTests)
	if opts.Child {
		o.enter(ctx, report, ChildTerminated)
		o.enter(ctx, report, Done)
		report.Outcome = OutcomeChild
		return report, report.unitErr()
	}

	tests, err := o.tests.Run(ctx)
	report.Tests = tests
	if err != nil {
		return report, err
	}

	o.enter(ctx, report, Reporting)
	if report.Generated == 0 {
		report.Outcome = OutcomeNothingToDo
	} else {
		report.Outcome = OutcomeGenerated
	}
	log.Infow("Run finished",
		logger.FieldCount, report.Files,
		"generated", report.Generated,
		"skipped", report.Skipped,
		"failed", len(report.Failed))

	o.enter(ctx, report, Done)
	return report, combine(report.unitErr(), tests.Err())
}

// prepareFolders creates every target's class and test folders
func (o *Orchestrator) prepareFolders() error {
	for _, target := range o.dialects.Targets() {
		tc, _ := o.cfg.Target(string(target))
		for _, dir := range []string{tc.Folder, tc.Tests} {
			if dir == "" {
				continue
			}
			if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
				return errors.Wrapf(err, "failed to create %s folder %s", target, dir)
			}
		}
	}
	return nil
}

// unit describes where a unit's canonical source and outputs live
func (o *Orchestrator) unit(id string) transpile.Unit {
	u := transpile.Unit{
		ID:      id,
		Source:  filepath.Join(o.cfg.Source.Classes, id+".ts"),
		Outputs: make(map[transpile.Target]string),
	}
	for _, target := range o.dialects.Targets() {
		tc, _ := o.cfg.Target(string(target))
		u.Outputs[target] = filepath.Join(tc.Folder, id+"."+o.dialects[target].Extension())
	}
	return u
}

func (r *Report) unitErr() error {
	if len(r.Failed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(r.Failed))
	for _, f := range r.Failed {
		ids = append(ids, f.Unit)
	}
	err := errors.Wrapf(errors.ErrUnitFailed, "%s", strings.Join(ids, ", "))
	for _, f := range r.Failed {
		err = errors.WithDetailf(err, "%s: %v", f.Unit, f.Err)
	}
	return err
}

// surface lists the class names to declare: every processed unit's class,
// plus failed units under their ids so a failure does not drop them
func (r *Report) surface() []string {
	names := append([]string{}, r.Classes...)
	for _, f := range r.Failed {
		names = append(names, f.Unit)
	}
	return names
}

func combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return errors.Join(nonNil...)
	}
}
