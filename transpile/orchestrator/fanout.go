package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
)

// RunIDEnv carries the parent's run id into child processes
const RunIDEnv = "WSGEN_RUN_ID"

// Spawner starts one child run and returns its standard output. A child
// that exits non-zero returns its output along with the error.
type Spawner interface {
	Spawn(ctx context.Context, args []string, env []string) ([]byte, error)
}

// ExecSpawner re-executes a binary
type ExecSpawner struct {
	Executable string
	// Stderr receives the children's logs
	Stderr io.Writer
}

// Spawn runs the executable with args, inheriting the environment plus env
func (s *ExecSpawner) Spawn(ctx context.Context, args []string, env []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.Executable, args...)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stderr = s.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), errors.Wrapf(err, "%s", shellquote.Join(append([]string{s.Executable}, args...)...))
	}
	return stdout.Bytes(), nil
}

// Summary is the single line a child prints on stdout
type Summary struct {
	Generated int      `json:"generated"`
	Skipped   int      `json:"skipped"`
	Classes   []string `json:"classes"`
	Failed    []string `json:"failed"`
}

// SummaryOf condenses a child's report
func SummaryOf(r *Report) Summary {
	s := Summary{
		Generated: r.Generated,
		Skipped:   r.Skipped,
		Classes:   r.Classes,
		Failed:    make([]string, 0, len(r.Failed)),
	}
	if s.Classes == nil {
		s.Classes = []string{}
	}
	for _, f := range r.Failed {
		s.Failed = append(s.Failed, f.Unit)
	}
	return s
}

// WriteSummary prints the summary as one JSON line
func WriteSummary(w io.Writer, s Summary) error {
	return json.NewEncoder(w).Encode(s)
}

// ParseSummary finds the last summary line in a child's output. Anything
// else a child prints on stdout is ignored.
func ParseSummary(out []byte) (Summary, bool) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !gjson.Valid(line) {
			continue
		}
		parsed := gjson.Parse(line)
		if !parsed.IsObject() || !parsed.Get("generated").Exists() {
			continue
		}

		s := Summary{
			Generated: int(parsed.Get("generated").Int()),
			Skipped:   int(parsed.Get("skipped").Int()),
		}
		parsed.Get("classes").ForEach(func(_, v gjson.Result) bool {
			s.Classes = append(s.Classes, v.String())
			return true
		})
		parsed.Get("failed").ForEach(func(_, v gjson.Result) bool {
			s.Failed = append(s.Failed, v.String())
			return true
		})
		return s, true
	}
	return Summary{}, false
}

// workerCount returns the configured worker count, or the number of
// logical CPUs, never more than there are units
func (o *Orchestrator) workerCount(units int) int {
	n := o.cfg.Fanout.Workers
	if n <= 0 {
		if counted, err := cpu.Counts(true); err == nil && counted > 0 {
			n = counted
		} else {
			n = runtime.NumCPU()
		}
	}
	if n > units {
		n = units
	}
	if n < 1 {
		n = 1
	}
	return n
}

// chunk deals ids round-robin into n disjoint groups
func chunk(ids []string, n int) [][]string {
	groups := make([][]string, n)
	for i, id := range ids {
		groups[i%n] = append(groups[i%n], id)
	}
	return groups
}

// fanOut generates ids in child processes, each owning a disjoint chunk,
// and folds their summaries into report. A child that fails without a
// summary marks its whole chunk failed.
func (o *Orchestrator) fanOut(ctx context.Context, opts Options, ids []string, report *Report) error {
	log := logger.LoggerFromContext(ctx).Named("fanout")
	if len(ids) == 0 {
		return nil
	}

	workers := o.workerCount(len(ids))
	report.Workers = workers
	groups := chunk(ids, workers)
	summaries := make([]Summary, len(groups))
	spawnErrs := make([]error, len(groups))
	exitErrs := make([]error, len(groups))

	env := []string{RunIDEnv + "=" + report.RunID}

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, group := range groups {
		args := append([]string{}, opts.ChildArgs...)
		args = append(args, "--child")
		if opts.Force {
			args = append(args, "--force")
		}
		args = append(args, group...)

		g.Go(func() error {
			log.Infow("Spawning worker",
				logger.FieldWorker, i,
				logger.FieldCount, len(group),
				"args", shellquote.Join(args...))

			out, err := o.spawner.Spawn(ctx, args, env)
			summary, ok := ParseSummary(out)
			if !ok {
				if err == nil {
					err = errors.New("no summary on stdout")
				}
				spawnErrs[i] = errors.Wrapf(errors.ErrChildFailed, "worker %d: %v", i, err)
				return nil
			}
			if err != nil {
				log.Warnw("Worker exited with error", logger.FieldWorker, i, logger.FieldError, err)
				exitErrs[i] = err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, s := range summaries {
		if spawnErrs[i] != nil {
			log.Errorw("Worker failed", logger.FieldWorker, i, logger.FieldError, spawnErrs[i])
			for _, id := range groups[i] {
				report.Failed = append(report.Failed, UnitFailure{Unit: id, Err: spawnErrs[i]})
			}
			continue
		}
		o.fold(s, report)

		missing := unaccounted(groups[i], s, exitErrs[i] != nil)
		if len(missing) == 0 {
			continue
		}
		cause := exitErrs[i]
		if cause == nil {
			cause = errors.Newf("summary accounts for %d of %d units", s.Generated+s.Skipped+len(s.Failed), len(groups[i]))
		}
		failure := errors.Wrapf(errors.ErrChildFailed, "worker %d: %v", i, cause)
		log.Errorw("Worker left units unaccounted", logger.FieldWorker, i, "units", missing, logger.FieldError, failure)
		for _, id := range missing {
			report.Failed = append(report.Failed, UnitFailure{Unit: id, Err: failure})
		}
	}
	return ctx.Err()
}

// unaccounted returns the units of group a worker's summary does not cover.
// A worker that exited with an error and reported no failure of its own has
// its whole chunk returned, since its summary cannot be trusted.
func unaccounted(group []string, s Summary, exited bool) []string {
	if exited && len(s.Failed) == 0 {
		return group
	}
	if !exited && s.Generated+s.Skipped+len(s.Failed) == len(group) {
		return nil
	}

	covered := make(map[string]bool, len(s.Classes)+len(s.Failed))
	for _, name := range s.Classes {
		covered[name] = true
	}
	for _, id := range s.Failed {
		covered[id] = true
	}
	var missing []string
	for _, id := range group {
		if !covered[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

// fold adds one child's summary to the parent report
func (o *Orchestrator) fold(s Summary, report *Report) {
	report.Classes = append(report.Classes, s.Classes...)
	report.Generated += s.Generated
	report.Skipped += s.Skipped
	report.Files += s.Generated * len(o.dialects.Targets())
	for _, id := range s.Failed {
		report.Failed = append(report.Failed, UnitFailure{
			Unit: id,
			Err:  errors.Wrapf(errors.ErrUnitFailed, "%s (in worker)", id),
		})
	}
}
