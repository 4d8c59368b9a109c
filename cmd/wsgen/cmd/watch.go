package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile/orchestrator"
	"github.com/teranos/wsgen/transpile/watch"
)

// WatchCmd regenerates units and tests as their canonical sources change
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate units and tests when their TypeScript sources change",
	Long: `Watch the canonical class and test directories. A changed class source
regenerates that unit (and the tests); a changed test source regenerates the
tests only. Bursts of writes are collapsed into one regeneration.`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before regenerating")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")

	o, err := orchestrator.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	out := cmd.OutOrStdout()
	w, err := watch.New(cfg.Source.Classes, cfg.Source.Tests, func(t watch.Trigger) error {
		return regenerate(ctx, out, o, t)
	})
	if err != nil {
		return err
	}
	w.SetDebounce(debounce)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigChan:
			fmt.Println("\nStopping watcher...")
			cancel()
		case <-ctx.Done():
		}
	}()

	pterm.Info.Printfln("Watching %s and %s (Ctrl+C to stop)", cfg.Source.Classes, cfg.Source.Tests)
	return w.Run(ctx)
}

// regenerate runs the orchestrator for one debounced batch of changes
func regenerate(ctx context.Context, out io.Writer, o *orchestrator.Orchestrator, t watch.Trigger) error {
	opts := orchestrator.Options{Force: true}
	if len(t.Units) > 0 {
		opts.Units = t.Units
	} else {
		opts.TestOnly = true
	}

	logger.Infow("Regenerating", logger.FieldCount, len(t.Units), "tests", t.Tests)
	report, err := o.Run(ctx, opts)
	printReport(out, report)
	return err
}
