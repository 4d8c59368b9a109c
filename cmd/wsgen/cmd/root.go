package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/teranos/wsgen/config"
	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile/orchestrator"
	"github.com/teranos/wsgen/version"
)

// RootCmd generates streaming classes and tests for every target language
var RootCmd = &cobra.Command{
	Use:   "wsgen [units...]",
	Short: "Generate Python, PHP and JavaScript streaming classes from TypeScript",
	Long: `wsgen derives the streaming (pro) classes and their tests for every
target language from the canonical TypeScript sources.

Without arguments every unit listed in the registry is generated. Unit ids
restrict the run to that subset.

Examples:
  wsgen                    # Generate every registered unit and all tests
  wsgen binance kraken     # Generate two units, then all tests
  wsgen --tests            # Regenerate tests only
  wsgen --force --multi    # Regenerate everything across worker processes
  wsgen check              # Fail if committed outputs drifted`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
	RunE: runGenerate,
}

// cfg is loaded once per invocation by setup
var cfg *config.Config

func init() {
	RootCmd.PersistentFlags().String("config", "", "Path to wsgen.toml (default: search upwards from the working directory)")
	RootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	RootCmd.PersistentFlags().Bool("json-log", false, "Emit logs as JSON")

	RootCmd.Flags().Bool("test", false, "Regenerate tests only (alias: --tests)")
	RootCmd.Flags().Bool("force", false, "Regenerate units even when outputs are newer than their source")
	RootCmd.Flags().Bool("multiprocess", false, "Fan units out across worker processes (alias: --multi)")
	RootCmd.Flags().Bool("child", false, "Run as a worker: generate units only and print a JSON summary")
	_ = RootCmd.Flags().MarkHidden("child")
	RootCmd.Flags().SetNormalizeFunc(flagAliases)

	RootCmd.AddCommand(CheckCmd)
	RootCmd.AddCommand(WatchCmd)
	RootCmd.AddCommand(InitCmd)
	RootCmd.AddCommand(VersionCmd)
}

// flagAliases maps the accepted spellings onto one flag
func flagAliases(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "tests":
		name = "test"
	case "multi":
		name = "multiprocess"
	}
	return pflag.NormalizedName(name)
}

// setup loads the configuration and initializes the logger.
// Skipped for commands that need neither (init, version).
func setup(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "init", "version":
		return nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	verbosity, _ := cmd.Flags().GetCount("verbose")
	jsonLog, _ := cmd.Flags().GetBool("json-log")

	loaded, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	// Workers keep stdout for their summary line
	out := cmd.OutOrStdout()
	if f := cmd.Flags().Lookup("child"); f != nil && f.Value.String() == "true" {
		out = cmd.ErrOrStderr()
	}
	if err := logger.Initialize(logger.Options{
		JSON:      jsonLog || cfg.Log.JSON,
		Verbosity: verbosity,
		Output:    out,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debugw("wsgen starting",
		"version", version.Get().Short(),
		"verbosity", logger.LevelName(verbosity),
		"config", configPath)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	testOnly, _ := cmd.Flags().GetBool("test")
	force, _ := cmd.Flags().GetBool("force")
	multi, _ := cmd.Flags().GetBool("multiprocess")
	child, _ := cmd.Flags().GetBool("child")

	o, err := orchestrator.New(cfg)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if child {
		ctx = logger.WithComponent(ctx, "worker")
		if runID := os.Getenv(orchestrator.RunIDEnv); runID != "" {
			ctx = logger.WithRunID(ctx, runID)
		}
	}

	report, err := o.Run(ctx, orchestrator.Options{
		Units:        args,
		Force:        force,
		Child:        child,
		Multiprocess: multi,
		TestOnly:     testOnly,
		ChildArgs:    childArgs(cmd),
	})

	if child {
		if report != nil {
			if werr := orchestrator.WriteSummary(cmd.OutOrStdout(), orchestrator.SummaryOf(report)); werr != nil {
				return errors.Join(err, werr)
			}
		}
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	return err
}

// childArgs are the persistent flags a worker process needs to reproduce
// this invocation's configuration and logging
func childArgs(cmd *cobra.Command) []string {
	var out []string
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		out = append(out, "--config", path)
	}
	if v, _ := cmd.Flags().GetCount("verbose"); v > 0 {
		out = append(out, "-"+strings.Repeat("v", v))
	}
	if j, _ := cmd.Flags().GetBool("json-log"); j {
		out = append(out, "--json-log")
	}
	return out
}

// printReport writes the user-facing summary of a parent run to w.
// Aborted, test-only and worker runs print no summary line.
func printReport(w io.Writer, report *orchestrator.Report) {
	if report == nil {
		return
	}
	for _, f := range report.Failed {
		pterm.Error.WithWriter(w).Printfln("%s: %v", f.Unit, f.Err)
	}
	if report.Tests != nil {
		for _, m := range report.Tests.Missing() {
			pterm.Warning.WithWriter(w).Printfln("no canonical test for %s: %v", m.Test, m.Err)
		}
	}

	switch report.Outcome {
	case orchestrator.OutcomeGenerated:
		pterm.Success.WithWriter(w).Printfln("%d files generated (%d units, %d skipped)", report.Files, report.Generated, report.Skipped)
		if report.Workers > 1 {
			pterm.Info.WithWriter(w).Printfln("Workers: %d", report.Workers)
		}
	case orchestrator.OutcomeNothingToDo:
		pterm.Info.WithWriter(w).Println("0 files transpiled.")
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
