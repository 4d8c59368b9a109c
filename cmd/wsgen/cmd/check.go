package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile/orchestrator"
)

// CheckCmd checks if committed outputs are up to date
var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check if generated classes, tests and the type surface are up to date",
	Long: `Regenerate every unit, every test and the type surface into a temporary
directory and compare the result with the committed outputs.

Exit codes:
  0 - Outputs are up to date
  1 - Outputs are out of date or the check failed

Examples:
  wsgen check                        # Check everything
  wsgen check --diff                 # Also print a unified diff per file
  wsgen check --config ci/wsgen.toml # Check against an explicit configuration`,
	RunE: runCheck,
}

func init() {
	CheckCmd.Flags().Bool("diff", false, "Print a unified diff for every differing file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	showDiff, _ := cmd.Flags().GetBool("diff")

	fmt.Println("Checking generated outputs...")

	tempDir, err := os.MkdirTemp("", "wsgen-check-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	result, err := orchestrator.Check(commandContext(cmd), cfg, tempDir)
	if err != nil {
		return errors.Wrap(err, "failed to check generated outputs")
	}

	if result.UpToDate {
		fmt.Println("✓ Generated outputs are up to date")
		return nil
	}

	fmt.Println("✗ Generated outputs are out of date.")
	for _, label := range result.Labels() {
		fmt.Printf("\n%s files differ:\n", label)
		for _, file := range result.Differences[label] {
			fmt.Printf("  - %s\n", file)
		}
	}

	if showDiff {
		for _, label := range result.Labels() {
			for _, file := range result.Differences[label] {
				diff, err := result.Diff(label, file)
				if err != nil {
					return err
				}
				fmt.Printf("\n%s", diff)
			}
		}
	}

	return errors.WithHint(
		errors.New("generated outputs are out of date"),
		"run 'wsgen --force' and commit the result",
	)
}
