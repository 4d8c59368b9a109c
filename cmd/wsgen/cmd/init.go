package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/teranos/wsgen/config"
	"github.com/teranos/wsgen/errors"
)

// InitCmd writes a default configuration file
var InitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default wsgen.toml",
	Long: `Write the default configuration to wsgen.toml in the working directory,
or to the given path. An existing file is only replaced with --overwrite and is
kept as <path>.back1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	InitCmd.Flags().Bool("overwrite", false, "Replace an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	path := config.FileName
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !overwrite {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"pass --overwrite to replace it",
		)
	}

	cfg, err := config.Default()
	if err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	pterm.Success.Printfln("Wrote %s", path)
	return nil
}
