package main

import (
	"fmt"
	"os"

	"github.com/teranos/wsgen/cmd/wsgen/cmd"
	"github.com/teranos/wsgen/errors"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
