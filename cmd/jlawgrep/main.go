// Command jlawgrep is an interactive full-text search client for
// Japanese law corpora.
package main

import (
	"fmt"
	"os"

	"github.com/srndpty/j-law-grep/cmd/jlawgrep/cmd"
	"github.com/srndpty/j-law-grep/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errors.FormatForCLI(err))
		os.Exit(1)
	}
}
