package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexergen",
	Short: "Generate a Go lexer from a declarative token specification",
	Long: `lexergen compiles a JSON token specification into a Go source
file implementing a lexer for it: one mutually-recursive jump routine
per automaton node, driven by a small runtime cursor.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}
