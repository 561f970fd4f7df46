package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nihei9/lexergen/codegen"
	"github.com/nihei9/lexergen/lexspec"
	"github.com/spf13/cobra"
)

var generateFlags = struct {
	output *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate a lexer from a token specification",
		Example: `  lexergen generate tokens.json -o tokens_lexer.go`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGenerate,
	}
	generateFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default: <spec-name>_lexer.go)")
	rootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	s, err := readSpec(args[0])
	if err != nil {
		return fmt.Errorf("cannot read token specification: %w", err)
	}

	g, cerrs, err := lexspec.Compile(s)
	if err != nil {
		if len(cerrs) > 0 {
			var b strings.Builder
			for _, cerr := range cerrs {
				fmt.Fprintf(&b, "%v\n", cerr)
			}
			return fmt.Errorf("%v%w", b.String(), err)
		}
		return err
	}

	src, err := codegen.Generate(g, s.Package)
	if err != nil {
		return fmt.Errorf("failed to generate lexer source: %w", err)
	}

	out := *generateFlags.output
	if out == "" {
		out = outputFileName(args[0])
	}
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(src); err != nil {
		return fmt.Errorf("failed to write lexer source: %w", err)
	}
	return nil
}

func readSpec(path string) (*lexspec.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	s := &lexspec.Spec{}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

func outputFileName(specPath string) string {
	base := specPath
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".json")
	return base + "_lexer.go"
}
