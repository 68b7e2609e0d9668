// compat is a harness for exercising templates against YAML fixture suites:
// render a case, verify a whole suite, list its cases, or dump a parsed
// template's AST.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jinjet/jinjet/pkg/fixtures"
	"github.com/jinjet/jinjet/pkg/jinja2"
)

var fixturePath string
var verbose bool

var rootCmd = cobra.Command{
	Use:   "compat",
	Short: "Render and verify template fixture suites",
}

var renderCmd = cobra.Command{
	Use:   "render [case ...]",
	Short: "Render the selected cases and print their output",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := fixtures.Load(fixturePath)
		if err != nil {
			return err
		}
		selected, err := selectCases(file, args)
		if err != nil {
			return err
		}
		for _, c := range selected {
			if verbose {
				slog.Info("rendering", "case", c.Name)
			}
			out, err := file.Run(c)
			if err != nil {
				return fmt.Errorf("case %q: %w", c.Name, err)
			}
			if len(selected) > 1 {
				fmt.Printf("--- %s ---\n", c.Name)
			}
			fmt.Println(out)
		}
		return nil
	},
}

var checkCmd = cobra.Command{
	Use:   "check [case ...]",
	Short: "Verify the selected cases against their expected output",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := fixtures.Load(fixturePath)
		if err != nil {
			return err
		}
		selected, err := selectCases(file, args)
		if err != nil {
			return err
		}
		failed := 0
		for _, c := range selected {
			if err := file.Verify(c); err != nil {
				slog.Error("case failed", "case", c.Name, "error", err)
				failed++
				continue
			}
			if verbose {
				slog.Info("case passed", "case", c.Name)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d cases failed", failed, len(selected))
		}
		fmt.Printf("%d cases passed\n", len(selected))
		return nil
	},
}

var listCmd = cobra.Command{
	Use:   "list",
	Short: "List the cases in a fixture suite",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := fixtures.Load(fixturePath)
		if err != nil {
			return err
		}
		for _, c := range file.Cases {
			entry := c.Entry
			if entry == "" {
				entry = "main"
			}
			fmt.Printf("%s\t(entry %s, %d templates)\n", c.Name, entry, len(c.Templates))
		}
		return nil
	},
}

var astCmd = cobra.Command{
	Use:   "ast [file]",
	Short: "Parse a template file and dump its AST",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly one template file")
		}
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		doc, err := jinja2.Parse(string(src))
		if err != nil {
			return err
		}
		fmt.Print(jinja2.Pretty(doc))
		return nil
	},
}

// selectCases resolves case name selectors against the suite. With no
// selectors every case is selected.
func selectCases(file *fixtures.File, selectors []string) ([]*fixtures.Case, error) {
	if len(selectors) == 0 {
		return file.Cases, nil
	}
	var out []*fixtures.Case
	var missing []string
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if c, ok := file.Case(sel); ok {
			out = append(out, c)
		} else {
			missing = append(missing, sel)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("unknown cases: %s", strings.Join(missing, ", "))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no cases matched the provided selectors")
	}
	return out, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixtures", "fixtures.yaml", "Path to the fixture suite")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(&renderCmd)
	rootCmd.AddCommand(&checkCmd)
	rootCmd.AddCommand(&listCmd)
	rootCmd.AddCommand(&astCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}
