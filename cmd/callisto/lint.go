package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"stellar-hq/callisto/pkg/cli"
	"stellar-hq/callisto/pkg/cpl/parser"
	"stellar-hq/callisto/pkg/policy/manager"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy files",
	Long: `Validate policy files for syntax and structural errors.

The lint command parses each file and reports:
  - YAML syntax errors
  - Malformed scope and action constraints
  - Slots in positions that do not allow them
  - Duplicate policy and template ids (within and across files)

Examples:
  # Lint a single file
  callisto lint --file policies.yaml

  # Lint a directory
  callisto lint --dir policies/

  # JSON output for CI/CD
  callisto lint --dir policies/ --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintResult is the validation outcome for a single policy file.
type lintResult struct {
	File   string      `json:"file"`
	Valid  bool        `json:"valid"`
	Errors []lintIssue `json:"errors,omitempty"`
}

type lintIssue struct {
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]lintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(file))
	}

	perFileErrors := 0
	for _, r := range results {
		perFileErrors += len(r.Errors)
	}

	// Duplicate ids across files only show up when the directory is loaded
	// as a whole.
	var crossFile []lintIssue
	if lintFlags.dir != "" && perFileErrors == 0 {
		loader := manager.NewLoader(nil)
		if _, err := loader.LoadDir(lintFlags.dir); err != nil {
			crossFile = append(crossFile, lintIssue{Message: err.Error()})
		}
	}

	if lintFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		printLintResults(results, crossFile)
	}

	if perFileErrors+len(crossFile) > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
	}
	return nil
}

func lintFile(path string) lintResult {
	result := lintResult{File: path, Valid: true}

	if _, err := parser.ParseFile(path); err != nil {
		result.Valid = false
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			result.Errors = append(result.Errors, lintIssue{
				Line:    perr.Line,
				Column:  perr.Column,
				Message: perr.Message,
			})
		} else {
			result.Errors = append(result.Errors, lintIssue{Message: err.Error()})
		}
	}
	return result
}

func printLintResults(results []lintResult, crossFile []lintIssue) {
	totalErrors := 0
	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)
		if result.Valid {
			fmt.Println("✓ Valid")
		}
		for _, issue := range result.Errors {
			fmt.Printf("✗ Error: %s", issue.Message)
			if issue.Line > 0 {
				fmt.Printf(" (line %d", issue.Line)
				if issue.Column > 0 {
					fmt.Printf(", col %d", issue.Column)
				}
				fmt.Print(")")
			}
			fmt.Println()
			totalErrors++
		}
	}
	for _, issue := range crossFile {
		fmt.Printf("✗ Error: %s\n", issue.Message)
		totalErrors++
	}

	fmt.Println()
	fmt.Printf("Summary: %d error(s)\n", totalErrors)
}
