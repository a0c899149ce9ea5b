package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"stellar-hq/callisto/pkg/cli"
	"stellar-hq/callisto/pkg/cpl/ast"
	"stellar-hq/callisto/pkg/policy/manager"
)

var policyFlags struct {
	dir string
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect policy sets",
}

var policyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the policies and templates in a directory",
	Long: `Load a policy directory and list its contents: templates with their
slots, static policies, and template-linked policies with their slot
environments.`,
	RunE: listPolicies,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyListCmd)

	policyListCmd.Flags().StringVarP(&policyFlags.dir, "dir", "d", "policies", "directory of policy files")
}

func listPolicies(cmd *cobra.Command, args []string) error {
	loader := manager.NewLoader(nil)
	set, err := loader.LoadDir(policyFlags.dir)
	if err != nil {
		return cli.NewCommandError("policy list", err)
	}

	if set.IsEmpty() {
		fmt.Println("No policies or templates found.")
		return nil
	}

	var templates []*ast.Template
	for t := range set.Templates() {
		templates = append(templates, t)
	}
	slices.SortFunc(templates, func(a, b *ast.Template) int {
		return strings.Compare(string(a.ID()), string(b.ID()))
	})
	if len(templates) > 0 {
		fmt.Printf("Templates (%d):\n", len(templates))
		for _, t := range templates {
			slots := make([]string, 0, 2)
			for _, s := range t.Slots() {
				slots = append(slots, string(s))
			}
			fmt.Printf("  %s  [%s]  slots: %s\n", t.ID(), t.Effect(), strings.Join(slots, ", "))
		}
		fmt.Println()
	}

	var policies []ast.Policy
	for p := range set.Policies() {
		policies = append(policies, p)
	}
	slices.SortFunc(policies, func(a, b ast.Policy) int {
		return strings.Compare(string(a.ID()), string(b.ID()))
	})

	fmt.Printf("Policies (%d):\n", len(policies))
	for _, p := range policies {
		if p.IsStatic() {
			fmt.Printf("  %s  [%s]  static\n", p.ID(), p.Effect())
			continue
		}
		fmt.Printf("  %s  [%s]  linked from %s %s\n", p.ID(), p.Effect(), p.Template().ID(), formatEnv(p.Env()))
	}
	return nil
}

func formatEnv(env ast.SlotEnv) string {
	if len(env) == 0 {
		return "{}"
	}
	slots := make([]ast.SlotID, 0, len(env))
	for s := range env {
		slots = append(slots, s)
	}
	slices.Sort(slots)

	parts := make([]string, 0, len(slots))
	for _, s := range slots {
		parts = append(parts, fmt.Sprintf("%s=%s", s, env[s]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
