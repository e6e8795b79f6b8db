// File: cmd/policy.go
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/aviator-cli/internal/safety"
	"github.com/xkilldash9x/aviator-cli/internal/vault"
)

// newPolicyCmd creates the `policy` command group.
func newPolicyCmd() *cobra.Command {
	policyCmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect or change the safety policy",
	}
	policyCmd.AddCommand(newPolicyShowCmd())
	policyCmd.AddCommand(newPolicySetCmd())
	return policyCmd
}

func newPolicyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective safety policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := vault.New(resolveVaultDir(appConfig))
			policy, err := v.Load()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(policy, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			fmt.Fprintf(cmd.OutOrStdout(), "\npolicy file: %s\n", v.Path())
			return nil
		},
	}
}

func newPolicySetCmd() *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change safety policy fields and persist them",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := vault.New(resolveVaultDir(appConfig))
			policy, err := v.Load()
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("mode") {
				mode, _ := cmd.Flags().GetString("mode")
				policy.SafetyMode = safety.SafetyMode(mode)
				changed = true
			}
			if cmd.Flags().Changed("max-steps") {
				policy.MaxSteps, _ = cmd.Flags().GetInt("max-steps")
				changed = true
			}
			if targets, _ := cmd.Flags().GetStringArray("block-target"); len(targets) > 0 {
				policy.BlockedTargets = appendUnique(policy.BlockedTargets, targets)
				changed = true
			}
			if patterns, _ := cmd.Flags().GetStringArray("block-pattern"); len(patterns) > 0 {
				policy.BlockedContentPatterns = appendUnique(policy.BlockedContentPatterns, patterns)
				changed = true
			}
			if keywords, _ := cmd.Flags().GetStringArray("block-keyword"); len(keywords) > 0 {
				policy.BlockedKeywords = appendUnique(policy.BlockedKeywords, keywords)
				changed = true
			}
			if triggers, _ := cmd.Flags().GetStringArray("confirm-trigger"); len(triggers) > 0 {
				policy.ConfirmationTriggers = appendUnique(policy.ConfirmationTriggers, triggers)
				changed = true
			}

			if !changed {
				return fmt.Errorf("nothing to change; see --help for available fields")
			}
			if err := v.Save(policy); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy saved to %s\n", v.Path())
			return nil
		},
	}

	setCmd.Flags().String("mode", "", "Safety mode: full-auto, ask-before or watch-only")
	setCmd.Flags().Int("max-steps", 0, "Maximum steps per run")
	setCmd.Flags().StringArray("block-target", nil, "Add a blocked target (repeatable)")
	setCmd.Flags().StringArray("block-pattern", nil, "Add a blocked destination glob (repeatable)")
	setCmd.Flags().StringArray("block-keyword", nil, "Add a blocked text keyword (repeatable)")
	setCmd.Flags().StringArray("confirm-trigger", nil, "Add a confirmation trigger keyword (repeatable)")
	return setCmd
}

func appendUnique(existing, extra []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, ok := seen[s]; !ok {
			existing = append(existing, s)
			seen[s] = struct{}{}
		}
	}
	return existing
}
