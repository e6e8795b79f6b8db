// File: cmd/run.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
	"github.com/xkilldash9x/aviator-cli/internal/agent"
	"github.com/xkilldash9x/aviator-cli/internal/config"
	"github.com/xkilldash9x/aviator-cli/internal/journal"
	"github.com/xkilldash9x/aviator-cli/internal/navigator"
	"github.com/xkilldash9x/aviator-cli/internal/observability"
	"github.com/xkilldash9x/aviator-cli/internal/oracle"
	"github.com/xkilldash9x/aviator-cli/internal/surface"
	"github.com/xkilldash9x/aviator-cli/internal/vault"
)

// newRunCmd creates the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run \"<goal>\"",
		Short: "Run the agent until the goal completes or a limit trips",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("agent.max_steps", cmd.Flags().Lookup("max-steps")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg := appConfig
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}

			goal := args[0]
			surfaceKind, _ := cmd.Flags().GetString("surface")
			startURL, _ := cmd.Flags().GetString("url")

			return runGoal(ctx, cfg, logger, goal, surfaceKind, startURL)
		},
	}

	runCmd.Flags().String("surface", "browser", "Surface to drive ('browser' or 'desktop')")
	runCmd.Flags().String("url", "", "Page to open before the first cycle (browser surface only)")
	runCmd.Flags().Int("max-steps", 0, "Step budget override")
	runCmd.Flags().Bool("headless", true, "Run the browser headless")

	return runCmd
}

func runGoal(ctx context.Context, cfg *config.Config, logger *zap.Logger, goal, surfaceKind, startURL string) error {
	surf, err := buildSurface(ctx, cfg, logger, surfaceKind)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if cerr := surf.Close(closeCtx); cerr != nil {
			logger.Warn("Surface shutdown failed", zap.Error(cerr))
		}
	}()

	oracleClient, err := oracle.New(cfg.Oracle, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize the decision oracle: %w", err)
	}

	policyVault := vault.New(resolveVaultDir(cfg))
	policy, err := policyVault.Load()
	if err != nil {
		return fmt.Errorf("failed to load the safety policy: %w", err)
	}

	sinks := []schemas.EventSink{consoleSink(logger)}
	if cfg.Journal.Enabled {
		path, perr := resolveJournalPath(cfg)
		if perr != nil {
			return perr
		}
		j, jerr := journal.Open(path, logger)
		if jerr != nil {
			return fmt.Errorf("failed to open the run journal: %w", jerr)
		}
		defer func() {
			if cerr := j.Close(); cerr != nil {
				logger.Warn("Journal close failed", zap.Error(cerr))
			}
		}()
		sinks = append(sinks, j)
	}

	nav := navigator.New(surf, cfg.Agent, logger)
	runner := agent.New(cfg.Agent, surf, oracleClient, nav, policy, logger, sinks...)

	if startURL != "" {
		if err := surf.Navigate(ctx, startURL); err != nil {
			return fmt.Errorf("failed to open the start page: %w", err)
		}
	}

	var result schemas.RunResult
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	var g errgroup.Group
	g.Go(func() error {
		defer cancelRun()
		res, runErr := runner.Run(runCtx, goal)
		result = res
		return runErr
	})
	g.Go(func() error {
		// Translate an interrupt into a stop request so the loop ends
		// between cycles rather than mid-action.
		<-runCtx.Done()
		runner.Stop()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if result.Success {
		fmt.Printf("\nGoal complete after %d steps: %s\n", result.StepCount, result.Summary)
		return nil
	}
	fmt.Printf("\nRun ended without success after %d steps: %s\n", result.StepCount, result.Summary)
	return fmt.Errorf("run failed: %s", result.Summary)
}

func buildSurface(ctx context.Context, cfg *config.Config, logger *zap.Logger, kind string) (schemas.Surface, error) {
	switch kind {
	case "browser":
		return surface.NewBrowser(ctx, cfg.Browser, logger)
	case "desktop":
		// Desktop control needs an OS-level driver; none ships with the
		// CLI itself. See surface.DesktopDriver for the contract.
		return nil, fmt.Errorf("no desktop driver is available on this build; use --surface browser")
	default:
		return nil, fmt.Errorf("unknown surface %q (expected 'browser' or 'desktop')", kind)
	}
}

// consoleSink renders lifecycle events for the operator.
func consoleSink(logger *zap.Logger) schemas.EventSink {
	return schemas.EventSinkFunc(func(ev schemas.Event) {
		switch ev.Type {
		case schemas.EventStart:
			fmt.Printf("goal: %s\n", ev.Goal)
		case schemas.EventStep:
			if ev.Step != nil {
				fmt.Printf("  %s\n", ev.Step.Summarize())
			}
		case schemas.EventGate:
			if ev.Verdict == nil {
				return
			}
			if !ev.Verdict.Allowed {
				fmt.Printf("  blocked by policy: %s\n", ev.Verdict.Reason)
			} else if ev.Verdict.NeedsConfirmation {
				fmt.Printf("  confirmation advised: %s\n", ev.Verdict.ConfirmReason)
			}
		case schemas.EventDone, schemas.EventError, schemas.EventStopped:
			// The final result is printed by the command itself.
		default:
			logger.Debug("Unhandled event type", zap.String("type", string(ev.Type)))
		}
	})
}

func resolveVaultDir(cfg *config.Config) string {
	if cfg.Vault.Path != "" {
		return cfg.Vault.Path
	}
	dir, err := config.DataDir()
	if err != nil {
		// Fall back to the working directory rather than failing the run.
		return "."
	}
	return dir
}

func resolveJournalPath(cfg *config.Config) (string, error) {
	if cfg.Journal.Path != "" {
		return cfg.Journal.Path, nil
	}
	dir, err := config.DataDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve the journal location: %w", err)
	}
	return filepath.Join(dir, "journal.db"), nil
}
