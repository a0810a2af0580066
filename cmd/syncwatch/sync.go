package syncwatch

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncwatch/internal/cliio"
	"github.com/skaphos/syncwatch/internal/config"
	"github.com/skaphos/syncwatch/internal/engine"
	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/model"
	"github.com/skaphos/syncwatch/internal/termstyle"
	"github.com/skaphos/syncwatch/internal/vcs"
)

var syncCmd = &cobra.Command{
	Use:   "sync <name>",
	Short: "Advance a behind repository without losing uncommitted work",
	Long:  "Sync re-checks the named repository, and when it is behind its upstream runs a guarded stash, fast-forward pull, and stash restore. A clean tree gets a plain fast-forward pull.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		debugf(cmd, "starting sync for %s", name)
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfgPath, err := config.ResolveConfigPath(flagConfig, cwd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		debugf(cmd, "using config %s", cfgPath)

		repo, ok := cfg.FindRepo(name)
		if !ok {
			return fmt.Errorf("unknown repository %q (configured: %s)", name, strings.Join(repoNames(cfg), ", "))
		}

		yes, _ := cmd.Flags().GetBool("yes")
		enableColorOutput(cmd)

		log := eventlog.Open(config.ResolveEventLogPath(cfgPath, cfg), cfg.Defaults.MaxLogEntries)
		eng := engine.New(cfg, vcs.NewGitAdapter(nil), log)

		// Ground truth first: the user's last check may be stale.
		before := eng.CheckOne(cmd.Context(), repo.Name, repo.Path)
		switch before.State.Status {
		case model.StatusError:
			raiseExitCode(2)
			return fmt.Errorf("cannot sync %s: %s", name, before.State.Diag)
		case model.StatusBehind:
			// The only state sync is meant for.
		case model.StatusDiverged:
			raiseExitCode(1)
			return fmt.Errorf("%s has diverged from its upstream (+%d -%d); resolve it manually", name, before.State.Ahead, before.State.Behind)
		default:
			infof(cmd, "%s has nothing to pull (status: %s)", name, before.State.Status)
			return nil
		}

		if before.State.Dirty && !yes {
			prompt := fmt.Sprintf("%s is behind by %d and has %d uncommitted change(s); stash, pull, and restore? [y/N]: ",
				name, before.State.Behind, len(before.State.DirtyFiles))
			confirmed, err := cliio.PromptYesNo(cmd.OutOrStdout(), cmd.InOrStdin(), prompt)
			if err != nil {
				return err
			}
			if !confirmed {
				infof(cmd, "sync cancelled")
				return nil
			}
		}

		outcome := eng.StashSync(cmd.Context(), repo)
		writeOutcome(cmd, name, outcome)

		// Re-check so the user sees the on-disk truth, not an inference.
		after := eng.CheckOne(cmd.Context(), repo.Name, repo.Path)
		infof(cmd, "%s is now %s%s", name, after.State.Status, dirtySuffix(after.State))
		return nil
	},
}

func writeOutcome(cmd *cobra.Command, name string, outcome model.StashSyncOutcome) {
	out := cmd.OutOrStdout()
	switch {
	case outcome.Overall():
		fmt.Fprintf(out, "%s %s: %s\n", termstyle.Paint(colorOutputEnabled, "✓", termstyle.Healthy), name, outcome.Message)
	case outcome.PullSucceeded && !outcome.RestoreSucceeded:
		fmt.Fprintf(out, "%s %s: %s\n", termstyle.Paint(colorOutputEnabled, "!", termstyle.Warn), name, outcome.Message)
		raiseExitCode(1)
	case !outcome.PullSucceeded && outcome.RestoreSucceeded:
		fmt.Fprintf(out, "%s %s: %s\n", termstyle.Paint(colorOutputEnabled, "✗", termstyle.Error), name, outcome.Message)
		raiseExitCode(1)
	default:
		// Most severe row: local edits are stashed, not in the tree.
		fmt.Fprintf(out, "%s %s: %s\n", termstyle.Paint(colorOutputEnabled, "✗✗", termstyle.Error), name, outcome.Message)
		fmt.Fprintln(out, termstyle.Paint(colorOutputEnabled, "WARNING: your uncommitted edits are held in the stash and were NOT restored; run `git stash list` in the repository and recover them before doing anything else.", termstyle.Error))
		raiseExitCode(2)
	}
}

func dirtySuffix(state model.SyncState) string {
	if !state.Dirty {
		return ""
	}
	return fmt.Sprintf(", with %d uncommitted change(s)", len(state.DirtyFiles))
}

func init() {
	syncCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt for dirty trees")

	rootCmd.AddCommand(syncCmd)
}
