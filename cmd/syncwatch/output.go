package syncwatch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncwatch/internal/model"
	"github.com/skaphos/syncwatch/internal/termstyle"
)

type outputMode string

const (
	outputTable outputMode = "table"
	outputJSON  outputMode = "json"
)

func parseOutputMode(raw string) (outputMode, error) {
	switch raw {
	case "", "table":
		return outputTable, nil
	case "json":
		return outputJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: table, json)", raw)
	}
}

// statusCell renders a status glyph plus label, colored when enabled.
func statusCell(state model.SyncState) string {
	switch state.Status {
	case model.StatusSynced:
		return termstyle.Colorize(colorOutputEnabled, "✓ in sync", termstyle.Healthy)
	case model.StatusAhead:
		return termstyle.Colorize(colorOutputEnabled, "↑ ahead", termstyle.Info)
	case model.StatusBehind:
		return termstyle.Colorize(colorOutputEnabled, "↓ behind", termstyle.Warn)
	case model.StatusDiverged:
		return termstyle.Colorize(colorOutputEnabled, "⇅ diverged", termstyle.Error)
	default:
		return termstyle.Colorize(colorOutputEnabled, "✗ error", termstyle.Muted)
	}
}

// countCell renders the +ahead/-behind column, empty when nothing diverges.
func countCell(state model.SyncState) string {
	switch state.Status {
	case model.StatusAhead:
		return fmt.Sprintf("+%d", state.Ahead)
	case model.StatusBehind:
		return fmt.Sprintf("-%d", state.Behind)
	case model.StatusDiverged:
		return fmt.Sprintf("+%d -%d", state.Ahead, state.Behind)
	default:
		return ""
	}
}

func dirtyCell(state model.SyncState) string {
	if !state.Dirty {
		return ""
	}
	return termstyle.Colorize(colorOutputEnabled, fmt.Sprintf("dirty (%d)", len(state.DirtyFiles)), termstyle.Warn)
}

// logOutputWriteFailure records non-fatal output write/flush failures.
// CLI consumers frequently pipe to tools that close early (for example `head`),
// so we log and continue instead of treating these as command failures.
func logOutputWriteFailure(cmd *cobra.Command, context string, err error) {
	if err == nil {
		return
	}
	debugf(cmd, "ignored output write failure (%s): %v", context, err)
}
