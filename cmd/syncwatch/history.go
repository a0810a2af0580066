package syncwatch

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncwatch/internal/config"
	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/tableutil"
)

const historyTimeFormat = "2006-01-02 15:04:05"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the recorded check and sync events, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")
		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		mode, err := parseOutputMode(format)
		if err != nil {
			return err
		}

		log := eventlog.Open(config.ResolveEventLogPath(cfgPath, cfg), cfg.Defaults.MaxLogEntries)
		entries := log.ReadAll()
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		if mode == outputJSON {
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		w := tableutil.New(cmd.OutOrStdout(), true)
		logOutputWriteFailure(cmd, "history headers", tableutil.PrintHeaders(w, noHeaders, "TIME\tEVENT\tPROJECT\tRESULT\tDETAIL"))
		for _, entry := range entries {
			_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.Timestamp.Format(historyTimeFormat),
				entry.Event,
				entry.Project,
				historyResultCell(entry),
				entry.Message,
			)
			logOutputWriteFailure(cmd, "history row", err)
		}
		logOutputWriteFailure(cmd, "history flush", w.Flush())
		return nil
	},
}

func historyResultCell(entry eventlog.Entry) string {
	if entry.Success == nil {
		return ""
	}
	if *entry.Success {
		return "ok"
	}
	return "failed"
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum number of entries to show (0 = all retained)")
	historyCmd.Flags().StringP("format", "o", "table", "output format: table, json")
	historyCmd.Flags().Bool("no-headers", false, "when using table format, do not print headers")

	rootCmd.AddCommand(historyCmd)
}
