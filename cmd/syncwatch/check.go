// SPDX-License-Identifier: MIT
package syncwatch

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncwatch/internal/config"
	"github.com/skaphos/syncwatch/internal/engine"
	"github.com/skaphos/syncwatch/internal/eventlog"
	"github.com/skaphos/syncwatch/internal/model"
	"github.com/skaphos/syncwatch/internal/sortutil"
	"github.com/skaphos/syncwatch/internal/strutil"
	"github.com/skaphos/syncwatch/internal/tableutil"
	"github.com/skaphos/syncwatch/internal/vcs"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify every configured repository against its upstream",
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting check")
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

		reposFilter, _ := cmd.Flags().GetString("repos")
		format, _ := cmd.Flags().GetString("format")
		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		timeout, _ := cmd.Flags().GetInt("timeout")
		mode, err := parseOutputMode(format)
		if err != nil {
			return err
		}

		repos, err := selectRepos(cfg, strutil.SplitCSV(reposFilter))
		if err != nil {
			return err
		}
		if len(repos) == 0 {
			return fmt.Errorf("no repositories configured in %q (run syncwatch init, then edit the repos list)", cfgPath)
		}

		log := eventlog.Open(config.ResolveEventLogPath(cfgPath, cfg), cfg.Defaults.MaxLogEntries)
		eng := engine.New(cfg, vcs.NewGitAdapter(nil), log)

		results := make([]engine.CheckResult, 0, len(repos))
		for res := range eng.CheckAll(cmd.Context(), repos, engine.CheckOptions{
			Concurrency: concurrency,
			Timeout:     timeout,
		}) {
			debugf(cmd, "checked %s: %s", res.Name, res.State.Status)
			results = append(results, res)
		}
		sortutil.SortCheckResults(results)

		if mode == outputJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			enableColorOutput(cmd)
			writeCheckTable(cmd, results, noHeaders)
		}

		for _, res := range results {
			if res.State.Status == model.StatusError {
				raiseExitCode(2)
			} else if res.State.Unsynced() {
				raiseExitCode(1)
			}
		}
		return nil
	},
}

func writeCheckTable(cmd *cobra.Command, results []engine.CheckResult, noHeaders bool) {
	w := tableutil.New(cmd.OutOrStdout(), true)
	logOutputWriteFailure(cmd, "check headers", tableutil.PrintHeaders(w, noHeaders, "NAME\tSTATUS\tCOMMITS\tWORKTREE\tDETAIL"))
	for _, res := range results {
		detail := res.State.Diag
		if res.State.ErrorClass != "" {
			detail = fmt.Sprintf("[%s] %s", res.State.ErrorClass, detail)
		}
		_, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			res.Name,
			statusCell(res.State),
			countCell(res.State),
			dirtyCell(res.State),
			detail,
		)
		logOutputWriteFailure(cmd, "check row", err)
	}
	logOutputWriteFailure(cmd, "check flush", w.Flush())
}

// selectRepos applies the --repos name filter to the configured set.
func selectRepos(cfg *config.Config, names []string) ([]model.Repo, error) {
	if len(names) == 0 {
		return cfg.Repos, nil
	}
	out := make([]model.Repo, 0, len(names))
	for _, name := range names {
		repo, ok := cfg.FindRepo(name)
		if !ok {
			return nil, fmt.Errorf("unknown repository %q (configured: %s)", name, strings.Join(repoNames(cfg), ", "))
		}
		out = append(out, repo)
	}
	return out, nil
}

func repoNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Repos))
	for _, repo := range cfg.Repos {
		names = append(names, repo.Name)
	}
	return names
}

func init() {
	checkCmd.Flags().String("repos", "", "comma-separated repository names (default: all configured)")
	checkCmd.Flags().StringP("format", "o", "table", "output format: table, json")
	checkCmd.Flags().Bool("no-headers", false, "when using table format, do not print headers")
	checkCmd.Flags().Int("concurrency", 0, "max concurrent repository checks (default from config)")
	checkCmd.Flags().Int("timeout", 0, "per-repository timeout in seconds (default from config)")

	rootCmd.AddCommand(checkCmd)
}
