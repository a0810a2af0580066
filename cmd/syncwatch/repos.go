// SPDX-License-Identifier: MIT
package syncwatch

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncwatch/internal/cliio"
	"github.com/skaphos/syncwatch/internal/config"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the configured repositories and their paths",
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

		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		rows := make([][]string, 0, len(cfg.Repos))
		for _, repo := range cfg.Repos {
			rows = append(rows, []string{repo.Name, repo.Path})
		}
		logOutputWriteFailure(cmd, "repos table",
			cliio.WriteTable(cmd.OutOrStdout(), true, noHeaders, []string{"NAME", "PATH"}, rows))
		return nil
	},
}

func init() {
	reposCmd.Flags().Bool("no-headers", false, "when using table format, do not print headers")

	rootCmd.AddCommand(reposCmd)
}
