// SPDX-License-Identifier: MIT
package syncwatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skaphos/syncwatch/internal/config"
	"github.com/skaphos/syncwatch/internal/model"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a syncwatch configuration",
	Long:  "Creates a syncwatch config file in the current directory by default, seeded with an example repository entry to edit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		cfgPath, err := config.InitConfigPath(flagConfig, cwd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil && !force {
			return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
		}

		cfg := config.DefaultConfig()
		home, err := os.UserHomeDir()
		if err != nil {
			home = cwd
		}
		cfg.Repos = []model.Repo{
			{Name: "example", Path: filepath.Join(home, "Projects", "example")},
		}

		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")

	rootCmd.AddCommand(initCmd)
}
