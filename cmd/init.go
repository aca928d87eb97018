package cmd

import (
	"github.com/spf13/cobra"
	"github.com/cyberfortress-labs/smartxdr-core/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize smartxdr configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure smartxdr-core for your deployment and generates a .smartxdr.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
