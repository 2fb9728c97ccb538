package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/portfolio-ai/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize portfolioai configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the LLM provider, portfolio database and HTTP settings, and writes a .portfolioai.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
