package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/portfolio-ai/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the portfolio insight functions as tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(context.Background())
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "portfolioai MCP server started on stdio (provider=%s, model=%s)\n", a.engine.Provider(), a.cfg.Model)

		srv := mcpserver.NewServer(contextRunner{a})
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
