package cmd

import (
	"github.com/docriver/gateway/internal/config"
	"github.com/docriver/gateway/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	Run: func(cmd *cobra.Command, args []string) {
		server.NewServer(config.LoadConfig()).Start()
	},
}
