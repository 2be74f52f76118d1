package cmd

import (
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/spf13/cobra"

	"github.com/nguyentranbao-ct/chat-timeline/internal/app"
	"github.com/nguyentranbao-ct/chat-timeline/internal/kafka"
	"github.com/nguyentranbao-ct/chat-timeline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:           "chat-timeline",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			kafka.StartConsumeMessages,
		).Run()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
