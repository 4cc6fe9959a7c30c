package main

import (
	"os"
	"perch/cmd/perch/chat"
	"perch/cmd/perch/gateway"
	"perch/cmd/perch/invoke"
	"perch/cmd/perch/run"
	"perch/cmd/perch/setup"
	"perch/cmd/perch/tools"
	"perch/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	logger.Init()
	rootCmd := &cobra.Command{
		Use:   "perch",
		Short: "Perch is an AI agent that calls tools served by a toolbox endpoint",
	}

	rootCmd.AddCommand(setup.Cmd)
	rootCmd.AddCommand(run.Cmd)
	rootCmd.AddCommand(chat.Cmd)
	rootCmd.AddCommand(tools.Cmd)
	rootCmd.AddCommand(invoke.Cmd)
	rootCmd.AddCommand(gateway.Cmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
