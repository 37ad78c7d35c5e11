package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "aigateway",
		Short: "Multi-tenant LLM session gateway",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
	relayCmd := &cobra.Command{
		Use:   "relay",
		Short: "Run the realtime WebSocket relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay()
		},
	}
	root.AddCommand(serveCmd, relayCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return os.Getenv("CONFIG_PATH")
}
