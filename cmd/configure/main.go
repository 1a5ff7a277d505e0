package main

import (
	"fmt"
	"os"

	"github.com/aserras/webfront/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "webfront-configure",
		Short: "Configuration tool for the Aserras web front end",
		Long:  "CLI tool for inspecting configuration and checking connectivity to the Brain backend and Stripe",
	}

	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewShowCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
