// Package main provides the entry point for the padarchive CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for padarchive.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "padarchive",
		Short: "Discover and archive Etherpad links on Wikimedia wikis",
		Long: `padarchive preserves Wikimedia Etherpads before their contents expire.

It works in two stages:
  1. discover — crawl a wiki's external-link index for etherpad.wikimedia.org
     links and write a structured report.
  2. download — fetch the plaintext export of every pad in a report.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewDiscoverCmd())
	cmd.AddCommand(NewDownloadCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
