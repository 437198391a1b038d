package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "todolist",
		Short:         "A small to-do list with filters, search, drag reorder and inline edits",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("backend", "", "storage backend (sqlite, mysql, redis, file, memory); overrides STORAGE_BACKEND")
	rootCmd.PersistentFlags().String("key", "", "storage key; overrides STORAGE_KEY")

	// Add subcommands
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(rmCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(exportCmd())

	return rootCmd
}
