/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "llmchat",
	Short: "Backend API server for the LLM chat application",
	Long: `Backend API server for the LLM chat application.

It authenticates users, issues and refreshes bearer tokens, and manages
chats and their messages, calling out to a generative-text backend for
assistant replies and chat titles.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
