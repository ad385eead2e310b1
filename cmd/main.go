package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeward/cmd/chat"
	"codeward/cmd/setup"
	"codeward/pkg/process"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "codeward",
	Short: "A safety-gated coding agent for your terminal.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("codeward", version)
	},
}

func init() {
	rootCmd.AddCommand(chat.ChatCmd)
	rootCmd.AddCommand(setup.SetupCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, cancel, wait := process.GetRootContext()
	rootCmd.ExecuteContext(ctx)
	cancel()

	wait()
}
