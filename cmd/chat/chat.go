package chat

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"codeward/cmd/chat/ui/tui"
)

var (
	flagResume string
	flagModel  string
	flagConfig string
)

var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session in the current directory.",
	Long:  "Start an interactive session in the current directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	ChatCmd.Flags().StringVar(&flagResume, "resume", "", "Resume an existing session by id (\"latest\" picks the most recent).")
	ChatCmd.Flags().StringVar(&flagModel, "model", "", "Override the configured default model for this session.")
	ChatCmd.Flags().StringVar(&flagConfig, "config", "", "Path to an alternate config file.")
}

func runChat(ctx context.Context) error {
	deps, cleanup, err := prepare(ctx)
	if err != nil {
		return fmt.Errorf("failed to prepare session: %w", err)
	}
	defer cleanup()

	if err := tui.Run(ctx, deps); err != nil {
		return err
	}

	fmt.Printf("\nSession %s saved. Resume it with: codeward chat --resume %s\n", deps.SessionId, deps.SessionId)
	return nil
}
