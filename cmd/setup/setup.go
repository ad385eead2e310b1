package setup

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeward/config"
)

var flagForce bool

var SetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a starter config file to ~/.codeward/config.yaml.",
	Long:  "Write a starter config file to ~/.codeward/config.yaml.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup()
	},
}

func init() {
	SetupCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing config file.")
}

func runSetup() error {
	path, err := config.GetWorkspaceConfigPath()
	if err != nil {
		return err
	}

	if flagForce {
		// Bootstrap refuses to clobber; remove first when forced.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := config.Bootstrap(path); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\nAdd an API key under providers.<name>.api_key, then run: codeward chat\n", path)
	return nil
}
