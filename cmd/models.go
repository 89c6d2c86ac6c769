package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "Print the remote models the relay serves, one per line",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			models, err := appInstance.Catalog().Models(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range models {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return fmt.Errorf("write model: %w", err)
				}
			}
			return nil
		},
	}
}
