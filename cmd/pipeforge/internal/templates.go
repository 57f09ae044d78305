package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipeforge/pipeforge/internal/templates"
)

func NewTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available starter pipeline templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, info := range templates.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", info.Name, info.Description)
			}
			return nil
		},
	}
}
