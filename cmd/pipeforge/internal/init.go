package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipeforge/pipeforge/internal/templates"
)

func NewInitCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init <template>",
		Short: "Write a documented starter pipeline YAML",
		Long:  fmt.Sprintf("Write a documented starter pipeline YAML for one of: %v", templates.Names()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := templates.Get(args[0])
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = args[0] + ".yml"
			}
			if err := writeFile(path, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file path (default <template>.yml)")
	return cmd
}
