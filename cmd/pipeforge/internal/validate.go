package internal

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipeforge/pipeforge/internal/validate"
	"github.com/pipeforge/pipeforge/internal/yamlio"
)

func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a pipeline YAML file",
		Long:  `Validate a pipeline YAML file, reporting errors and warnings without executing it.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := yamlio.LoadFile(args[0])
			if err != nil {
				return err
			}

			validator, err := validate.New()
			if err != nil {
				return fmt.Errorf("create validator: %w", err)
			}
			result := validator.Validate(def)

			for _, msg := range result.Messages {
				fmt.Fprintln(cmd.OutOrStdout(), msg.String())
			}

			if result.HasErrors() {
				return errors.New("validation failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Validation successful!")
			return nil
		},
	}
	return cmd
}
