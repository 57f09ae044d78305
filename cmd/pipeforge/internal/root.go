package internal

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeforge",
		Short: "PipeForge is a local, step-debuggable pipeline execution engine.",
		Long: `PipeForge runs a declarative YAML pipeline one step at a time, with
breakpoints, retry, and skip available interactively, and an optional
watch mode that re-runs the pipeline when matching files change.`,
	}

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewTemplatesCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
