package cli

import (
	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "flowboard",
		Short: "Flowboard task management and workflow automation server",
	}

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
	)

	return root
}
