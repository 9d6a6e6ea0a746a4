package commands

import (
	"context"

	"github.com/spf13/cobra"

	"streaming-db/internal/runner"
)

func newImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import folder",
		Short: "Recreate the schema and load <Table>.csv files from folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("import", func(ctx context.Context) error {
					_, err := d.loader.Import(ctx, folder)
					return err
				})
			})
		},
	}
}
