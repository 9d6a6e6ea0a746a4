package commands

import (
	"context"

	"github.com/spf13/cobra"

	"streaming-db/internal/catalog"
	"streaming-db/internal/runner"
)

func newInsertViewerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insertViewer uid email nickname street city state zip genres joined_date first last subscription",
		Short: "Insert a user and its viewer row",
		Args:  cobra.ExactArgs(12),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := catalog.ParseID("uid", args[0])
			if err != nil {
				return err
			}
			joined, err := catalog.ParseDate(args[8])
			if err != nil {
				return err
			}
			subscription, err := catalog.ParseSubscription(args[11])
			if err != nil {
				return err
			}

			v := catalog.Viewer{
				UID:          uid,
				Email:        args[1],
				Nickname:     args[2],
				Street:       args[3],
				City:         args[4],
				State:        args[5],
				Zip:          args[6],
				Genres:       args[7],
				JoinedDate:   joined,
				FirstName:    args[9],
				LastName:     args[10],
				Subscription: subscription,
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("insertViewer", func(ctx context.Context) error {
					return d.catalog.InsertViewer(ctx, v)
				})
			})
		},
	}
}

func newAddGenreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "addGenre uid genre",
		Short: "Add a genre to a user's genre list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := catalog.ParseID("uid", args[0])
			if err != nil {
				return err
			}
			genre := args[1]
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("addGenre", func(ctx context.Context) error {
					return d.catalog.AddGenre(ctx, uid, genre)
				})
			})
		},
	}
}

func newDeleteViewerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteViewer uid",
		Short: "Delete a viewer with its sessions and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := catalog.ParseID("uid", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("deleteViewer", func(ctx context.Context) error {
					return d.catalog.DeleteViewer(ctx, uid)
				})
			})
		},
	}
}
