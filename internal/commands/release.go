package commands

import (
	"context"

	"github.com/spf13/cobra"

	"streaming-db/internal/catalog"
	"streaming-db/internal/runner"
)

func newInsertMovieCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insertMovie rid website_url",
		Short: "Insert a movie row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := catalog.ParseID("rid", args[0])
			if err != nil {
				return err
			}
			url := args[1]
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("insertMovie", func(ctx context.Context) error {
					return d.catalog.InsertMovie(ctx, rid, url)
				})
			})
		},
	}
}

func newUpdateReleaseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "updateRelease rid title",
		Short: "Set a release title, creating the release if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := catalog.ParseID("rid", args[0])
			if err != nil {
				return err
			}
			title := args[1]
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("updateRelease", func(ctx context.Context) error {
					return d.catalog.UpdateRelease(ctx, rid, title)
				})
			})
		},
	}
}

func newListReleasesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "listReleases uid",
		Short: "List the releases a viewer has reviewed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := catalog.ParseID("uid", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Query("listReleases", func(ctx context.Context) ([]catalog.ReviewedRelease, error) {
					return d.catalog.ListReleases(ctx, uid)
				})
			})
		},
	}
}

func newPopularReleaseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "popularRelease N",
		Short: "Rank the N most reviewed releases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := catalog.ParseCount("N", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Query("popularRelease", func(ctx context.Context) ([]catalog.PopularRelease, error) {
					return d.catalog.PopularReleases(ctx, n)
				})
			})
		},
	}
}

func newReleaseTitleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "releaseTitle sid",
		Short: "Show the release and video played in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sid, err := catalog.ParseID("sid", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Query("releaseTitle", func(ctx context.Context) ([]catalog.SessionRelease, error) {
					return d.catalog.ReleaseTitle(ctx, sid)
				})
			})
		},
	}
}
