package commands

import (
	"context"

	"github.com/spf13/cobra"

	"streaming-db/internal/catalog"
	"streaming-db/internal/runner"
)

func newInsertSessionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insertSession sid uid rid ep_num initiate_at leave_at quality device",
		Short: "Record a viewing session",
		Args:  cobra.ExactArgs(8),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseSession(args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Mutation("insertSession", func(ctx context.Context) error {
					return d.catalog.InsertSession(ctx, s)
				})
			})
		},
	}
}

func parseSession(args []string) (catalog.Session, error) {
	var (
		s   catalog.Session
		err error
	)
	ids := []struct {
		name string
		dst  *int64
	}{
		{"sid", &s.SID},
		{"uid", &s.UID},
		{"rid", &s.RID},
		{"ep_num", &s.EpNum},
	}
	for i, id := range ids {
		if *id.dst, err = catalog.ParseID(id.name, args[i]); err != nil {
			return s, err
		}
	}
	if s.InitiateAt, err = catalog.ParseTimestamp(args[4]); err != nil {
		return s, err
	}
	if s.LeaveAt, err = catalog.ParseTimestamp(args[5]); err != nil {
		return s, err
	}
	if s.Quality, err = catalog.ParseQuality(args[6]); err != nil {
		return s, err
	}
	if s.Device, err = catalog.ParseDevice(args[7]); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func newActiveViewerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activeViewer N start end",
		Short: "List viewers with at least N sessions started in [start, end]",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := catalog.ParseCount("N", args[0])
			if err != nil {
				return err
			}
			window, err := catalog.ParseWindow(a.cfg.Policies.ActiveViewerWindow, args[1], args[2])
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Query("activeViewer", func(ctx context.Context) ([]catalog.ActiveViewer, error) {
					return d.catalog.ActiveViewers(ctx, n, window)
				})
			})
		},
	}
}

func newVideosViewedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "videosViewed rid",
		Short: "Count distinct viewers per episode of a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rid, err := catalog.ParseID("rid", args[0])
			if err != nil {
				return err
			}
			return a.run(cmd, func(d deps) runner.Operation {
				return runner.Query("videosViewed", func(ctx context.Context) ([]catalog.VideoViewership, error) {
					return d.catalog.VideosViewed(ctx, rid)
				})
			})
		},
	}
}
