package catalog

import (
	"context"
	"fmt"

	"streaming-db/internal/config"
	apperrors "streaming-db/internal/errors"
)

// InsertSession records a viewing event with foreign key checks relaxed.
func (c *Catalog) InsertSession(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	err := c.withoutForeignKeys(ctx,
		"INSERT INTO `Session` (sid, uid, rid, ep_num, initiate_at, leave_at, quality, device) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.SID, s.UID, s.RID, s.EpNum,
		s.InitiateAt.Format(TimestampLayout), s.LeaveAt.Format(TimestampLayout),
		string(s.Quality), string(s.Device))
	return apperrors.Classify("insert session", err)
}

// ActiveViewers returns viewers with at least n sessions started inside w.
func (c *Catalog) ActiveViewers(ctx context.Context, n int, w Window) ([]ActiveViewer, error) {
	if n < 0 {
		return nil, apperrors.BadRequest("session threshold must not be negative: %d", n)
	}

	initiated := "DATE(s.initiate_at)"
	if w.Mode == config.WindowTimestamp {
		initiated = "s.initiate_at"
	}
	start, end := w.bounds()

	var rows []ActiveViewer
	err := c.selectRows(ctx, &rows, fmt.Sprintf(`
		SELECT v.uid, v.first_name, v.last_name
		FROM `+"`Viewer`"+` v
		JOIN `+"`Session`"+` s ON s.uid = v.uid
		WHERE %s BETWEEN ? AND ?
		GROUP BY v.uid, v.first_name, v.last_name
		HAVING COUNT(s.sid) >= ?
		ORDER BY v.uid ASC`, initiated), start, end, n)
	if err != nil {
		return nil, apperrors.Classify("active viewers", err)
	}
	return rows, nil
}

// VideosViewed counts distinct viewers per episode of release rid. Episodes
// nobody watched are listed with a count of zero.
func (c *Catalog) VideosViewed(ctx context.Context, rid int64) ([]VideoViewership, error) {
	var rows []VideoViewership
	err := c.selectRows(ctx, &rows, `
		SELECT v.rid, v.ep_num, v.title, v.length, COUNT(DISTINCT s.uid) AS viewer_count
		FROM `+"`Video`"+` v
		LEFT JOIN `+"`Session`"+` s ON s.rid = v.rid AND s.ep_num = v.ep_num
		WHERE v.rid = ?
		GROUP BY v.rid, v.ep_num, v.title, v.length
		ORDER BY v.ep_num ASC`, rid)
	if err != nil {
		return nil, apperrors.Classify("videos viewed", err)
	}
	return rows, nil
}
