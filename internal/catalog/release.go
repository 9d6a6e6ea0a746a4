package catalog

import (
	"context"
	"fmt"

	"streaming-db/internal/config"
	"streaming-db/internal/database"
	apperrors "streaming-db/internal/errors"
)

// InsertMovie adds the Movie subtype row. Foreign key checks are relaxed so
// the Release row may arrive later.
func (c *Catalog) InsertMovie(ctx context.Context, rid int64, websiteURL string) error {
	err := c.withoutForeignKeys(ctx,
		"INSERT INTO `Movie` (rid, website_url) VALUES (?, ?)", rid, websiteURL)
	return apperrors.Classify("insert movie", err)
}

// UpdateRelease sets a release title, leaving its other columns untouched.
// A missing release is created with only rid and title, or refused,
// depending on policy.
func (c *Catalog) UpdateRelease(ctx context.Context, rid int64, title string) error {
	err := c.inTx(ctx, func(tx *database.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM `Release` WHERE rid = ?", rid); err != nil {
			return err
		}

		if n > 0 {
			_, err := tx.ExecContext(ctx, "UPDATE `Release` SET title = ? WHERE rid = ?", title, rid)
			return err
		}

		if c.policies.UpdateReleaseMissing == config.MissingFail {
			return apperrors.NotFound("release %d not found", rid)
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO `Release` (rid, title) VALUES (?, ?)", rid, title)
		return err
	})
	return apperrors.Classify("update release", err)
}

// ListReleases returns the distinct releases uid has reviewed, by title.
func (c *Catalog) ListReleases(ctx context.Context, uid int64) ([]ReviewedRelease, error) {
	var rows []ReviewedRelease
	err := c.selectRows(ctx, &rows, `
		SELECT DISTINCT r.rid, r.genre, r.title
		FROM `+"`Review`"+` rv
		JOIN `+"`Release`"+` r ON rv.rid = r.rid
		WHERE rv.uid = ?
		ORDER BY r.title ASC, r.rid ASC`, uid)
	if err != nil {
		return nil, apperrors.Classify("list releases", err)
	}
	return rows, nil
}

// PopularReleases ranks releases by review count, zero-review releases
// included, and returns the first n.
func (c *Catalog) PopularReleases(ctx context.Context, n int) ([]PopularRelease, error) {
	if n < 0 {
		return nil, apperrors.BadRequest("limit must not be negative: %d", n)
	}

	direction := "DESC"
	if c.policies.PopularTieBreak == config.TieBreakRidAsc {
		direction = "ASC"
	}

	var rows []PopularRelease
	err := c.selectRows(ctx, &rows, fmt.Sprintf(`
		SELECT r.rid, r.title, COUNT(rv.rvid) AS review_count
		FROM `+"`Release`"+` r
		LEFT JOIN `+"`Review`"+` rv ON rv.rid = r.rid
		GROUP BY r.rid, r.title
		ORDER BY review_count DESC, r.rid %s
		LIMIT ?`, direction), n)
	if err != nil {
		return nil, apperrors.Classify("popular releases", err)
	}
	return rows, nil
}

// ReleaseTitle looks up the release and video played in session sid.
func (c *Catalog) ReleaseTitle(ctx context.Context, sid int64) ([]SessionRelease, error) {
	var rows []SessionRelease
	err := c.selectRows(ctx, &rows, `
		SELECT r.rid, r.title AS release_title, r.genre, v.title AS video_title, s.ep_num, v.length
		FROM `+"`Session`"+` s
		JOIN `+"`Release`"+` r ON s.rid = r.rid
		LEFT JOIN `+"`Video`"+` v ON v.rid = s.rid AND v.ep_num = s.ep_num
		WHERE s.sid = ?
		ORDER BY r.title ASC`, sid)
	if err != nil {
		return nil, apperrors.Classify("release title", err)
	}
	return rows, nil
}
