package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"streaming-db/internal/config"
	"streaming-db/internal/database"
	apperrors "streaming-db/internal/errors"
)

// InsertViewer writes the User row and the Viewer row in one transaction.
func (c *Catalog) InsertViewer(ctx context.Context, v Viewer) error {
	if err := v.Validate(); err != nil {
		return err
	}

	err := c.inTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO `User` (uid, email, joined_date, nickname, street, city, state, zip, genres) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			v.UID, v.Email, v.JoinedDate.Format(DateLayout), v.Nickname, v.Street, v.City, v.State, v.Zip, v.Genres)
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO `Viewer` (uid, subscription, first_name, last_name) VALUES (?, ?, ?, ?)",
			v.UID, string(v.Subscription), v.FirstName, v.LastName)
		if err != nil {
			return fmt.Errorf("insert viewer: %w", err)
		}
		return nil
	})
	return apperrors.Classify("insert viewer", err)
}

// AddGenre appends genre to the user's genre list.
func (c *Catalog) AddGenre(ctx context.Context, uid int64, genre string) error {
	err := c.inTx(ctx, func(tx *database.Tx) error {
		var genres sql.NullString
		err := tx.GetContext(ctx, &genres, "SELECT genres FROM `User` WHERE uid = ?", uid)
		if errors.Is(err, sql.ErrNoRows) {
			if c.policies.AddGenreMissingUser == config.MissingFail {
				return apperrors.NotFound("user %d not found", uid)
			}
			c.logger.Info("No such user, nothing to add", zap.Int64("uid", uid))
			return nil
		}
		if err != nil {
			return fmt.Errorf("read genres: %w", err)
		}

		updated, err := appendGenre(genres.String, genre)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, "UPDATE `User` SET genres = ? WHERE uid = ?", updated, uid)
		return err
	})
	return apperrors.Classify("add genre", err)
}

// DeleteViewer removes the viewer's sessions, then reviews, then the Viewer
// row, then the User row unless the user is also a producer.
func (c *Catalog) DeleteViewer(ctx context.Context, uid int64) error {
	err := c.inTx(ctx, func(tx *database.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM `Viewer` WHERE uid = ?", uid); err != nil {
			return err
		}
		if n == 0 {
			if c.policies.DeleteMissingViewer == config.MissingFail {
				return apperrors.NotFound("viewer %d not found", uid)
			}
			c.logger.Info("No such viewer, nothing to delete", zap.Int64("uid", uid))
			return nil
		}

		steps := []struct {
			name  string
			query string
		}{
			{"sessions", "DELETE FROM `Session` WHERE uid = ?"},
			{"reviews", "DELETE FROM `Review` WHERE uid = ?"},
			{"viewer", "DELETE FROM `Viewer` WHERE uid = ?"},
			{"user", "DELETE FROM `User` WHERE uid = ? AND uid NOT IN (SELECT uid FROM `Producer`)"},
		}
		for _, step := range steps {
			res, err := tx.ExecContext(ctx, step.query, uid)
			if err != nil {
				return fmt.Errorf("delete %s: %w", step.name, err)
			}
			if affected, err := res.RowsAffected(); err == nil {
				c.logger.Debug("Deleted", zap.String("rows", step.name), zap.Int64("count", affected))
			}
		}
		return nil
	})
	return apperrors.Classify("delete viewer", err)
}
