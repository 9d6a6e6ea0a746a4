package catalog

import (
	"database/sql"
	"strconv"
	"time"

	apperrors "streaming-db/internal/errors"
)

// Viewer is a new User together with its Viewer subtype row.
type Viewer struct {
	UID          int64
	Email        string
	Nickname     string
	Street       string
	City         string
	State        string
	Zip          string
	Genres       string
	JoinedDate   time.Time
	FirstName    string
	LastName     string
	Subscription Subscription
}

func (v Viewer) Validate() error {
	_, err := ParseSubscription(string(v.Subscription))
	return err
}

// Session is one viewing event.
type Session struct {
	SID        int64
	UID        int64
	RID        int64
	EpNum      int64
	InitiateAt time.Time
	LeaveAt    time.Time
	Quality    Quality
	Device     Device
}

func (s Session) Validate() error {
	if s.LeaveAt.Before(s.InitiateAt) {
		return apperrors.BadRequest("session %d leaves before it starts", s.SID)
	}
	if _, err := ParseQuality(string(s.Quality)); err != nil {
		return err
	}
	_, err := ParseDevice(string(s.Device))
	return err
}

// ReviewedRelease is a release a viewer has reviewed.
type ReviewedRelease struct {
	RID   int64          `db:"rid"`
	Genre sql.NullString `db:"genre"`
	Title sql.NullString `db:"title"`
}

func (r ReviewedRelease) Fields() []string {
	return []string{formatInt(r.RID), r.Genre.String, r.Title.String}
}

type PopularRelease struct {
	RID         int64          `db:"rid"`
	Title       sql.NullString `db:"title"`
	ReviewCount int64          `db:"review_count"`
}

func (r PopularRelease) Fields() []string {
	return []string{formatInt(r.RID), r.Title.String, formatInt(r.ReviewCount)}
}

// SessionRelease is the release and video a session played. Video fields are
// empty when the episode has no Video row.
type SessionRelease struct {
	RID          int64          `db:"rid"`
	ReleaseTitle sql.NullString `db:"release_title"`
	Genre        sql.NullString `db:"genre"`
	VideoTitle   sql.NullString `db:"video_title"`
	EpNum        sql.NullInt64  `db:"ep_num"`
	Length       sql.NullInt64  `db:"length"`
}

func (r SessionRelease) Fields() []string {
	return []string{
		formatInt(r.RID),
		r.ReleaseTitle.String,
		r.Genre.String,
		r.VideoTitle.String,
		formatNullInt(r.EpNum),
		formatNullInt(r.Length),
	}
}

type ActiveViewer struct {
	UID       int64          `db:"uid"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
}

func (v ActiveViewer) Fields() []string {
	return []string{formatInt(v.UID), v.FirstName.String, v.LastName.String}
}

// VideoViewership counts the distinct viewers of one episode.
type VideoViewership struct {
	RID         int64          `db:"rid"`
	EpNum       int64          `db:"ep_num"`
	Title       sql.NullString `db:"title"`
	Length      sql.NullInt64  `db:"length"`
	ViewerCount int64          `db:"viewer_count"`
}

func (v VideoViewership) Fields() []string {
	return []string{
		formatInt(v.RID),
		formatInt(v.EpNum),
		v.Title.String,
		formatNullInt(v.Length),
		formatInt(v.ViewerCount),
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatNullInt(n sql.NullInt64) string {
	if !n.Valid {
		return ""
	}
	return formatInt(n.Int64)
}
