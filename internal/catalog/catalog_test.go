package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"streaming-db/internal/config"
	"streaming-db/internal/database"
	apperrors "streaming-db/internal/errors"
	"streaming-db/internal/result"
	"streaming-db/internal/testutil"
)

type CatalogTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *database.Store
	catalog *Catalog
}

func (s *CatalogTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewSeededStore(s.T())
	s.catalog = New(s.store, config.DefaultPolicies(), zaptest.NewLogger(s.T()))
}

func (s *CatalogTestSuite) withPolicies(mutate func(*config.Policies)) {
	policies := config.DefaultPolicies()
	mutate(&policies)
	s.catalog = New(s.store, policies, zaptest.NewLogger(s.T()))
}

func (s *CatalogTestSuite) count(query string, args ...interface{}) int {
	var n int
	err := s.store.WithConn(s.ctx, func(conn *database.Conn) error {
		return conn.GetContext(s.ctx, &n, query, args...)
	})
	s.Require().NoError(err)
	return n
}

func (s *CatalogTestSuite) genres(uid int64) string {
	var g string
	err := s.store.WithConn(s.ctx, func(conn *database.Conn) error {
		return conn.GetContext(s.ctx, &g, "SELECT COALESCE(genres, '') FROM `User` WHERE uid = ?", uid)
	})
	s.Require().NoError(err)
	return g
}

func lines[T result.Row](rows []T) []string {
	var out []string
	for _, r := range rows {
		out = append(out, strings.Join(r.Fields(), ","))
	}
	return out
}

func newViewer(uid int64) Viewer {
	return Viewer{
		UID:          uid,
		Email:        "dee@example.com",
		Nickname:     "dee",
		Street:       "4 Elm St",
		City:         "Irvine",
		State:        "CA",
		Zip:          "92617",
		Genres:       "Drama",
		JoinedDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		FirstName:    "Dee",
		LastName:     "Park",
		Subscription: SubscriptionFree,
	}
}

func (s *CatalogTestSuite) TestInsertViewer() {
	s.Require().NoError(s.catalog.InsertViewer(s.ctx, newViewer(20)))

	s.Equal(1, s.count("SELECT COUNT(*) FROM `User` WHERE uid = ? AND joined_date = '2024-02-01'", 20))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Viewer` WHERE uid = ? AND subscription = 'free'", 20))
}

func (s *CatalogTestSuite) TestInsertViewerDuplicate() {
	err := s.catalog.InsertViewer(s.ctx, newViewer(1))
	s.Require().Error(err)
	s.True(apperrors.IsConflict(err))
}

func (s *CatalogTestSuite) TestInsertViewerIsAtomic() {
	// an orphan Viewer row makes the second insert fail after the first succeeded
	err := s.store.WithConn(s.ctx, func(conn *database.Conn) error {
		return conn.WithoutForeignKeys(s.ctx, func() error {
			_, err := conn.ExecContext(s.ctx, "INSERT INTO `Viewer` (uid, subscription) VALUES (?, ?)", 30, "free")
			return err
		})
	})
	s.Require().NoError(err)

	s.Require().Error(s.catalog.InsertViewer(s.ctx, newViewer(30)))
	s.Zero(s.count("SELECT COUNT(*) FROM `User` WHERE uid = ?", 30))
}

func (s *CatalogTestSuite) TestInsertViewerRejectsSubscription() {
	v := newViewer(21)
	v.Subscription = "weekly"
	s.True(apperrors.IsBadRequest(s.catalog.InsertViewer(s.ctx, v)))
	s.Zero(s.count("SELECT COUNT(*) FROM `User` WHERE uid = ?", 21))
}

func (s *CatalogTestSuite) TestAddGenre() {
	s.Require().NoError(s.catalog.AddGenre(s.ctx, 2, "Horror"))
	s.Equal("Horror", s.genres(2))

	err := s.catalog.AddGenre(s.ctx, 2, "horror")
	s.True(apperrors.IsConflict(err))

	s.Require().NoError(s.catalog.AddGenre(s.ctx, 2, "Comedy"))
	s.Equal("Horror,Comedy", s.genres(2))

	s.Require().NoError(s.catalog.AddGenre(s.ctx, 1, "Thriller"))
	s.Equal("Drama,Comedy,Thriller", s.genres(1))
}

func (s *CatalogTestSuite) TestAddGenreMissingUser() {
	s.NoError(s.catalog.AddGenre(s.ctx, 404, "Drama"))

	s.withPolicies(func(p *config.Policies) { p.AddGenreMissingUser = config.MissingFail })
	s.True(apperrors.IsNotFound(s.catalog.AddGenre(s.ctx, 404, "Drama")))
}

func (s *CatalogTestSuite) TestDeleteViewer() {
	s.Require().NoError(s.catalog.DeleteViewer(s.ctx, 1))

	s.Zero(s.count("SELECT COUNT(*) FROM `Session` WHERE uid = ?", 1))
	s.Zero(s.count("SELECT COUNT(*) FROM `Review` WHERE uid = ?", 1))
	s.Zero(s.count("SELECT COUNT(*) FROM `Viewer` WHERE uid = ?", 1))
	s.Zero(s.count("SELECT COUNT(*) FROM `User` WHERE uid = ?", 1))

	// other viewers are untouched
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Session` WHERE uid = ?", 2))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Review` WHERE uid = ?", 2))
}

func (s *CatalogTestSuite) TestDeleteViewerKeepsProducer() {
	testutil.Seed(s.T(), s.store, map[string][][]string{
		"Viewer": {{"10", "free", "Paula", ""}},
	})

	s.Require().NoError(s.catalog.DeleteViewer(s.ctx, 10))
	s.Zero(s.count("SELECT COUNT(*) FROM `Viewer` WHERE uid = ?", 10))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `User` WHERE uid = ?", 10))
}

func (s *CatalogTestSuite) TestDeleteMissingViewer() {
	s.NoError(s.catalog.DeleteViewer(s.ctx, 404))
	// a producer is not a viewer
	s.NoError(s.catalog.DeleteViewer(s.ctx, 10))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `User` WHERE uid = ?", 10))

	s.withPolicies(func(p *config.Policies) { p.DeleteMissingViewer = config.MissingFail })
	s.True(apperrors.IsNotFound(s.catalog.DeleteViewer(s.ctx, 404)))
}

func (s *CatalogTestSuite) TestInsertMovie() {
	s.Require().NoError(s.catalog.InsertMovie(s.ctx, 500, "https://example.com/later"))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Movie` WHERE rid = ?", 500))
	s.Equal(1, s.count("PRAGMA foreign_keys"))

	s.True(apperrors.IsConflict(s.catalog.InsertMovie(s.ctx, 100, "https://example.com/dup")))
}

func (s *CatalogTestSuite) TestInsertSession() {
	start, _ := ParseTimestamp("2024-02-01T08:00:00")
	end, _ := ParseTimestamp("2024-02-01 09:30:00")
	session := Session{
		SID: 50, UID: 2, RID: 100, EpNum: 1,
		InitiateAt: start, LeaveAt: end,
		Quality: Quality720p, Device: DeviceMobile,
	}

	s.Require().NoError(s.catalog.InsertSession(s.ctx, session))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Session` WHERE sid = ? AND initiate_at = '2024-02-01 08:00:00'", 50))

	// references are not checked at insert time
	session.SID, session.UID = 51, 999
	s.NoError(s.catalog.InsertSession(s.ctx, session))
	s.Equal(1, s.count("PRAGMA foreign_keys"))

	session.SID, session.LeaveAt = 52, start.Add(-time.Minute)
	s.True(apperrors.IsBadRequest(s.catalog.InsertSession(s.ctx, session)))

	session.SID, session.LeaveAt = 1, end
	s.True(apperrors.IsConflict(s.catalog.InsertSession(s.ctx, session)))
}

func (s *CatalogTestSuite) TestUpdateRelease() {
	s.Require().NoError(s.catalog.UpdateRelease(s.ctx, 100, "Arrival (Director's Cut)"))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Release` WHERE rid = ? AND title = ? AND genre = 'SciFi' AND producer_uid = 10", 100, "Arrival (Director's Cut)"))

	// same title again is still a success
	s.Require().NoError(s.catalog.UpdateRelease(s.ctx, 100, "Arrival (Director's Cut)"))

	s.Require().NoError(s.catalog.UpdateRelease(s.ctx, 700, "Dune"))
	s.Equal(1, s.count("SELECT COUNT(*) FROM `Release` WHERE rid = ? AND title = ? AND genre IS NULL", 700, "Dune"))

	s.withPolicies(func(p *config.Policies) { p.UpdateReleaseMissing = config.MissingFail })
	s.True(apperrors.IsNotFound(s.catalog.UpdateRelease(s.ctx, 701, "Dune Part Two")))
	s.Zero(s.count("SELECT COUNT(*) FROM `Release` WHERE rid = ?", 701))
}

func (s *CatalogTestSuite) TestListReleases() {
	rows, err := s.catalog.ListReleases(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]string{"100,SciFi,Arrival", "101,Animation,Brave"}, lines(rows))

	rows, err = s.catalog.ListReleases(s.ctx, 3)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *CatalogTestSuite) TestPopularReleases() {
	rows, err := s.catalog.PopularReleases(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]string{"100,Arrival,2", "101,Brave,1"}, lines(rows))

	rows, err = s.catalog.PopularReleases(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal([]string{"100,Arrival,2", "101,Brave,1", "102,Cosmos,0"}, lines(rows))

	rows, err = s.catalog.PopularReleases(s.ctx, 0)
	s.Require().NoError(err)
	s.Empty(rows)

	_, err = s.catalog.PopularReleases(s.ctx, -1)
	s.True(apperrors.IsBadRequest(err))
}

func (s *CatalogTestSuite) TestPopularReleasesTieBreak() {
	testutil.Seed(s.T(), s.store, map[string][][]string{
		"Review": {{"4", "2", "101", "4", "", ""}},
	})

	rows, err := s.catalog.PopularReleases(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]string{"101,Brave,2", "100,Arrival,2"}, lines(rows))

	s.withPolicies(func(p *config.Policies) { p.PopularTieBreak = config.TieBreakRidAsc })
	rows, err = s.catalog.PopularReleases(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]string{"100,Arrival,2", "101,Brave,2"}, lines(rows))
}

func (s *CatalogTestSuite) TestReleaseTitle() {
	rows, err := s.catalog.ReleaseTitle(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal([]string{"100,Arrival,SciFi,Arrival,1,116"}, lines(rows))

	rows, err = s.catalog.ReleaseTitle(s.ctx, 999)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *CatalogTestSuite) TestReleaseTitleWithoutVideo() {
	start, _ := ParseTimestamp("2024-02-01 08:00:00")
	s.Require().NoError(s.catalog.InsertSession(s.ctx, Session{
		SID: 60, UID: 1, RID: 100, EpNum: 5,
		InitiateAt: start, LeaveAt: start,
		Quality: Quality480p, Device: DeviceDesktop,
	}))

	rows, err := s.catalog.ReleaseTitle(s.ctx, 60)
	s.Require().NoError(err)
	s.Equal([]string{"100,Arrival,SciFi,,5,"}, lines(rows))
}

func (s *CatalogTestSuite) TestActiveViewers() {
	w, err := ParseWindow(config.WindowDate, "2024-01-05", "2024-01-08")
	s.Require().NoError(err)

	rows, err := s.catalog.ActiveViewers(s.ctx, 2, w)
	s.Require().NoError(err)
	s.Equal([]string{"1,Ada,Lovelace"}, lines(rows))

	rows, err = s.catalog.ActiveViewers(s.ctx, 1, w)
	s.Require().NoError(err)
	s.Equal([]string{"1,Ada,Lovelace", "2,Ben,Stone"}, lines(rows))

	rows, err = s.catalog.ActiveViewers(s.ctx, 4, w)
	s.Require().NoError(err)
	s.Empty(rows)
}

func (s *CatalogTestSuite) TestActiveViewersBoundary() {
	// session 5 starts at 2024-01-10 10:00:00
	w, err := ParseWindow(config.WindowDate, "2024-01-09", "2024-01-10")
	s.Require().NoError(err)
	rows, err := s.catalog.ActiveViewers(s.ctx, 1, w)
	s.Require().NoError(err)
	s.Equal([]string{"3,Cy,"}, lines(rows))

	w, err = ParseWindow(config.WindowTimestamp, "2024-01-09", "2024-01-10")
	s.Require().NoError(err)
	rows, err = s.catalog.ActiveViewers(s.ctx, 1, w)
	s.Require().NoError(err)
	s.Empty(rows)

	w, err = ParseWindow(config.WindowTimestamp, "2024-01-09", "2024-01-10 10:00:00")
	s.Require().NoError(err)
	rows, err = s.catalog.ActiveViewers(s.ctx, 1, w)
	s.Require().NoError(err)
	s.Equal([]string{"3,Cy,"}, lines(rows))
}

func (s *CatalogTestSuite) TestVideosViewed() {
	rows, err := s.catalog.VideosViewed(s.ctx, 102)
	s.Require().NoError(err)
	s.Equal([]string{"102,1,Standing Up,44,2", "102,2,Molecules,,0"}, lines(rows))

	rows, err = s.catalog.VideosViewed(s.ctx, 999)
	s.Require().NoError(err)
	s.Empty(rows)
}

func TestCatalogTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func TestPopularReleaseExample(t *testing.T) {
	store := testutil.NewTestStore(t)
	testutil.Seed(t, store, map[string][][]string{
		"User":    {{"1", "", "", "", "", "", "", "", ""}, {"2", "", "", "", "", "", "", "", ""}},
		"Viewer":  {{"1", "free", "", ""}, {"2", "free", "", ""}},
		"Release": {{"1", "", "A", "", ""}, {"2", "", "B", "", ""}},
		"Review":  {{"1", "1", "1", "5", "", ""}, {"2", "2", "1", "3", "", ""}},
	})

	rows, err := New(store, config.DefaultPolicies(), nil).PopularReleases(context.Background(), 2)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, result.FromRows(rows).Render(&out, config.EmptyFail))
	assert.Equal(t, "1,A,2\n2,B,0\n", out.String())
}
