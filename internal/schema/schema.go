package schema

import (
	"context"
	"fmt"
	"strings"

	"streaming-db/internal/database"
)

// Table describes one relation: its CSV column order and its DDL.
type Table struct {
	Name    string
	Columns []string

	// body is the column list of CREATE TABLE. DATETIME is replaced by the
	// dialect's date-time type.
	body string
}

// CreateStatement renders the table's DDL for a dialect.
func (t Table) CreateStatement(d database.Dialect) string {
	body := strings.ReplaceAll(t.body, "DATETIME", d.DateTimeType())
	return fmt.Sprintf("CREATE TABLE `%s` (%s)", t.Name, body)
}

func (t Table) DropStatement() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS `%s`", t.Name)
}

// InsertStatement inserts one full row in column order.
func (t Table) InsertStatement() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO `%s` (%s) VALUES (%s)", t.Name, strings.Join(t.Columns, ", "), placeholders)
}

func GetUserSchema() Table {
	return Table{
		Name:    "User",
		Columns: []string{"uid", "email", "joined_date", "nickname", "street", "city", "state", "zip", "genres"},
		body: `
			uid INT PRIMARY KEY,
			email VARCHAR(255),
			joined_date DATE,
			nickname VARCHAR(255),
			street VARCHAR(255),
			city VARCHAR(255),
			state VARCHAR(50),
			zip VARCHAR(20),
			genres VARCHAR(1024)
		`,
	}
}

func GetProducerSchema() Table {
	return Table{
		Name:    "Producer",
		Columns: []string{"uid", "bio", "company"},
		body: `
			uid INT PRIMARY KEY,
			bio TEXT,
			company VARCHAR(255),
			FOREIGN KEY (uid) REFERENCES ` + "`User`" + `(uid)
		`,
	}
}

func GetViewerSchema() Table {
	return Table{
		Name:    "Viewer",
		Columns: []string{"uid", "subscription", "first_name", "last_name"},
		body: `
			uid INT PRIMARY KEY,
			subscription VARCHAR(16),
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			CHECK (subscription IN ('free', 'monthly', 'yearly')),
			FOREIGN KEY (uid) REFERENCES ` + "`User`" + `(uid)
		`,
	}
}

func GetReleaseSchema() Table {
	return Table{
		Name:    "Release",
		Columns: []string{"rid", "producer_uid", "title", "genre", "release_date"},
		body: `
			rid INT PRIMARY KEY,
			producer_uid INT,
			title VARCHAR(255),
			genre VARCHAR(255),
			release_date DATE,
			FOREIGN KEY (producer_uid) REFERENCES ` + "`Producer`" + `(uid)
		`,
	}
}

func GetMovieSchema() Table {
	return Table{
		Name:    "Movie",
		Columns: []string{"rid", "website_url"},
		body: `
			rid INT PRIMARY KEY,
			website_url VARCHAR(1024),
			FOREIGN KEY (rid) REFERENCES ` + "`Release`" + `(rid)
		`,
	}
}

func GetSeriesSchema() Table {
	return Table{
		Name:    "Series",
		Columns: []string{"rid", "introduction"},
		body: `
			rid INT PRIMARY KEY,
			introduction TEXT,
			FOREIGN KEY (rid) REFERENCES ` + "`Release`" + `(rid)
		`,
	}
}

func GetVideoSchema() Table {
	return Table{
		Name:    "Video",
		Columns: []string{"rid", "ep_num", "title", "length"},
		body: `
			rid INT,
			ep_num INT,
			title VARCHAR(255),
			length INT,
			PRIMARY KEY (rid, ep_num),
			FOREIGN KEY (rid) REFERENCES ` + "`Release`" + `(rid)
		`,
	}
}

func GetSessionSchema() Table {
	return Table{
		Name:    "Session",
		Columns: []string{"sid", "uid", "rid", "ep_num", "initiate_at", "leave_at", "quality", "device"},
		body: `
			sid INT PRIMARY KEY,
			uid INT,
			rid INT,
			ep_num INT,
			initiate_at DATETIME,
			leave_at DATETIME,
			quality VARCHAR(16),
			device VARCHAR(16),
			CHECK (quality IN ('480p', '720p', '1080p')),
			CHECK (device IN ('mobile', 'desktop')),
			FOREIGN KEY (uid) REFERENCES ` + "`Viewer`" + `(uid),
			FOREIGN KEY (rid, ep_num) REFERENCES ` + "`Video`" + `(rid, ep_num)
		`,
	}
}

func GetReviewSchema() Table {
	return Table{
		Name:    "Review",
		Columns: []string{"rvid", "uid", "rid", "rating", "body", "posted_at"},
		body: `
			rvid INT PRIMARY KEY,
			uid INT,
			rid INT,
			rating INT,
			body TEXT,
			posted_at DATETIME,
			CHECK (rating BETWEEN 0 AND 5),
			FOREIGN KEY (uid) REFERENCES ` + "`Viewer`" + `(uid),
			FOREIGN KEY (rid) REFERENCES ` + "`Release`" + `(rid)
		`,
	}
}

// Tables lists every relation parents first. Loading follows this order;
// dropping follows its reverse.
func Tables() []Table {
	return []Table{
		GetUserSchema(),
		GetProducerSchema(),
		GetViewerSchema(),
		GetReleaseSchema(),
		GetMovieSchema(),
		GetSeriesSchema(),
		GetVideoSchema(),
		GetSessionSchema(),
		GetReviewSchema(),
	}
}

// Recreate drops and recreates every table with referential-integrity checks
// disabled on conn. It must not run inside a transaction.
func Recreate(ctx context.Context, conn *database.Conn) error {
	tables := Tables()

	return conn.WithoutForeignKeys(ctx, func() error {
		for i := len(tables) - 1; i >= 0; i-- {
			if _, err := conn.ExecContext(ctx, tables[i].DropStatement()); err != nil {
				return fmt.Errorf("drop %s: %w", tables[i].Name, err)
			}
		}
		for _, t := range tables {
			if _, err := conn.ExecContext(ctx, t.CreateStatement(conn.Dialect())); err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
		}
		return nil
	})
}
