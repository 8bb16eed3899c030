package migrations

import (
	"context"
	"time"

	"github.com/cloudnews/cloudnews/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddArticles{})
}

type AddArticles struct{}

func (m AddArticles) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2024, 2, 12, 10, 15, 0, 0, time.UTC))
}

func (m AddArticles) Name() string {
	return "AddArticles"
}

func (m AddArticles) Description() string {
	return "Adds the article table"
}

func (m AddArticles) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE article (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			text TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'draft',
			writer VARCHAR(100) NOT NULL,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			visits INT NOT NULL DEFAULT 0,
			has_image BOOLEAN NOT NULL DEFAULT FALSE,
			image_name VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			published_at TIMESTAMP WITH TIME ZONE,

			CHECK ((latitude IS NULL) = (longitude IS NULL))
		);

		CREATE INDEX article_writer ON article (writer);
		CREATE INDEX article_status_updated ON article (status, updated_at);
		CREATE INDEX article_published ON article (published_at DESC) WHERE status = 'published';
	`)
	return err
}

func (m AddArticles) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE article;
	`)
	return err
}
