package migrations

import (
	"context"
	"time"

	"github.com/cloudnews/cloudnews/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddSessions{})
}

type AddSessions struct{}

func (m AddSessions) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2024, 2, 12, 10, 22, 0, 0, time.UTC))
}

func (m AddSessions) Name() string {
	return "AddSessions"
}

func (m AddSessions) Description() string {
	return "Adds the session table"
}

func (m AddSessions) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE session (
			id VARCHAR(40) PRIMARY KEY,
			user_id VARCHAR(100) NOT NULL,
			first_name TEXT NOT NULL,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			birthday TIMESTAMP WITH TIME ZONE NOT NULL,
			profile_link TEXT NOT NULL,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX session_expires_at ON session (expires_at);
	`)
	return err
}

func (m AddSessions) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE session;
	`)
	return err
}
