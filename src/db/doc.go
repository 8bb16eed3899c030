/*
This package contains lowish-level APIs for making database queries to our Postgres database. It streamlines the process of mapping query results to Go types, while allowing you to write arbitrary SQL queries.

The primary functions are Query and QueryIterator.

Query syntax

This package allows a few small extensions to SQL syntax to streamline the interaction between Go and Postgres.

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	ids, err := db.Query[uuid.UUID](ctx, conn,
		`
		SELECT id
		FROM article
		WHERE
			status = ANY($1)
			AND writer = $2
		`,
		[]string{"draft", "submitted"},
		writerID,
	)

(This also demonstrates a useful tip: if you want to use a slice in your query, use Postgres arrays instead of IN.)

When querying individual fields, you can simply select the field like so:

	titles, err := db.Query[string](ctx, conn, `SELECT title FROM article`)

To query multiple columns at once, you may use a struct type with `db:"column_name"` tags, and the special $columns placeholder:

	type Article struct {
		ID        uuid.UUID `db:"id"`
		Title     string    `db:"title"`
		CreatedAt time.Time `db:"created_at"`
	}
	articles, err := db.Query[Article](ctx, conn, `SELECT $columns FROM ...`)
	// Resulting query:
	// SELECT id, title, created_at FROM ...

Sometimes a table name prefix is required on each column to disambiguate between column names, especially when performing a JOIN. In those situations, you can include the prefix in the $columns placeholder like $columns{prefix}:

	articles, err := db.Query[Article](ctx, conn, `
		SELECT $columns{article}
		FROM
			article
			LEFT JOIN sessions ON sessions.user_id = article.writer
	`)
	// Resulting query:
	// SELECT article.id, article.title, article.created_at FROM ...
*/
package db
