package testhelpers

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// InsertUser inserts a user row directly and returns its ID
func InsertUser(ctx context.Context, db *sqlx.DB, username string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		"INSERT INTO users (username, password_hash) VALUES ($1, 'x') RETURNING id",
		username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user %s: %w", username, err)
	}
	return id, nil
}
