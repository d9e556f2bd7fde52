package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/workpulse/timecore-backend-go/internal/pkg/database"
)

// GetQuerier returns the transaction injected by database.WithTx when the
// caller is inside one, otherwise the pool. Repositories call this so the
// same method works in both modes.
func GetQuerier(ctx context.Context, db *database.DB) database.Querier {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return db.Pool
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505). Upsert guards rely on the store-level
// constraint rather than a check-then-insert.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
