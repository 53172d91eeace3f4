package repository

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

//go:embed schema.sql
var schema string

type SQLRepository struct {
	db *sql.DB
}

// Ensure SQLRepository implements the repository ports
var (
	_ ports.UserRepository  = (*SQLRepository)(nil)
	_ ports.DonorRepository = (*SQLRepository)(nil)
)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// EnsureSchema creates tables, indexes and the outbox notify trigger if missing.
func (r *SQLRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
