package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
)

func (r *SQLRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, username, full_name, cpf, birth_date_user, password_hash, role, created_at
		 FROM users WHERE username = $1`,
		username,
	).Scan(&user.ID, &user.Username, &user.FullName, &user.CPF, &user.BirthDate,
		&user.PasswordHash, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *SQLRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE cpf = $1)", cpf).Scan(&exists)
	return exists, err
}

func (r *SQLRepository) CreateUser(ctx context.Context, user domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, full_name, cpf, birth_date_user, password_hash, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID,
		user.Username,
		user.FullName,
		user.CPF,
		user.BirthDate,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
	)
	return err
}
