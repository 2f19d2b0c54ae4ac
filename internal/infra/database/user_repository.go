package database

import (
	"context"
	"database/sql"

	"github.com/luminacrm/lumina/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindByEmail returns the user and their stored password credential
// (bcrypt hash, or legacy plaintext for rows that predate hashing).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, string, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, COALESCE(name, ''), email, password
		FROM admin_users WHERE email = $1`, email)

	var (
		u        entity.User
		password string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &password)
	if err == sql.ErrNoRows {
		return nil, "", entity.ErrUserNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return &u, password, nil
}
