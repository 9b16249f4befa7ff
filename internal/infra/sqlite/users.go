package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO users (id, username, email, created_at_unix) VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.CreatedAt.UnixNano(),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return domain.ErrUserExists
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.findUser(ctx, `id = ?`, userID)
}

func (s *Store) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findUser(ctx, `email = ?`, email)
}

func (s *Store) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.findUser(ctx, `username = ?`, username)
}

func (s *Store) findUser(ctx context.Context, where, arg string) (domain.User, error) {
	var (
		user        domain.User
		createdAtNs int64
	)
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, username, email, created_at_unix FROM users WHERE `+where,
		arg,
	).Scan(&user.ID, &user.Username, &user.Email, &createdAtNs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	user.CreatedAt = time.Unix(0, createdAtNs).UTC()
	return user, nil
}
