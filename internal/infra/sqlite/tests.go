package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

func (s *Store) GetTest(ctx context.Context, testID string) (domain.Test, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data_json FROM tests WHERE id = ?`, testID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Test{}, domain.ErrTestNotFound
		}
		return domain.Test{}, err
	}

	var test domain.Test
	if err := json.Unmarshal([]byte(raw), &test); err != nil {
		return domain.Test{}, err
	}
	return test, nil
}

func (s *Store) CreateTest(ctx context.Context, test domain.Test) error {
	if test.CreatedAt.IsZero() {
		test.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(test)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO tests (id, title, data_json, created_at_unix) VALUES (?, ?, ?, ?)`,
		test.ID,
		test.Title,
		string(data),
		test.CreatedAt.UnixNano(),
	)
	return err
}

func (s *Store) ListTests(ctx context.Context) ([]domain.Test, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data_json FROM tests ORDER BY created_at_unix ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tests := make([]domain.Test, 0)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var test domain.Test
		if err := json.Unmarshal([]byte(raw), &test); err != nil {
			return nil, err
		}
		tests = append(tests, test)
	}
	return tests, rows.Err()
}
