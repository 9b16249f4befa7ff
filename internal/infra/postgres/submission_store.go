package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

// SubmissionStore persists graded submissions. The (user_id, test_id) primary
// key is the idempotency boundary; a conflicting insert writes nothing.
type SubmissionStore struct {
	pool *pgxpool.Pool
}

func NewSubmissionStore(pool *pgxpool.Pool) *SubmissionStore {
	return &SubmissionStore{pool: pool}
}

const submissionColumns = `user_id, test_id, answers, earned_points, total_points, created_at`

func (s *SubmissionStore) FindSubmission(ctx context.Context, userID, testID string) (domain.SubmissionResult, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM test_submissions WHERE user_id=$1 AND test_id=$2`,
		userID, testID,
	)
	result, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SubmissionResult{}, false, nil
	}
	if err != nil {
		return domain.SubmissionResult{}, false, fmt.Errorf("find submission: %w", err)
	}
	return result, true, nil
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, result domain.SubmissionResult) (domain.SubmissionResult, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("marshal answers: %w", err)
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	var createdAt time.Time
	err = s.pool.QueryRow(ctx,
		`INSERT INTO test_submissions (`+submissionColumns+`)
		 VALUES ($1, $2, $3::jsonb, $4, $5, $6)
		 ON CONFLICT (user_id, test_id) DO NOTHING
		 RETURNING created_at`,
		result.UserID, result.TestID, string(answers), result.EarnedPoints, result.TotalPoints, result.CreatedAt,
	).Scan(&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SubmissionResult{}, domain.ErrAlreadySubmitted
	}
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("insert submission: %w", err)
	}
	result.CreatedAt = createdAt.UTC()
	return result, nil
}

func (s *SubmissionStore) ListSubmissions(ctx context.Context, filter domain.SubmissionFilter) ([]domain.SubmissionResult, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.TestID != "" {
		args = append(args, filter.TestID)
		where = append(where, fmt.Sprintf("test_id=$%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		where = append(where, fmt.Sprintf("user_id=$%d", len(args)))
	}
	query := `SELECT ` + submissionColumns + ` FROM test_submissions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, user_id, test_id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SubmissionResult, 0)
	for rows.Next() {
		result, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

// ListUsersWithSubmissions joins submissions with the users table for display
// names; users without a local row are listed under their id.
func (s *SubmissionStore) ListUsersWithSubmissions(ctx context.Context) ([]domain.UserSubmissions, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT COALESCE(u.username, s.user_id), s.user_id, s.test_id, s.answers, s.earned_points, s.total_points, s.created_at
		 FROM test_submissions s
		 LEFT JOIN users u ON u.id = s.user_id
		 ORDER BY s.created_at, s.user_id, s.test_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list user submissions: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.UserSubmissions
		index = make(map[string]int)
	)
	for rows.Next() {
		var username string
		result, err := scanSubmission(rows, &username)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		i, ok := index[result.UserID]
		if !ok {
			i = len(out)
			index[result.UserID] = i
			out = append(out, domain.UserSubmissions{UserID: result.UserID, Username: username})
		}
		out[i].Submissions = append(out[i].Submissions, result)
	}
	return out, rows.Err()
}

// scanSubmission reads submissionColumns, preceded by any extra destinations.
func scanSubmission(row pgx.Row, extra ...interface{}) (domain.SubmissionResult, error) {
	var (
		result  domain.SubmissionResult
		answers []byte
	)
	dest := append(extra, &result.UserID, &result.TestID, &answers, &result.EarnedPoints, &result.TotalPoints, &result.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return domain.SubmissionResult{}, err
	}
	if err := json.Unmarshal(answers, &result.Answers); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	result.CreatedAt = result.CreatedAt.UTC()
	return result, nil
}
