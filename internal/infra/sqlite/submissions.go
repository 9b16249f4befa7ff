package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/medeuamangeldi/quiz-maker-api/internal/domain"
)

const submissionColumns = `user_id, test_id, answers_json, earned_points, total_points, created_at_unix`

func (s *Store) FindSubmission(ctx context.Context, userID, testID string) (domain.SubmissionResult, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+submissionColumns+` FROM test_submissions WHERE user_id = ? AND test_id = ?`,
		userID,
		testID,
	)
	result, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SubmissionResult{}, false, nil
		}
		return domain.SubmissionResult{}, false, err
	}
	return result, true, nil
}

// CreateSubmission relies on the (user_id, test_id) primary key plus
// INSERT OR IGNORE: of two racing inserts exactly one affects a row.
func (s *Store) CreateSubmission(ctx context.Context, result domain.SubmissionResult) (domain.SubmissionResult, error) {
	answers, err := json.Marshal(result.Answers)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO test_submissions (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		result.UserID,
		result.TestID,
		string(answers),
		result.EarnedPoints,
		result.TotalPoints,
		result.CreatedAt.UnixNano(),
	)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if inserted == 0 {
		return domain.SubmissionResult{}, domain.ErrAlreadySubmitted
	}
	return result, nil
}

func (s *Store) ListSubmissions(ctx context.Context, filter domain.SubmissionFilter) ([]domain.SubmissionResult, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.TestID != "" {
		where = append(where, "test_id = ?")
		args = append(args, filter.TestID)
	}
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	query := `SELECT ` + submissionColumns + ` FROM test_submissions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at_unix ASC, user_id ASC, test_id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SubmissionResult, 0)
	for rows.Next() {
		result, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, rows.Err()
}

func (s *Store) ListUsersWithSubmissions(ctx context.Context) ([]domain.UserSubmissions, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT COALESCE(u.username, s.user_id), s.user_id, s.test_id, s.answers_json, s.earned_points, s.total_points, s.created_at_unix
		 FROM test_submissions s
		 LEFT JOIN users u ON u.id = s.user_id
		 ORDER BY s.created_at_unix ASC, s.user_id ASC, s.test_id ASC`,
	)
	if err != nil {
		return nil, err
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
			return nil, err
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

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner, extra ...any) (domain.SubmissionResult, error) {
	var (
		result      domain.SubmissionResult
		answersJSON string
		createdAtNs int64
	)
	dest := append(extra, &result.UserID, &result.TestID, &answersJSON, &result.EarnedPoints, &result.TotalPoints, &createdAtNs)
	if err := row.Scan(dest...); err != nil {
		return domain.SubmissionResult{}, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &result.Answers); err != nil {
		return domain.SubmissionResult{}, err
	}
	result.CreatedAt = time.Unix(0, createdAtNs).UTC()
	return result, nil
}
