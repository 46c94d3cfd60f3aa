package repositories

import (
	"context"

	"makerspace/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const submissionColumns = "id, maker_id, module_id, passed, score, submission_date, expiration_date"

type SubmissionRepositoryInterface interface {
	// Create only ever inserts; submissions are never updated or deleted.
	Create(ctx context.Context, submission *entities.ModuleSubmission) error
	FindPassedByUser(ctx context.Context, userID uint64) ([]entities.ModuleSubmission, error)
	FindByUserAndModule(ctx context.Context, userID, moduleID uint64) ([]entities.ModuleSubmission, error)
	WithTx(tx pgx.Tx) SubmissionRepositoryInterface
}

type SubmissionRepository struct {
	storage querier
}

func NewSubmissionRepository(storage *pgxpool.Pool) SubmissionRepositoryInterface {
	return &SubmissionRepository{storage: storage}
}

func (r *SubmissionRepository) WithTx(tx pgx.Tx) SubmissionRepositoryInterface {
	return &SubmissionRepository{storage: tx}
}

func (r *SubmissionRepository) Create(ctx context.Context, s *entities.ModuleSubmission) error {
	return r.storage.QueryRow(ctx, `
		INSERT INTO module_submissions (maker_id, module_id, passed, score, submission_date, expiration_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		s.UserID, s.ModuleID, s.Passed, s.Score, s.SubmissionDate, s.ExpirationDate,
	).Scan(&s.ID)
}

func (r *SubmissionRepository) list(ctx context.Context, query string, args ...any) ([]entities.ModuleSubmission, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]entities.ModuleSubmission, 0)
	for rows.Next() {
		var s entities.ModuleSubmission
		if err := rows.Scan(&s.ID, &s.UserID, &s.ModuleID, &s.Passed, &s.Score, &s.SubmissionDate, &s.ExpirationDate); err != nil {
			return nil, err
		}
		submissions = append(submissions, s)
	}
	return submissions, rows.Err()
}

// FindPassedByUser returns passed submissions including expired ones; the
// caller decides validity against its own clock.
func (r *SubmissionRepository) FindPassedByUser(ctx context.Context, userID uint64) ([]entities.ModuleSubmission, error) {
	return r.list(ctx, `SELECT `+submissionColumns+` FROM module_submissions
		WHERE maker_id = $1 AND passed = TRUE
		ORDER BY expiration_date DESC`, userID)
}

func (r *SubmissionRepository) FindByUserAndModule(ctx context.Context, userID, moduleID uint64) ([]entities.ModuleSubmission, error) {
	return r.list(ctx, `SELECT `+submissionColumns+` FROM module_submissions
		WHERE maker_id = $1 AND module_id = $2
		ORDER BY submission_date DESC, id DESC`, userID, moduleID)
}
