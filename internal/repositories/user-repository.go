package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"makerspace/internal/entities"
	apperrors "makerspace/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const userColumns = "id, first_name, last_name, email, username, university_id, privilege, archived, notes, created_at"

type UserRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByUniversityID(ctx context.Context, universityID string) (*entities.User, error)
	UpdatePrivilege(ctx context.Context, id uint64, privilege entities.Privilege) error
	SetArchived(ctx context.Context, id uint64, archived bool) error
	WithTx(tx pgx.Tx) UserRepositoryInterface
}

type UserRepository struct {
	storage querier
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func (r *UserRepository) WithTx(tx pgx.Tx) UserRepositoryInterface {
	return &UserRepository{storage: tx, logger: r.logger}
}

// HashUniversityID is the one-way digest stored in place of the raw identifier.
func HashUniversityID(universityID string) string {
	sum := sha256.Sum256([]byte(universityID))
	return hex.EncodeToString(sum[:])
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Username,
		&u.UniversityID, &u.Privilege, &u.Archived, &u.Notes, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("user #%d: %w", id, err)
	}
	return user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.storage.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return user, nil
}

// FindByUniversityID hashes the raw identifier before the lookup; the
// plaintext never reaches the database.
func (r *UserRepository) FindByUniversityID(ctx context.Context, universityID string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE university_id = $1`
	return scanUser(r.storage.QueryRow(ctx, query, HashUniversityID(universityID)))
}

func (r *UserRepository) UpdatePrivilege(ctx context.Context, id uint64, privilege entities.Privilege) error {
	tag, err := r.storage.Exec(ctx, `UPDATE users SET privilege = $1 WHERE id = $2`, privilege, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user #%d: %w", id, apperrors.ErrNotFound)
	}
	r.logger.Debug("privilege updated", zap.Uint64("userID", id), zap.String("privilege", string(privilege)))
	return nil
}

func (r *UserRepository) SetArchived(ctx context.Context, id uint64, archived bool) error {
	tag, err := r.storage.Exec(ctx, `UPDATE users SET archived = $1 WHERE id = $2`, archived, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
