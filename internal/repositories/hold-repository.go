package repositories

import (
	"context"
	"fmt"
	"time"

	"makerspace/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const holdColumns = "id, user_id, placed_by, removed_by, reason, create_date, remove_date"

type HoldRepositoryInterface interface {
	HasActiveHolds(ctx context.Context, userID uint64) (bool, error)
	FindByID(ctx context.Context, id uint64) (*entities.Hold, error)
	FindByUser(ctx context.Context, userID uint64) ([]entities.Hold, error)
	Create(ctx context.Context, hold *entities.Hold) error
	// Remove stamps remove_date only on a hold that is still active and
	// reports whether a row changed.
	Remove(ctx context.Context, id, removedBy uint64, at time.Time) (bool, error)
	WithTx(tx pgx.Tx) HoldRepositoryInterface
}

type HoldRepository struct {
	storage querier
}

func NewHoldRepository(storage *pgxpool.Pool) HoldRepositoryInterface {
	return &HoldRepository{storage: storage}
}

func (r *HoldRepository) WithTx(tx pgx.Tx) HoldRepositoryInterface {
	return &HoldRepository{storage: tx}
}

func (r *HoldRepository) HasActiveHolds(ctx context.Context, userID uint64) (bool, error) {
	var active bool
	err := r.storage.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM holds WHERE user_id = $1 AND remove_date IS NULL)`, userID).Scan(&active)
	return active, err
}

func scanHold(row pgx.Row) (entities.Hold, error) {
	var h entities.Hold
	err := row.Scan(&h.ID, &h.UserID, &h.PlacedBy, &h.RemovedBy, &h.Reason, &h.CreateDate, &h.RemoveDate)
	return h, err
}

func (r *HoldRepository) FindByID(ctx context.Context, id uint64) (*entities.Hold, error) {
	h, err := scanHold(r.storage.QueryRow(ctx, `SELECT `+holdColumns+` FROM holds WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("hold #%d: %w", id, notFound(err))
	}
	return &h, nil
}

func (r *HoldRepository) FindByUser(ctx context.Context, userID uint64) ([]entities.Hold, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT `+holdColumns+` FROM holds WHERE user_id = $1 ORDER BY create_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := make([]entities.Hold, 0)
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

func (r *HoldRepository) Create(ctx context.Context, hold *entities.Hold) error {
	return r.storage.QueryRow(ctx,
		`INSERT INTO holds (user_id, placed_by, reason) VALUES ($1, $2, $3) RETURNING id, create_date`,
		hold.UserID, hold.PlacedBy, hold.Reason,
	).Scan(&hold.ID, &hold.CreateDate)
}

func (r *HoldRepository) Remove(ctx context.Context, id, removedBy uint64, at time.Time) (bool, error) {
	tag, err := r.storage.Exec(ctx,
		`UPDATE holds SET remove_date = $1, removed_by = $2 WHERE id = $3 AND remove_date IS NULL`,
		at, removedBy, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
