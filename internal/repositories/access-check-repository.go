package repositories

import (
	"context"
	"fmt"

	"makerspace/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccessCheckRepositoryInterface interface {
	// Ensure creates the pending check if none exists and reports whether it did.
	Ensure(ctx context.Context, userID, equipmentID uint64) (bool, error)
	FindByID(ctx context.Context, id uint64) (*entities.AccessCheck, error)
	List(ctx context.Context, approved *bool) ([]entities.AccessCheck, error)
	ListByUser(ctx context.Context, userID uint64) ([]entities.AccessCheck, error)
	SetApproval(ctx context.Context, id uint64, approved bool) (*entities.AccessCheck, error)
	IsApproved(ctx context.Context, userID, equipmentID uint64) (bool, error)
	WithTx(tx pgx.Tx) AccessCheckRepositoryInterface
}

type AccessCheckRepository struct {
	storage querier
}

func NewAccessCheckRepository(storage *pgxpool.Pool) AccessCheckRepositoryInterface {
	return &AccessCheckRepository{storage: storage}
}

func (r *AccessCheckRepository) WithTx(tx pgx.Tx) AccessCheckRepositoryInterface {
	return &AccessCheckRepository{storage: tx}
}

func (r *AccessCheckRepository) Ensure(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		INSERT INTO access_checks (user_id, equipment_id) VALUES ($1, $2)
		ON CONFLICT (user_id, equipment_id) DO NOTHING`, userID, equipmentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanAccessCheck(row pgx.Row) (entities.AccessCheck, error) {
	var c entities.AccessCheck
	err := row.Scan(&c.ID, &c.UserID, &c.EquipmentID, &c.ReadyDate, &c.Approved)
	return c, err
}

func (r *AccessCheckRepository) FindByID(ctx context.Context, id uint64) (*entities.AccessCheck, error) {
	c, err := scanAccessCheck(r.storage.QueryRow(ctx,
		`SELECT id, user_id, equipment_id, ready_date, approved FROM access_checks WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("access check #%d: %w", id, notFound(err))
	}
	return &c, nil
}

func (r *AccessCheckRepository) list(ctx context.Context, query sq.SelectBuilder) ([]entities.AccessCheck, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	checks := make([]entities.AccessCheck, 0)
	for rows.Next() {
		c, err := scanAccessCheck(rows)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

func (r *AccessCheckRepository) List(ctx context.Context, approved *bool) ([]entities.AccessCheck, error) {
	query := psql.Select("id", "user_id", "equipment_id", "ready_date", "approved").
		From("access_checks").OrderBy("ready_date ASC", "id ASC")
	if approved != nil {
		query = query.Where(sq.Eq{"approved": *approved})
	}
	return r.list(ctx, query)
}

func (r *AccessCheckRepository) ListByUser(ctx context.Context, userID uint64) ([]entities.AccessCheck, error) {
	return r.list(ctx, psql.Select("id", "user_id", "equipment_id", "ready_date", "approved").
		From("access_checks").Where(sq.Eq{"user_id": userID}).OrderBy("id"))
}

func (r *AccessCheckRepository) SetApproval(ctx context.Context, id uint64, approved bool) (*entities.AccessCheck, error) {
	c, err := scanAccessCheck(r.storage.QueryRow(ctx, `
		UPDATE access_checks SET approved = $1 WHERE id = $2
		RETURNING id, user_id, equipment_id, ready_date, approved`, approved, id))
	if err != nil {
		return nil, fmt.Errorf("access check #%d: %w", id, notFound(err))
	}
	return &c, nil
}

func (r *AccessCheckRepository) IsApproved(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	var approved bool
	err := r.storage.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM access_checks WHERE user_id = $1 AND equipment_id = $2 AND approved = TRUE)`,
		userID, equipmentID).Scan(&approved)
	return approved, err
}
