package repositories

import (
	"context"
	"fmt"

	"makerspace/internal/entities"
	apperrors "makerspace/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EquipmentRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.Equipment, error)
	// FindByIDForUpdate locks the equipment row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uint64) (*entities.Equipment, error)
	// ClaimForBooking writes the equipment row so that a concurrent repeatable
	// read booking of the same machine fails to serialize instead of missing
	// this one's reservation.
	ClaimForBooking(ctx context.Context, id uint64) (*entities.Equipment, error)
	List(ctx context.Context, archived bool) ([]entities.Equipment, error)
	ListRequiringModule(ctx context.Context, moduleID uint64) ([]entities.Equipment, error)
	RequiredModuleIDs(ctx context.Context, equipmentID uint64) ([]uint64, error)
	SetArchived(ctx context.Context, id uint64, archived bool) error
	ReplaceModules(ctx context.Context, id uint64, moduleIDs []uint64) error
	WithTx(tx pgx.Tx) EquipmentRepositoryInterface
}

type EquipmentRepository struct {
	storage querier
}

func NewEquipmentRepository(storage *pgxpool.Pool) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage}
}

func (r *EquipmentRepository) WithTx(tx pgx.Tx) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: tx}
}

func (r *EquipmentRepository) findOne(ctx context.Context, query string, id uint64) (*entities.Equipment, error) {
	var e entities.Equipment
	if err := r.storage.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.RoomID, &e.Archived); err != nil {
		return nil, fmt.Errorf("equipment #%d: %w", id, notFound(err))
	}
	return &e, nil
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, `SELECT id, name, room_id, archived FROM equipment WHERE id = $1`, id)
}

func (r *EquipmentRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, `SELECT id, name, room_id, archived FROM equipment WHERE id = $1 FOR UPDATE`, id)
}

func (r *EquipmentRepository) ClaimForBooking(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, `UPDATE equipment SET last_booked_at = now() WHERE id = $1 RETURNING id, name, room_id, archived`, id)
}

func (r *EquipmentRepository) scanList(rows pgx.Rows, err error) ([]entities.Equipment, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		var e entities.Equipment
		if err := rows.Scan(&e.ID, &e.Name, &e.RoomID, &e.Archived); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EquipmentRepository) List(ctx context.Context, archived bool) ([]entities.Equipment, error) {
	return r.scanList(r.storage.Query(ctx,
		`SELECT id, name, room_id, archived FROM equipment WHERE archived = $1 ORDER BY name`, archived))
}

func (r *EquipmentRepository) ListRequiringModule(ctx context.Context, moduleID uint64) ([]entities.Equipment, error) {
	return r.scanList(r.storage.Query(ctx, `
		SELECT e.id, e.name, e.room_id, e.archived
		FROM equipment e
		JOIN modules_for_equipment mfe ON mfe.equipment_id = e.id
		WHERE mfe.module_id = $1 AND e.archived = FALSE
		ORDER BY e.id`, moduleID))
}

// RequiredModuleIDs returns the distinct training modules linked to the equipment.
func (r *EquipmentRepository) RequiredModuleIDs(ctx context.Context, equipmentID uint64) ([]uint64, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT DISTINCT mfe.module_id
		FROM modules_for_equipment mfe
		JOIN training_modules tm ON tm.id = mfe.module_id
		WHERE mfe.equipment_id = $1 AND tm.archived = FALSE
		ORDER BY mfe.module_id`, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *EquipmentRepository) SetArchived(ctx context.Context, id uint64, archived bool) error {
	tag, err := r.storage.Exec(ctx, `UPDATE equipment SET archived = $1 WHERE id = $2`, archived, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("equipment #%d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *EquipmentRepository) ReplaceModules(ctx context.Context, id uint64, moduleIDs []uint64) error {
	if _, err := r.storage.Exec(ctx, `DELETE FROM modules_for_equipment WHERE equipment_id = $1`, id); err != nil {
		return err
	}
	if len(moduleIDs) == 0 {
		return nil
	}

	insert := psql.Insert("modules_for_equipment").Columns("equipment_id", "module_id")
	for _, moduleID := range moduleIDs {
		insert = insert.Values(id, moduleID)
	}
	sql, args, err := insert.Suffix("ON CONFLICT DO NOTHING").ToSql()
	if err != nil {
		return err
	}
	_, err = r.storage.Exec(ctx, sql, args...)
	return err
}
