package repositories

import (
	"context"
	"fmt"
	"time"

	"makerspace/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reservationColumns = "id, creator, maker, labbie, equipment, create_date, start_time, end_time, status, last_updated, archived"

// ReservationFilter narrows reservation listings. Zero values are ignored.
type ReservationFilter struct {
	Status      entities.ReservationStatus
	EquipmentID uint64
	MakerID     uint64
	LabbieID    uint64
	From        *time.Time
	To          *time.Time
	Limit       uint64
	Offset      uint64
}

type ReservationRepositoryInterface interface {
	Create(ctx context.Context, reservation *entities.Reservation) error
	FindByID(ctx context.Context, id uint64) (*entities.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]entities.Reservation, error)
	// CountOverlapping counts live (pending or confirmed) reservations on the
	// equipment whose interval intersects [start, end).
	CountOverlapping(ctx context.Context, equipmentID uint64, start, end time.Time) (int, error)
	// TransitionStatus moves the reservation from one status to another only
	// if it is currently in from, and reports whether it did.
	TransitionStatus(ctx context.Context, id uint64, from, to entities.ReservationStatus, at time.Time) (bool, error)
	AssignLabbie(ctx context.Context, id, labbieID uint64, at time.Time) error
	AddEvent(ctx context.Context, event *entities.ReservationEvent) error
	LatestComment(ctx context.Context, reservationID uint64) (*entities.ReservationEvent, error)
	FindEvents(ctx context.Context, reservationID uint64) ([]entities.ReservationEvent, error)
	WithTx(tx pgx.Tx) ReservationRepositoryInterface
}

type ReservationRepository struct {
	storage querier
}

func NewReservationRepository(storage *pgxpool.Pool) ReservationRepositoryInterface {
	return &ReservationRepository{storage: storage}
}

func (r *ReservationRepository) WithTx(tx pgx.Tx) ReservationRepositoryInterface {
	return &ReservationRepository{storage: tx}
}

func scanReservation(row pgx.Row) (entities.Reservation, error) {
	var res entities.Reservation
	err := row.Scan(&res.ID, &res.CreatorID, &res.MakerID, &res.LabbieID, &res.EquipmentID,
		&res.CreateDate, &res.StartTime, &res.EndTime, &res.Status, &res.LastUpdated, &res.Archived)
	return res, err
}

func (r *ReservationRepository) Create(ctx context.Context, res *entities.Reservation) error {
	return r.storage.QueryRow(ctx, `
		INSERT INTO reservations (creator, maker, labbie, equipment, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, create_date, last_updated`,
		res.CreatorID, res.MakerID, res.LabbieID, res.EquipmentID, res.StartTime, res.EndTime, res.Status,
	).Scan(&res.ID, &res.CreateDate, &res.LastUpdated)
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uint64) (*entities.Reservation, error) {
	res, err := scanReservation(r.storage.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reservation #%d: %w", id, notFound(err))
	}
	return &res, nil
}

// listQuery builds the filtered listing; split out so it can be checked without a database.
func listQuery(filter ReservationFilter) sq.SelectBuilder {
	query := psql.Select(reservationColumns).From("reservations").
		Where(sq.Eq{"archived": false}).
		OrderBy("start_time DESC", "id DESC")

	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": filter.Status})
	}
	if filter.EquipmentID != 0 {
		query = query.Where(sq.Eq{"equipment": filter.EquipmentID})
	}
	if filter.MakerID != 0 {
		query = query.Where(sq.Eq{"maker": filter.MakerID})
	}
	if filter.LabbieID != 0 {
		query = query.Where(sq.Eq{"labbie": filter.LabbieID})
	}
	if filter.From != nil {
		query = query.Where(sq.GtOrEq{"end_time": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(sq.LtOrEq{"start_time": *filter.To})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	return query
}

func (r *ReservationRepository) List(ctx context.Context, filter ReservationFilter) ([]entities.Reservation, error) {
	sql, args, err := listQuery(filter).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func (r *ReservationRepository) CountOverlapping(ctx context.Context, equipmentID uint64, start, end time.Time) (int, error) {
	var n int
	err := r.storage.QueryRow(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE equipment = $1
		  AND archived = FALSE
		  AND status IN ('PENDING', 'CONFIRMED')
		  AND start_time < $3 AND end_time > $2`,
		equipmentID, start, end).Scan(&n)
	return n, err
}

func (r *ReservationRepository) TransitionStatus(ctx context.Context, id uint64, from, to entities.ReservationStatus, at time.Time) (bool, error) {
	tag, err := r.storage.Exec(ctx,
		`UPDATE reservations SET status = $1, last_updated = $2 WHERE id = $3 AND status = $4`,
		to, at, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ReservationRepository) AssignLabbie(ctx context.Context, id, labbieID uint64, at time.Time) error {
	_, err := r.storage.Exec(ctx,
		`UPDATE reservations SET labbie = $1, last_updated = $2 WHERE id = $3`, labbieID, at, id)
	return err
}

func (r *ReservationRepository) AddEvent(ctx context.Context, e *entities.ReservationEvent) error {
	return r.storage.QueryRow(ctx, `
		INSERT INTO reservation_events (reservation_id, event_type, user_id, payload, date_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		e.ReservationID, e.EventType, e.UserID, e.Payload, e.DateTime,
	).Scan(&e.ID)
}

func scanEvent(row pgx.Row) (entities.ReservationEvent, error) {
	var e entities.ReservationEvent
	err := row.Scan(&e.ID, &e.ReservationID, &e.EventType, &e.UserID, &e.Payload, &e.DateTime)
	return e, err
}

// LatestComment is the "most recent wins" read model of a reservation's comments.
func (r *ReservationRepository) LatestComment(ctx context.Context, reservationID uint64) (*entities.ReservationEvent, error) {
	e, err := scanEvent(r.storage.QueryRow(ctx, `
		SELECT id, reservation_id, event_type, user_id, payload, date_time
		FROM reservation_events
		WHERE reservation_id = $1 AND event_type = $2
		ORDER BY date_time DESC, id DESC
		LIMIT 1`, reservationID, entities.EventComment))
	if err != nil {
		return nil, fmt.Errorf("latest comment of reservation #%d: %w", reservationID, notFound(err))
	}
	return &e, nil
}

func (r *ReservationRepository) FindEvents(ctx context.Context, reservationID uint64) ([]entities.ReservationEvent, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, reservation_id, event_type, user_id, payload, date_time
		FROM reservation_events
		WHERE reservation_id = $1
		ORDER BY date_time DESC, id DESC`, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]entities.ReservationEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
