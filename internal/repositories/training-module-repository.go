package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"makerspace/internal/entities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TrainingModuleRepositoryInterface interface {
	FindByID(ctx context.Context, id uint64) (*entities.TrainingModule, error)
	List(ctx context.Context) ([]entities.TrainingModule, error)
	ListByIDs(ctx context.Context, ids []uint64) ([]entities.TrainingModule, error)
}

type TrainingModuleRepository struct {
	storage querier
}

func NewTrainingModuleRepository(storage *pgxpool.Pool) TrainingModuleRepositoryInterface {
	return &TrainingModuleRepository{storage: storage}
}

func scanModule(row pgx.Row) (*entities.TrainingModule, error) {
	var (
		m      entities.TrainingModule
		quiz   []byte
		prompt []byte
	)
	if err := row.Scan(&m.ID, &m.Name, &quiz, &prompt, &m.Archived); err != nil {
		return nil, err
	}
	m.ReservationPrompt = prompt
	if len(quiz) > 0 {
		if err := json.Unmarshal(quiz, &m.Quiz); err != nil {
			return nil, fmt.Errorf("decode quiz of module #%d: %w", m.ID, err)
		}
	}
	return &m, nil
}

func (r *TrainingModuleRepository) FindByID(ctx context.Context, id uint64) (*entities.TrainingModule, error) {
	m, err := scanModule(r.storage.QueryRow(ctx,
		`SELECT id, name, quiz, reservation_prompt, archived FROM training_modules WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("module #%d: %w", id, notFound(err))
	}
	return m, nil
}

func (r *TrainingModuleRepository) scanAll(rows pgx.Rows, err error) ([]entities.TrainingModule, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]entities.TrainingModule, 0)
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, *m)
	}
	return modules, rows.Err()
}

func (r *TrainingModuleRepository) List(ctx context.Context) ([]entities.TrainingModule, error) {
	return r.scanAll(r.storage.Query(ctx,
		`SELECT id, name, quiz, reservation_prompt, archived FROM training_modules WHERE archived = FALSE ORDER BY name`))
}

func (r *TrainingModuleRepository) ListByIDs(ctx context.Context, ids []uint64) ([]entities.TrainingModule, error) {
	if len(ids) == 0 {
		return []entities.TrainingModule{}, nil
	}
	return r.scanAll(r.storage.Query(ctx,
		`SELECT id, name, quiz, reservation_prompt, archived FROM training_modules WHERE id = ANY($1) ORDER BY id`, ids))
}
