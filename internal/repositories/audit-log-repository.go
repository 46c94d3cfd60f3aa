package repositories

import (
	"context"
	"strings"

	"makerspace/internal/auditlog"
	"makerspace/internal/entities"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, message string, category *string) (*entities.AuditLog, error)
	Find(ctx context.Context, query auditlog.Query) ([]entities.AuditLog, error)
	WithTx(tx pgx.Tx) AuditLogRepositoryInterface
}

type AuditLogRepository struct {
	storage querier
}

func NewAuditLogRepository(storage *pgxpool.Pool) AuditLogRepositoryInterface {
	return &AuditLogRepository{storage: storage}
}

func (r *AuditLogRepository) WithTx(tx pgx.Tx) AuditLogRepositoryInterface {
	return &AuditLogRepository{storage: tx}
}

func (r *AuditLogRepository) Create(ctx context.Context, message string, category *string) (*entities.AuditLog, error) {
	log := entities.AuditLog{Message: message, Category: category}
	err := r.storage.QueryRow(ctx,
		`INSERT INTO audit_logs (message, category) VALUES ($1, $2) RETURNING id, date_time`,
		message, category,
	).Scan(&log.ID, &log.DateTime)
	if err != nil {
		return nil, err
	}
	return &log, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// logQuery translates the filter into SQL. The error classification is a
// substring match on the rendered message, not a column.
func logQuery(q auditlog.Query) sq.SelectBuilder {
	query := psql.Select("id", "date_time", "message", "category").
		From("audit_logs").
		Where(sq.Expr("date_time BETWEEN ? AND ?", q.Start.UTC(), q.Stop.UTC())).
		OrderBy("date_time DESC", "id DESC").
		Limit(auditlog.PageSize)

	if q.SearchText != "" {
		query = query.Where(sq.Expr(`message ILIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(q.SearchText)+"%"))
	}

	if len(q.Filters.Categories) > 0 {
		inSet := sq.Eq{"category": q.Filters.Categories}
		if q.Filters.Uncategorized {
			query = query.Where(sq.Or{inSet, sq.Eq{"category": nil}})
		} else {
			query = query.Where(inSet)
		}
	}

	errorPattern := "%" + auditlog.ErrorMarker + "%"
	switch q.Filters.Errors {
	case auditlog.ErrorsOnly:
		query = query.Where(sq.Expr("message ILIKE ?", errorPattern))
	case auditlog.NoErrors:
		query = query.Where(sq.Expr("message NOT ILIKE ?", errorPattern))
	}

	return query
}

func (r *AuditLogRepository) Find(ctx context.Context, q auditlog.Query) ([]entities.AuditLog, error) {
	sql, args, err := logQuery(q).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]entities.AuditLog, 0)
	for rows.Next() {
		var l entities.AuditLog
		if err := rows.Scan(&l.ID, &l.DateTime, &l.Message, &l.Category); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
