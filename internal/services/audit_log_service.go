package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/dto"
	"makerspace/internal/entities"
	"makerspace/internal/events"
	"makerspace/internal/repositories"
	"makerspace/pkg/eventbus"
	"makerspace/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Publisher is the part of the event bus the audit service needs.
type Publisher interface {
	Publish(ctx context.Context, event eventbus.Event) string
}

type AuditLogServiceInterface interface {
	// CreateLog renders template with one entity per placeholder and stores it.
	// An empty category is stored as no category.
	CreateLog(ctx context.Context, template, category string, refs ...auditlog.Entity) (*entities.AuditLog, error)
	GetLogs(ctx context.Context, query auditlog.Query) ([]dto.AuditLogDTO, error)
	ExportXLSX(ctx context.Context, query auditlog.Query) (*bytes.Buffer, error)
	// Announce publishes a log written inside a transaction once it has committed.
	Announce(ctx context.Context, log *entities.AuditLog)
	WithTx(tx pgx.Tx) AuditLogServiceInterface
}

type AuditLogService struct {
	repo      repositories.AuditLogRepositoryInterface
	publisher Publisher
	logger    *zap.Logger
	inTx      bool
}

func NewAuditLogService(repo repositories.AuditLogRepositoryInterface, publisher Publisher, logger *zap.Logger) AuditLogServiceInterface {
	return &AuditLogService{repo: repo, publisher: publisher, logger: logger}
}

func (s *AuditLogService) WithTx(tx pgx.Tx) AuditLogServiceInterface {
	return &AuditLogService{repo: s.repo.WithTx(tx), publisher: s.publisher, logger: s.logger, inTx: true}
}

func (s *AuditLogService) CreateLog(ctx context.Context, template, category string, refs ...auditlog.Entity) (*entities.AuditLog, error) {
	message, err := auditlog.Render(template, refs...)
	if err != nil {
		return nil, err
	}

	var cat *string
	if category != "" {
		cat = &category
	}
	log, err := s.repo.Create(ctx, message, cat)
	if err != nil {
		s.logger.Error("failed to write audit log", zap.String("message", message), zap.Error(err))
		return nil, fmt.Errorf("write audit log: %w", err)
	}

	if !s.inTx {
		s.Announce(ctx, log)
	}
	return log, nil
}

func (s *AuditLogService) Announce(ctx context.Context, log *entities.AuditLog) {
	if log == nil {
		return
	}
	category := "none"
	if log.Category != nil {
		category = *log.Category
	}
	metrics.AuditLogWrites.WithLabelValues(category).Inc()
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.AuditLogCreatedEvent{Log: *log})
	}
}

func (s *AuditLogService) find(ctx context.Context, query auditlog.Query) ([]entities.AuditLog, error) {
	if err := authz.Require(ctx, authz.AuditLogsView); err != nil {
		return nil, err
	}
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}
	if query.Empty() {
		return []entities.AuditLog{}, nil
	}
	return s.repo.Find(ctx, query)
}

func (s *AuditLogService) GetLogs(ctx context.Context, query auditlog.Query) ([]dto.AuditLogDTO, error) {
	logs, err := s.find(ctx, query)
	if err != nil {
		return nil, err
	}
	result := make([]dto.AuditLogDTO, 0, len(logs))
	for i := range logs {
		result = append(result, dto.NewAuditLogDTO(&logs[i]))
	}
	return result, nil
}

var auditExportHeaders = []interface{}{"ID", "Date (UTC)", "Category", "Error", "Message"}

func (s *AuditLogService) ExportXLSX(ctx context.Context, query auditlog.Query) (*bytes.Buffer, error) {
	logs, err := s.find(ctx, query)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Audit log"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &auditExportHeaders); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "E1", style)
	}

	for i, l := range logs {
		category := ""
		if l.Category != nil {
			category = *l.Category
		}
		errorFlag := ""
		if auditlog.IsError(l.Message) {
			errorFlag = "yes"
		}
		row := []interface{}{l.ID, l.DateTime.UTC().Format(time.DateTime), category, errorFlag, l.Message}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 20)
	_ = f.SetColWidth(sheet, "E", "E", 100)

	return f.WriteToBuffer()
}
