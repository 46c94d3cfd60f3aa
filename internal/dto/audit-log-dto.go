package dto

import (
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/entities"

	"github.com/aarondl/null/v8"
)

// AuditLogQueryDTO is bound from the query string of the log listing.
type AuditLogQueryDTO struct {
	StartDate     string   `query:"startDate"`
	StopDate      string   `query:"stopDate"`
	SearchText    string   `query:"searchText" validate:"max=200"`
	Categories    []string `query:"category"`
	Uncategorized bool     `query:"uncategorized"`
	Errors        string   `query:"errors" validate:"omitempty,errors_mode"`
}

type AuditLogDTO struct {
	ID       uint64         `json:"id"`
	DateTime time.Time      `json:"date_time"`
	Message  string         `json:"message"`
	Category null.String    `json:"category"`
	IsError  bool           `json:"is_error"`
	Refs     []auditlog.Ref `json:"refs"`
}

func NewAuditLogDTO(l *entities.AuditLog) AuditLogDTO {
	refs := auditlog.ParseRefs(l.Message)
	if refs == nil {
		refs = []auditlog.Ref{}
	}
	return AuditLogDTO{
		ID:       l.ID,
		DateTime: l.DateTime,
		Message:  l.Message,
		Category: null.StringFromPtr(l.Category),
		IsError:  auditlog.IsError(l.Message),
		Refs:     refs,
	}
}
