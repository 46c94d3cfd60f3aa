package dto

import (
	"time"

	"makerspace/internal/entities"

	"github.com/aarondl/null/v8"
)

type CreateHoldDTO struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type HoldDTO struct {
	ID         uint64      `json:"id"`
	UserID     uint64      `json:"user_id"`
	PlacedBy   uint64      `json:"placed_by"`
	RemovedBy  null.Uint64 `json:"removed_by"`
	Reason     string      `json:"reason"`
	CreateDate time.Time   `json:"create_date"`
	RemoveDate null.Time   `json:"remove_date"`
	Active     bool        `json:"active"`
}

func NewHoldDTO(h *entities.Hold) HoldDTO {
	return HoldDTO{
		ID:         h.ID,
		UserID:     h.UserID,
		PlacedBy:   h.PlacedBy,
		RemovedBy:  null.Uint64FromPtr(h.RemovedBy),
		Reason:     h.Reason,
		CreateDate: h.CreateDate,
		RemoveDate: null.TimeFromPtr(h.RemoveDate),
		Active:     h.Active(),
	}
}
