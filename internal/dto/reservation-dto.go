package dto

import (
	"time"

	"makerspace/internal/entities"

	"github.com/aarondl/null/v8"
)

type CreateReservationDTO struct {
	// MakerID defaults to the caller when zero.
	MakerID     uint64      `json:"maker_id" validate:"omitempty,gt=0"`
	EquipmentID uint64      `json:"equipment_id" validate:"required,gt=0"`
	StartTime   time.Time   `json:"start_time" validate:"required"`
	EndTime     time.Time   `json:"end_time" validate:"required,gtfield=StartTime"`
	Comment     null.String `json:"comment"`
}

type AddCommentDTO struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type AssignLabbieDTO struct {
	LabbieID uint64 `json:"labbie_id" validate:"required,gt=0"`
}

type ReservationDTO struct {
	ID            uint64                     `json:"id"`
	CreatorID     uint64                     `json:"creator_id"`
	MakerID       uint64                     `json:"maker_id"`
	LabbieID      null.Uint64                `json:"labbie_id"`
	EquipmentID   uint64                     `json:"equipment_id"`
	CreateDate    time.Time                  `json:"create_date"`
	StartTime     time.Time                  `json:"start_time"`
	EndTime       time.Time                  `json:"end_time"`
	Status        entities.ReservationStatus `json:"status"`
	LastUpdated   time.Time                  `json:"last_updated"`
	LatestComment null.String                `json:"latest_comment"`
}

type ReservationEventDTO struct {
	ID        uint64                        `json:"id"`
	EventType entities.ReservationEventType `json:"event_type"`
	UserID    uint64                        `json:"user_id"`
	Payload   string                        `json:"payload"`
	DateTime  time.Time                     `json:"date_time"`
}

func NewReservationDTO(r *entities.Reservation, latestComment *string) ReservationDTO {
	return ReservationDTO{
		ID:            r.ID,
		CreatorID:     r.CreatorID,
		MakerID:       r.MakerID,
		LabbieID:      null.Uint64FromPtr(r.LabbieID),
		EquipmentID:   r.EquipmentID,
		CreateDate:    r.CreateDate,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Status:        r.Status,
		LastUpdated:   r.LastUpdated,
		LatestComment: null.StringFromPtr(latestComment),
	}
}

func NewReservationEventDTO(e *entities.ReservationEvent) ReservationEventDTO {
	return ReservationEventDTO{
		ID:        e.ID,
		EventType: e.EventType,
		UserID:    e.UserID,
		Payload:   e.Payload,
		DateTime:  e.DateTime,
	}
}
