package entities

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

func (s ReservationStatus) Terminal() bool {
	return s == ReservationConfirmed || s == ReservationCancelled
}

type Reservation struct {
	ID          uint64            `json:"id" db:"id"`
	CreatorID   uint64            `json:"creator" db:"creator"`
	MakerID     uint64            `json:"maker" db:"maker"`
	LabbieID    *uint64           `json:"labbie,omitempty" db:"labbie"`
	EquipmentID uint64            `json:"equipment" db:"equipment"`
	CreateDate  time.Time         `json:"createDate" db:"create_date"`
	StartTime   time.Time         `json:"startTime" db:"start_time"`
	EndTime     time.Time         `json:"endTime" db:"end_time"`
	Status      ReservationStatus `json:"status" db:"status"`
	LastUpdated time.Time         `json:"lastUpdated" db:"last_updated"`
	Archived    bool              `json:"archived" db:"archived"`
}

type ReservationEventType string

const (
	EventComment      ReservationEventType = "COMMENT"
	EventStatusChange ReservationEventType = "STATUS_CHANGE"
	EventAssignment   ReservationEventType = "ASSIGNMENT"
)

type ReservationEvent struct {
	ID            uint64               `json:"id" db:"id"`
	ReservationID uint64               `json:"reservationId" db:"reservation_id"`
	EventType     ReservationEventType `json:"eventType" db:"event_type"`
	UserID        uint64               `json:"user" db:"user_id"`
	Payload       string               `json:"payload" db:"payload"`
	DateTime      time.Time            `json:"dateTime" db:"date_time"`
}
