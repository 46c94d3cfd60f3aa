package entities

import "time"

type AuditLog struct {
	ID       uint64    `json:"id" db:"id"`
	DateTime time.Time `json:"dateTime" db:"date_time"`
	Message  string    `json:"message" db:"message"`
	Category *string   `json:"category,omitempty" db:"category"`
}
