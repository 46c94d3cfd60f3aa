package entities

import "time"

type Hold struct {
	ID         uint64     `json:"id" db:"id"`
	UserID     uint64     `json:"userId" db:"user_id"`
	PlacedBy   uint64     `json:"placedBy" db:"placed_by"`
	RemovedBy  *uint64    `json:"removedBy,omitempty" db:"removed_by"`
	Reason     string     `json:"reason" db:"reason"`
	CreateDate time.Time  `json:"createDate" db:"create_date"`
	RemoveDate *time.Time `json:"removeDate,omitempty" db:"remove_date"`
}

// Active reports whether the hold still restricts the user.
func (h *Hold) Active() bool { return h.RemoveDate == nil }
