package entities

import "time"

// AccessCheck records that a user finished the training for a piece of
// equipment and is waiting for (or has received) an in-person sign-off.
type AccessCheck struct {
	ID          uint64    `json:"id" db:"id"`
	UserID      uint64    `json:"userId" db:"user_id"`
	EquipmentID uint64    `json:"equipmentId" db:"equipment_id"`
	ReadyDate   time.Time `json:"readyDate" db:"ready_date"`
	Approved    bool      `json:"approved" db:"approved"`
}
