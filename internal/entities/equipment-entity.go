package entities

type Equipment struct {
	ID       uint64  `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	RoomID   *uint64 `json:"roomId,omitempty" db:"room_id"`
	Archived bool    `json:"archived" db:"archived"`
}
