package dto

import (
	"time"

	"makerspace/internal/entities"

	"github.com/aarondl/null/v8"
)

type SetPrivilegeDTO struct {
	Privilege string `json:"privilege" validate:"required,privilege"`
}

type UserDTO struct {
	ID        uint64             `json:"id"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Email     string             `json:"email"`
	Username  string             `json:"username"`
	Privilege entities.Privilege `json:"privilege"`
	Archived  bool               `json:"archived"`
	Notes     null.String        `json:"notes"`
	CreatedAt time.Time          `json:"created_at"`
}

func NewUserDTO(u *entities.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Username:  u.Username,
		Privilege: u.Privilege,
		Archived:  u.Archived,
		Notes:     null.StringFromPtr(u.Notes),
		CreatedAt: u.CreatedAt,
	}
}
