package entities

import "time"

// Privilege is the ordered role of a user: MAKER < MENTOR < STAFF.
type Privilege string

const (
	PrivilegeMaker  Privilege = "MAKER"
	PrivilegeMentor Privilege = "MENTOR"
	PrivilegeStaff  Privilege = "STAFF"
)

// Rank returns the position of the privilege in the role order; unknown values rank below MAKER.
func (p Privilege) Rank() int {
	switch p {
	case PrivilegeMaker:
		return 1
	case PrivilegeMentor:
		return 2
	case PrivilegeStaff:
		return 3
	}
	return 0
}

func (p Privilege) Valid() bool { return p.Rank() > 0 }

type User struct {
	ID           uint64    `json:"id" db:"id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	UniversityID string    `json:"-" db:"university_id"`
	Privilege    Privilege `json:"privilege" db:"privilege"`
	Archived     bool      `json:"archived" db:"archived"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FullName is the label used when the user is referenced from an audit log.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
