package entities

import "time"

type ModuleSubmission struct {
	ID             uint64    `json:"id" db:"id"`
	UserID         uint64    `json:"userId" db:"maker_id"`
	ModuleID       uint64    `json:"moduleId" db:"module_id"`
	Passed         bool      `json:"passed" db:"passed"`
	Score          int       `json:"score" db:"score"`
	SubmissionDate time.Time `json:"submissionDate" db:"submission_date"`
	ExpirationDate time.Time `json:"expirationDate" db:"expiration_date"`
}

// Valid reports whether the submission satisfies a training requirement at now.
func (s *ModuleSubmission) Valid(now time.Time) bool {
	return s.Passed && s.ExpirationDate.After(now)
}
