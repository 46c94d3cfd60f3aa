package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// AnswerDTO is one entry of an answer sheet: the options chosen for a quiz item.
type AnswerDTO struct {
	ItemID    string   `json:"item_id" validate:"required"`
	OptionIDs []string `json:"option_ids"`
}

type SubmitModuleDTO struct {
	Answers []AnswerDTO `json:"answers" validate:"dive"`
}

type SubmissionResultDTO struct {
	SubmissionID   uint64    `json:"submission_id"`
	ModuleID       uint64    `json:"module_id"`
	Score          int       `json:"score"`
	Passed         bool      `json:"passed"`
	SubmissionDate time.Time `json:"submission_date"`
	ExpirationDate time.Time `json:"expiration_date"`
}

type ModuleProgressDTO struct {
	ModuleID       uint64    `json:"module_id"`
	Name           string    `json:"name"`
	Passed         bool      `json:"passed"`
	ExpirationDate null.Time `json:"expiration_date"`
}

// EquipmentProgressDTO summarizes how far a user is from operating one piece of equipment.
type EquipmentProgressDTO struct {
	EquipmentID   uint64              `json:"equipment_id"`
	EquipmentName string              `json:"equipment_name"`
	Modules       []ModuleProgressDTO `json:"modules"`
	Complete      bool                `json:"complete"`
	Approved      bool                `json:"approved"`
}
