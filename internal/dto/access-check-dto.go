package dto

type SetApprovalDTO struct {
	Approved *bool `json:"approved" validate:"required"`
}
