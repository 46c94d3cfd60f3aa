package dto

import (
	"makerspace/internal/entities"

	"github.com/aarondl/null/v8"
)

type EquipmentDTO struct {
	ID        uint64      `json:"id"`
	Name      string      `json:"name"`
	RoomID    null.Uint64 `json:"room_id"`
	Archived  bool        `json:"archived"`
	ModuleIDs []uint64    `json:"module_ids"`
}

type SetEquipmentModulesDTO struct {
	ModuleIDs []uint64 `json:"module_ids" validate:"dive,gt=0"`
}

type AccessDecisionDTO struct {
	EquipmentID uint64 `json:"equipment_id"`
	HasAccess   bool   `json:"has_access"`
}

func NewEquipmentDTO(e *entities.Equipment, moduleIDs []uint64) EquipmentDTO {
	if moduleIDs == nil {
		moduleIDs = []uint64{}
	}
	return EquipmentDTO{
		ID:        e.ID,
		Name:      e.Name,
		RoomID:    null.Uint64FromPtr(e.RoomID),
		Archived:  e.Archived,
		ModuleIDs: moduleIDs,
	}
}
