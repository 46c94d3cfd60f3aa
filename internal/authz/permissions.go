// internal/authz/permissions.go
package authz

import "makerspace/internal/entities"

// Minimum privilege for every privileged operation in the system.
const (
	// Equipment
	EquipmentCheckAccess = entities.PrivilegeMentor
	EquipmentArchive     = entities.PrivilegeMentor
	EquipmentViewArchive = entities.PrivilegeMentor
	EquipmentSetModules  = entities.PrivilegeStaff

	// Training
	ModulesViewAnswers = entities.PrivilegeMentor
	ModulesSubmit      = entities.PrivilegeMaker

	// Reservations
	ReservationsCreate  = entities.PrivilegeMaker
	ReservationsComment = entities.PrivilegeMaker
	ReservationsConfirm = entities.PrivilegeMentor
	ReservationsCancel  = entities.PrivilegeMentor
	ReservationsAssign  = entities.PrivilegeMentor

	// Users
	UsersViewOthers   = entities.PrivilegeMentor
	UsersSetPrivilege = entities.PrivilegeStaff
	UsersArchive      = entities.PrivilegeStaff
	HoldsManage       = entities.PrivilegeStaff

	// Access checks
	AccessChecksView    = entities.PrivilegeMentor
	AccessChecksApprove = entities.PrivilegeMentor

	// Audit
	AuditLogsView = entities.PrivilegeStaff

	// Card readers
	ReadersOperate = entities.PrivilegeMentor
)
