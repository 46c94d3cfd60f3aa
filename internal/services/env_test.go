package services

import (
	"makerspace/internal/entities"

	"go.uber.org/zap"
)

// env wires every service over the same fake store.
type env struct {
	tx           *fakeTx
	users        *fakeUsers
	holds        *fakeHolds
	equipment    *fakeEquipment
	modules      *fakeModules
	submissions  *fakeSubmissions
	reservations *fakeReservations
	auditLogs    *fakeAuditLogs
	checks       *fakeAccessChecks
	cache        *fakeCache

	audit        AuditLogServiceInterface
	eligibility  *EligibilityService
	training     *TrainingService
	reservation  *ReservationService
	hold         *HoldService
	privileges   AuthPrivilegeServiceInterface
	userService  UserServiceInterface
	equipmentSvc EquipmentServiceInterface
	accessChecks AccessCheckServiceInterface
	reader       ReaderServiceInterface
}

const (
	makerID  = 1
	mentorID = 2
	staffID  = 3
)

func newEnv() *env {
	logger := zap.NewNop()
	e := &env{
		tx: &fakeTx{},
		users: newFakeUsers(
			user(makerID, "100000001", entities.PrivilegeMaker),
			user(mentorID, "100000002", entities.PrivilegeMentor),
			user(staffID, "100000003", entities.PrivilegeStaff),
		),
		holds:        &fakeHolds{},
		equipment:    newFakeEquipment(entities.Equipment{ID: 10, Name: "Drill Press"}, entities.Equipment{ID: 11, Name: "Laser Cutter"}),
		modules:      newFakeModules(),
		submissions:  &fakeSubmissions{},
		reservations: newFakeReservations(),
		auditLogs:    &fakeAuditLogs{},
		checks:       &fakeAccessChecks{},
		cache:        newFakeCache(),
	}

	e.audit = NewAuditLogService(e.auditLogs, nil, logger)
	e.eligibility = NewEligibilityService(e.tx, e.users, e.holds, e.equipment, e.submissions, logger).(*EligibilityService)
	e.eligibility.now = clock
	e.training = NewTrainingService(e.tx, e.modules, e.submissions, e.equipment, e.checks, e.users, e.audit, logger).(*TrainingService)
	e.training.now = clock
	e.reservation = NewReservationService(e.tx, e.reservations, e.equipment, e.users, e.eligibility, e.audit, logger).(*ReservationService)
	e.reservation.now = clock
	e.hold = NewHoldService(e.tx, e.holds, e.users, e.audit, logger).(*HoldService)
	e.hold.now = clock
	e.privileges = NewAuthPrivilegeService(e.users, e.cache, logger, 0)
	e.userService = NewUserService(e.tx, e.users, e.privileges, e.audit, logger)
	e.equipmentSvc = NewEquipmentService(e.tx, e.equipment, e.modules, e.users, e.audit, logger)
	e.accessChecks = NewAccessCheckService(e.tx, e.checks, e.users, e.equipment, e.audit, logger)
	e.reader = NewReaderService(e.eligibility, e.equipment, e.audit, logger)
	return e
}

func (e *env) pass(userID, moduleID uint64, expires int) {
	e.submissions.submissions = append(e.submissions.submissions, entities.ModuleSubmission{
		ID:             uint64(len(e.submissions.submissions) + 1),
		UserID:         userID,
		ModuleID:       moduleID,
		Passed:         true,
		Score:          100,
		SubmissionDate: fixedNow.AddDate(0, 0, -1),
		ExpirationDate: fixedNow.AddDate(0, 0, expires),
	})
}

func (e *env) require(equipmentID uint64, moduleIDs ...uint64) {
	e.equipment.modules[equipmentID] = moduleIDs
}

func boolPtr(b bool) *bool { return &b }

func option(id string, correct bool) entities.ModuleOption {
	return entities.ModuleOption{ID: id, Text: "option " + id, Correct: boolPtr(correct)}
}
