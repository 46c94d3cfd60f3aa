package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	apperrors "makerspace/pkg/errors"

	"github.com/jackc/pgx/v5"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func as(userID uint64, privilege entities.Privilege) context.Context {
	return authz.WithActor(context.Background(), userID, privilege)
}

// fakeTx runs callbacks inline; every fake repository ignores the tx.
type fakeTx struct {
	mu              sync.Mutex
	transactions    int
	snapshots       int
	repeatableReads int
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.mu.Lock()
	f.transactions++
	f.mu.Unlock()
	return fn(nil)
}

func (f *fakeTx) RunInSnapshot(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.mu.Lock()
	f.snapshots++
	f.mu.Unlock()
	return fn(nil)
}

func (f *fakeTx) RunInRepeatableRead(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.mu.Lock()
	f.repeatableReads++
	f.mu.Unlock()
	return fn(nil)
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uint64]*entities.User
}

func newFakeUsers(users ...entities.User) *fakeUsers {
	f := &fakeUsers{users: map[uint64]*entities.User{}}
	for i := range users {
		u := users[i]
		f.users[u.ID] = &u
	}
	return f
}

// user builds a user whose university ID is stored hashed, as in the database.
func user(id uint64, uid string, privilege entities.Privilege) entities.User {
	return entities.User{
		ID:           id,
		FirstName:    "User",
		LastName:     uid,
		Username:     "user" + uid,
		UniversityID: repositories.HashUniversityID(uid),
		Privilege:    privilege,
	}
}

func (f *fakeUsers) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUsers) FindByUniversityID(ctx context.Context, universityID string) (*entities.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hashed := repositories.HashUniversityID(universityID)
	for _, u := range f.users {
		if u.UniversityID == hashed {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUsers) UpdatePrivilege(ctx context.Context, id uint64, privilege entities.Privilege) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Privilege = privilege
	return nil
}

func (f *fakeUsers) SetArchived(ctx context.Context, id uint64, archived bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Archived = archived
	return nil
}

func (f *fakeUsers) WithTx(tx pgx.Tx) repositories.UserRepositoryInterface { return f }

type fakeHolds struct {
	mu    sync.Mutex
	holds []entities.Hold
}

func (f *fakeHolds) HasActiveHolds(ctx context.Context, userID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.holds {
		if h.UserID == userID && h.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHolds) FindByID(ctx context.Context, id uint64) (*entities.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, h := range f.holds {
		if h.ID == id {
			copied := h
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeHolds) FindByUser(ctx context.Context, userID uint64) ([]entities.Hold, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.Hold
	for _, h := range f.holds {
		if h.UserID == userID {
			result = append(result, h)
		}
	}
	return result, nil
}

func (f *fakeHolds) Create(ctx context.Context, hold *entities.Hold) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	hold.ID = uint64(len(f.holds) + 1)
	hold.CreateDate = fixedNow
	f.holds = append(f.holds, *hold)
	return nil
}

func (f *fakeHolds) Remove(ctx context.Context, id, removedBy uint64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.holds {
		if f.holds[i].ID == id && f.holds[i].Active() {
			f.holds[i].RemovedBy = &removedBy
			f.holds[i].RemoveDate = &at
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeHolds) WithTx(tx pgx.Tx) repositories.HoldRepositoryInterface { return f }

type fakeEquipment struct {
	mu        sync.Mutex
	equipment map[uint64]*entities.Equipment
	modules   map[uint64][]uint64
	claims    int
}

func newFakeEquipment(items ...entities.Equipment) *fakeEquipment {
	f := &fakeEquipment{equipment: map[uint64]*entities.Equipment{}, modules: map[uint64][]uint64{}}
	for i := range items {
		e := items[i]
		f.equipment[e.ID] = &e
	}
	return f
}

func (f *fakeEquipment) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.equipment[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeEquipment) FindByIDForUpdate(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeEquipment) ClaimForBooking(ctx context.Context, id uint64) (*entities.Equipment, error) {
	f.mu.Lock()
	f.claims++
	f.mu.Unlock()
	return f.FindByID(ctx, id)
}

func (f *fakeEquipment) List(ctx context.Context, archived bool) ([]entities.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.Equipment
	for _, e := range f.equipment {
		if e.Archived == archived {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeEquipment) ListRequiringModule(ctx context.Context, moduleID uint64) ([]entities.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.Equipment
	for id, modules := range f.modules {
		for _, m := range modules {
			if m == moduleID && !f.equipment[id].Archived {
				result = append(result, *f.equipment[id])
				break
			}
		}
	}
	return result, nil
}

func (f *fakeEquipment) RequiredModuleIDs(ctx context.Context, equipmentID uint64) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uint64]bool{}
	ids := []uint64{}
	for _, m := range f.modules[equipmentID] {
		if !seen[m] {
			seen[m] = true
			ids = append(ids, m)
		}
	}
	return ids, nil
}

func (f *fakeEquipment) SetArchived(ctx context.Context, id uint64, archived bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.equipment[id].Archived = archived
	return nil
}

func (f *fakeEquipment) ReplaceModules(ctx context.Context, id uint64, moduleIDs []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules[id] = append([]uint64(nil), moduleIDs...)
	return nil
}

func (f *fakeEquipment) WithTx(tx pgx.Tx) repositories.EquipmentRepositoryInterface { return f }

type fakeModules struct {
	modules map[uint64]*entities.TrainingModule
}

func newFakeModules(modules ...entities.TrainingModule) *fakeModules {
	f := &fakeModules{modules: map[uint64]*entities.TrainingModule{}}
	for i := range modules {
		m := modules[i]
		f.modules[m.ID] = &m
	}
	return f
}

func (f *fakeModules) FindByID(ctx context.Context, id uint64) (*entities.TrainingModule, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeModules) List(ctx context.Context) ([]entities.TrainingModule, error) {
	var result []entities.TrainingModule
	for _, m := range f.modules {
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeModules) ListByIDs(ctx context.Context, ids []uint64) ([]entities.TrainingModule, error) {
	var result []entities.TrainingModule
	for _, id := range ids {
		if m, ok := f.modules[id]; ok {
			result = append(result, *m)
		}
	}
	return result, nil
}

type fakeSubmissions struct {
	mu          sync.Mutex
	submissions []entities.ModuleSubmission
}

func (f *fakeSubmissions) Create(ctx context.Context, s *entities.ModuleSubmission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uint64(len(f.submissions) + 1)
	f.submissions = append(f.submissions, *s)
	return nil
}

func (f *fakeSubmissions) FindPassedByUser(ctx context.Context, userID uint64) ([]entities.ModuleSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.ModuleSubmission
	for _, s := range f.submissions {
		if s.UserID == userID && s.Passed {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeSubmissions) FindByUserAndModule(ctx context.Context, userID, moduleID uint64) ([]entities.ModuleSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.ModuleSubmission
	for i := len(f.submissions) - 1; i >= 0; i-- {
		s := f.submissions[i]
		if s.UserID == userID && s.ModuleID == moduleID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeSubmissions) WithTx(tx pgx.Tx) repositories.SubmissionRepositoryInterface { return f }

type fakeReservations struct {
	mu           sync.Mutex
	reservations map[uint64]*entities.Reservation
	events       []entities.ReservationEvent
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{reservations: map[uint64]*entities.Reservation{}}
}

func (f *fakeReservations) Create(ctx context.Context, r *entities.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = uint64(len(f.reservations) + 1)
	r.CreateDate = fixedNow
	r.LastUpdated = fixedNow
	copied := *r
	f.reservations[r.ID] = &copied
	return nil
}

func (f *fakeReservations) FindByID(ctx context.Context, id uint64) (*entities.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReservations) List(ctx context.Context, filter repositories.ReservationFilter) ([]entities.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.Reservation
	for _, r := range f.reservations {
		if filter.MakerID != 0 && r.MakerID != filter.MakerID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeReservations) CountOverlapping(ctx context.Context, equipmentID uint64, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reservations {
		if r.EquipmentID == equipmentID && r.Status != entities.ReservationCancelled &&
			r.StartTime.Before(end) && r.EndTime.After(start) {
			n++
		}
	}
	return n, nil
}

func (f *fakeReservations) TransitionStatus(ctx context.Context, id uint64, from, to entities.ReservationStatus, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.LastUpdated = at
	return true, nil
}

func (f *fakeReservations) AssignLabbie(ctx context.Context, id, labbieID uint64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.reservations[id]
	r.LabbieID = &labbieID
	r.LastUpdated = at
	return nil
}

func (f *fakeReservations) AddEvent(ctx context.Context, e *entities.ReservationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uint64(len(f.events) + 1)
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeReservations) LatestComment(ctx context.Context, reservationID uint64) (*entities.ReservationEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *entities.ReservationEvent
	for i := range f.events {
		e := f.events[i]
		if e.ReservationID != reservationID || e.EventType != entities.EventComment {
			continue
		}
		if latest == nil || !e.DateTime.Before(latest.DateTime) {
			latest = &e
		}
	}
	if latest == nil {
		return nil, apperrors.ErrNotFound
	}
	return latest, nil
}

func (f *fakeReservations) FindEvents(ctx context.Context, reservationID uint64) ([]entities.ReservationEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.ReservationEvent
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].ReservationID == reservationID {
			result = append(result, f.events[i])
		}
	}
	return result, nil
}

func (f *fakeReservations) WithTx(tx pgx.Tx) repositories.ReservationRepositoryInterface { return f }

type fakeAuditLogs struct {
	mu   sync.Mutex
	logs []entities.AuditLog
	// queries records what reached the store.
	queries []auditlog.Query
}

func (f *fakeAuditLogs) Create(ctx context.Context, message string, category *string) (*entities.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	log := entities.AuditLog{ID: uint64(len(f.logs) + 1), DateTime: fixedNow, Message: message, Category: category}
	f.logs = append(f.logs, log)
	return &log, nil
}

func (f *fakeAuditLogs) Find(ctx context.Context, q auditlog.Query) ([]entities.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	result := make([]entities.AuditLog, 0, len(f.logs))
	for i := len(f.logs) - 1; i >= 0; i-- {
		result = append(result, f.logs[i])
	}
	return result, nil
}

func (f *fakeAuditLogs) WithTx(tx pgx.Tx) repositories.AuditLogRepositoryInterface { return f }

func (f *fakeAuditLogs) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		result = append(result, l.Message)
	}
	return result
}

type fakeAccessChecks struct {
	mu     sync.Mutex
	checks []entities.AccessCheck
}

func (f *fakeAccessChecks) Ensure(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.checks {
		if c.UserID == userID && c.EquipmentID == equipmentID {
			return false, nil
		}
	}
	f.checks = append(f.checks, entities.AccessCheck{
		ID: uint64(len(f.checks) + 1), UserID: userID, EquipmentID: equipmentID, ReadyDate: fixedNow,
	})
	return true, nil
}

func (f *fakeAccessChecks) FindByID(ctx context.Context, id uint64) (*entities.AccessCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.checks {
		if c.ID == id {
			copied := c
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeAccessChecks) List(ctx context.Context, approved *bool) ([]entities.AccessCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.AccessCheck
	for _, c := range f.checks {
		if approved == nil || c.Approved == *approved {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeAccessChecks) ListByUser(ctx context.Context, userID uint64) ([]entities.AccessCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []entities.AccessCheck
	for _, c := range f.checks {
		if c.UserID == userID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (f *fakeAccessChecks) SetApproval(ctx context.Context, id uint64, approved bool) (*entities.AccessCheck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.checks {
		if f.checks[i].ID == id {
			f.checks[i].Approved = approved
			copied := f.checks[i]
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeAccessChecks) IsApproved(ctx context.Context, userID, equipmentID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.checks {
		if c.UserID == userID && c.EquipmentID == equipmentID {
			return c.Approved, nil
		}
	}
	return false, nil
}

func (f *fakeAccessChecks) WithTx(tx pgx.Tx) repositories.AccessCheckRepositoryInterface { return f }

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	gets   int
}

func newFakeCache() *fakeCache { return &fakeCache{values: map[string]string{}} }

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.values[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}
