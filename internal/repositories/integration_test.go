package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	"makerspace/migrations"
	"makerspace/seeders"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// PostgresSuite runs the repositories against a real database named by
// TEST_DATABASE_URL. The database is truncated and reseeded before each test.
type PostgresSuite struct {
	suite.Suite
	ctx  context.Context
	pool *pgxpool.Pool

	users     repositories.UserRepositoryInterface
	equipment repositories.EquipmentRepositoryInterface
	holds     repositories.HoldRepositoryInterface
	subs      repositories.SubmissionRepositoryInterface
	resv      repositories.ReservationRepositoryInterface
	checks    repositories.AccessCheckRepositoryInterface
	logs      repositories.AuditLogRepositoryInterface
	tx        repositories.TxManagerInterface
}

func TestPostgresSuite(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, &PostgresSuite{})
}

func (s *PostgresSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	s.ctx = context.Background()
	s.Require().NoError(migrations.Up(dsn))

	pool, err := pgxpool.New(s.ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool

	s.users = repositories.NewUserRepository(pool, zap.NewNop())
	s.equipment = repositories.NewEquipmentRepository(pool)
	s.holds = repositories.NewHoldRepository(pool)
	s.subs = repositories.NewSubmissionRepository(pool)
	s.resv = repositories.NewReservationRepository(pool)
	s.checks = repositories.NewAccessCheckRepository(pool)
	s.logs = repositories.NewAuditLogRepository(pool)
	s.tx = repositories.NewTxManager(pool)
}

func (s *PostgresSuite) TearDownSuite() {
	s.pool.Close()
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE audit_logs, access_checks, reservation_events, reservations,
		module_submissions, modules_for_equipment, training_modules, equipment, holds, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
	s.Require().NoError(seeders.SeedCore(s.ctx, s.pool))
}

func (s *PostgresSuite) user(username string) *entities.User {
	u, err := s.users.FindByUsername(s.ctx, username)
	s.Require().NoError(err)
	return u
}

func (s *PostgresSuite) equipmentNamed(name string) entities.Equipment {
	list, err := s.equipment.List(s.ctx, false)
	s.Require().NoError(err)
	for _, e := range list {
		if e.Name == name {
			return e
		}
	}
	s.FailNow("equipment not seeded", name)
	return entities.Equipment{}
}

func (s *PostgresSuite) TestUniversityIDIsStoredHashed() {
	maker := s.user("maker")
	s.NotEqual("900000003", maker.UniversityID)

	found, err := s.users.FindByUniversityID(s.ctx, "900000003")
	s.Require().NoError(err)
	s.Equal(maker.ID, found.ID)
}

func (s *PostgresSuite) TestRequiredModulesAndHolds() {
	laser := s.equipmentNamed("Laser Cutter")
	required, err := s.equipment.RequiredModuleIDs(s.ctx, laser.ID)
	s.Require().NoError(err)
	s.Len(required, 2)

	maker, staff := s.user("maker"), s.user("staff")
	active, err := s.holds.HasActiveHolds(s.ctx, maker.ID)
	s.Require().NoError(err)
	s.False(active)

	hold := &entities.Hold{UserID: maker.ID, PlacedBy: staff.ID, Reason: "unpaid fees"}
	s.Require().NoError(s.holds.Create(s.ctx, hold))
	active, err = s.holds.HasActiveHolds(s.ctx, maker.ID)
	s.Require().NoError(err)
	s.True(active)

	removed, err := s.holds.Remove(s.ctx, hold.ID, staff.ID, time.Now())
	s.Require().NoError(err)
	s.True(removed)
	removed, err = s.holds.Remove(s.ctx, hold.ID, staff.ID, time.Now())
	s.Require().NoError(err)
	s.False(removed, "a hold is removed once")
}

func (s *PostgresSuite) TestReservationOverlapAndTransition() {
	maker := s.user("maker")
	drill := s.equipmentNamed("Drill Press")
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	r := &entities.Reservation{
		CreatorID: maker.ID, MakerID: maker.ID, EquipmentID: drill.ID,
		StartTime: start, EndTime: start.Add(time.Hour), Status: entities.ReservationPending,
	}
	s.Require().NoError(s.resv.Create(s.ctx, r))

	n, err := s.resv.CountOverlapping(s.ctx, drill.ID, start.Add(30*time.Minute), start.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Equal(1, n)
	n, err = s.resv.CountOverlapping(s.ctx, drill.ID, start.Add(time.Hour), start.Add(2*time.Hour))
	s.Require().NoError(err)
	s.Zero(n, "touching intervals do not overlap")

	ok, err := s.resv.TransitionStatus(s.ctx, r.ID, entities.ReservationPending, entities.ReservationCancelled, time.Now())
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.resv.TransitionStatus(s.ctx, r.ID, entities.ReservationPending, entities.ReservationConfirmed, time.Now())
	s.Require().NoError(err)
	s.False(ok)

	n, err = s.resv.CountOverlapping(s.ctx, drill.ID, start, start.Add(time.Hour))
	s.Require().NoError(err)
	s.Zero(n, "cancelled reservations free the slot")
}

func (s *PostgresSuite) TestEquipmentRowLockInsideTransaction() {
	drill := s.equipmentNamed("Drill Press")
	err := s.tx.RunInTransaction(s.ctx, func(tx pgx.Tx) error {
		locked, err := s.equipment.WithTx(tx).FindByIDForUpdate(s.ctx, drill.ID)
		if err != nil {
			return err
		}
		s.Equal(drill.Name, locked.Name)
		return nil
	})
	s.Require().NoError(err)
}

func (s *PostgresSuite) TestClaimForBookingConflictsAcrossSnapshots() {
	drill := s.equipmentNamed("Drill Press")
	rr := pgx.TxOptions{IsoLevel: pgx.RepeatableRead}

	late, err := s.pool.BeginTx(s.ctx, rr)
	s.Require().NoError(err)
	defer func() { _ = late.Rollback(s.ctx) }()
	_, err = late.Exec(s.ctx, `SELECT 1`)
	s.Require().NoError(err)

	early, err := s.pool.BeginTx(s.ctx, rr)
	s.Require().NoError(err)
	claimed, err := s.equipment.WithTx(early).ClaimForBooking(s.ctx, drill.ID)
	s.Require().NoError(err)
	s.Equal(drill.Name, claimed.Name)
	s.Require().NoError(early.Commit(s.ctx))

	_, err = s.equipment.WithTx(late).ClaimForBooking(s.ctx, drill.ID)
	var pgErr *pgconn.PgError
	s.Require().ErrorAs(err, &pgErr)
	s.Equal("40001", pgErr.Code)
}

func (s *PostgresSuite) TestRepeatableReadRetriesLostBookingRace() {
	drill := s.equipmentNamed("Drill Press")
	attempts := 0
	err := s.tx.RunInRepeatableRead(s.ctx, func(tx pgx.Tx) error {
		attempts++
		if _, err := tx.Exec(s.ctx, `SELECT 1`); err != nil {
			return err
		}
		if attempts == 1 {
			_, err := s.equipment.ClaimForBooking(s.ctx, drill.ID)
			s.Require().NoError(err)
		}
		_, err := s.equipment.WithTx(tx).ClaimForBooking(s.ctx, drill.ID)
		return err
	})
	s.Require().NoError(err)
	s.Equal(2, attempts)
}

func (s *PostgresSuite) TestAccessCheckEnsureIsIdempotent() {
	maker := s.user("maker")
	drill := s.equipmentNamed("Drill Press")

	created, err := s.checks.Ensure(s.ctx, maker.ID, drill.ID)
	s.Require().NoError(err)
	s.True(created)
	created, err = s.checks.Ensure(s.ctx, maker.ID, drill.ID)
	s.Require().NoError(err)
	s.False(created)

	approved, err := s.checks.IsApproved(s.ctx, maker.ID, drill.ID)
	s.Require().NoError(err)
	s.False(approved)
}

func (s *PostgresSuite) TestAuditLogFilters() {
	training, admin := auditlog.CategoryTraining, auditlog.CategoryAdmin
	_, err := s.logs.Create(s.ctx, "<user:1:Casey Maker> passed 100% of the quiz", &training)
	s.Require().NoError(err)
	_, err = s.logs.Create(s.ctx, "<error:0:unknown card> Unrecognized card swiped", &admin)
	s.Require().NoError(err)
	_, err = s.logs.Create(s.ctx, "server started", nil)
	s.Require().NoError(err)

	window := auditlog.Query{Start: time.Now().Add(-time.Hour), Stop: time.Now().Add(time.Hour)}

	all, err := s.logs.Find(s.ctx, window)
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal("server started", all[0].Message, "newest first")

	q := window
	q.SearchText = "100%"
	found, err := s.logs.Find(s.ctx, q)
	s.Require().NoError(err)
	s.Len(found, 1, "wildcards in search text are literal")

	q = window
	q.Filters = auditlog.Filters{Categories: []string{admin}, Uncategorized: true}
	found, err = s.logs.Find(s.ctx, q)
	s.Require().NoError(err)
	s.Len(found, 2, "admin rows plus rows without a category")

	q = window
	q.Filters = auditlog.Filters{Errors: auditlog.ErrorsOnly}
	found, err = s.logs.Find(s.ctx, q)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Contains(found[0].Message, "<error:")

	q = window
	q.Filters = auditlog.Filters{Categories: []string{training}, Errors: auditlog.NoErrors}
	found, err = s.logs.Find(s.ctx, q)
	s.Require().NoError(err)
	s.Len(found, 1)
}
