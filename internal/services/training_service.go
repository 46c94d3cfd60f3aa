package services

import (
	"context"
	"fmt"
	"time"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/dto"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	"makerspace/pkg/metrics"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TrainingServiceInterface interface {
	// GetModule and ListModules hide the answer key from callers below MENTOR.
	GetModule(ctx context.Context, id uint64) (*entities.TrainingModule, error)
	ListModules(ctx context.Context) ([]entities.TrainingModule, error)
	SubmitModule(ctx context.Context, moduleID uint64, answers []dto.AnswerDTO) (*dto.SubmissionResultDTO, error)
	Submissions(ctx context.Context, userID, moduleID uint64) ([]entities.ModuleSubmission, error)
	AccessProgress(ctx context.Context, userID uint64) ([]dto.EquipmentProgressDTO, error)
}

type TrainingService struct {
	txManager       repositories.TxManagerInterface
	moduleRepo      repositories.TrainingModuleRepositoryInterface
	subRepo         repositories.SubmissionRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	accessCheckRepo repositories.AccessCheckRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	audit           AuditLogServiceInterface
	logger          *zap.Logger
	now             func() time.Time
}

func NewTrainingService(
	txManager repositories.TxManagerInterface,
	moduleRepo repositories.TrainingModuleRepositoryInterface,
	subRepo repositories.SubmissionRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	accessCheckRepo repositories.AccessCheckRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	audit AuditLogServiceInterface,
	logger *zap.Logger,
) TrainingServiceInterface {
	return &TrainingService{
		txManager:       txManager,
		moduleRepo:      moduleRepo,
		subRepo:         subRepo,
		equipmentRepo:   equipmentRepo,
		accessCheckRepo: accessCheckRepo,
		userRepo:        userRepo,
		audit:           audit,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *TrainingService) visible(ctx context.Context, module *entities.TrainingModule) (*entities.TrainingModule, error) {
	privilege, ok := authz.PrivilegeFromContext(ctx)
	if !ok {
		return nil, authz.Require(ctx, authz.ModulesSubmit)
	}
	if authz.Allowed(privilege, authz.ModulesViewAnswers) {
		return module, nil
	}
	return module.WithoutAnswers(), nil
}

func (s *TrainingService) GetModule(ctx context.Context, id uint64) (*entities.TrainingModule, error) {
	module, err := s.moduleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.visible(ctx, module)
}

func (s *TrainingService) ListModules(ctx context.Context) ([]entities.TrainingModule, error) {
	modules, err := s.moduleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]entities.TrainingModule, 0, len(modules))
	for i := range modules {
		m, err := s.visible(ctx, &modules[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, nil
}

func (s *TrainingService) SubmitModule(ctx context.Context, moduleID uint64, answers []dto.AnswerDTO) (*dto.SubmissionResultDTO, error) {
	if err := authz.Require(ctx, authz.ModulesSubmit); err != nil {
		return nil, err
	}
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	grade, err := GradeSubmission(module, answers)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	submission := &entities.ModuleSubmission{
		UserID:         actor.ID,
		ModuleID:       module.ID,
		Passed:         grade.Passed,
		Score:          grade.Score,
		SubmissionDate: now,
		ExpirationDate: now.Add(SubmissionValidity),
	}

	var log *entities.AuditLog
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.subRepo.WithTx(tx).Create(ctx, submission); err != nil {
			return fmt.Errorf("store submission: %w", err)
		}
		template := fmt.Sprintf("{user} submitted attempt of {module} with a grade of %d.", grade.Score)
		log, err = s.audit.WithTx(tx).CreateLog(ctx, template, auditlog.CategoryTraining, userRef(actor), moduleRef(module))
		if err != nil {
			return err
		}
		if grade.Passed {
			return s.ensureAccessChecks(ctx, tx, actor.ID, module.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Announce(ctx, log)

	result := metrics.Failed
	if grade.Passed {
		result = metrics.Passed
	}
	metrics.ModuleSubmissions.WithLabelValues(result).Inc()
	s.logger.Info("module graded",
		zap.Uint64("userID", actor.ID),
		zap.Uint64("moduleID", module.ID),
		zap.Int("score", grade.Score),
		zap.Bool("passed", grade.Passed),
	)

	return &dto.SubmissionResultDTO{
		SubmissionID:   submission.ID,
		ModuleID:       module.ID,
		Score:          grade.Score,
		Passed:         grade.Passed,
		SubmissionDate: submission.SubmissionDate,
		ExpirationDate: submission.ExpirationDate,
	}, nil
}

// ensureAccessChecks opens a pending sign-off for every equipment whose
// training the user has now fully completed.
func (s *TrainingService) ensureAccessChecks(ctx context.Context, tx pgx.Tx, userID, moduleID uint64) error {
	equipment, err := s.equipmentRepo.WithTx(tx).ListRequiringModule(ctx, moduleID)
	if err != nil {
		return err
	}
	if len(equipment) == 0 {
		return nil
	}
	passed, err := s.subRepo.WithTx(tx).FindPassedByUser(ctx, userID)
	if err != nil {
		return err
	}
	now := s.now()
	for _, e := range equipment {
		required, err := s.equipmentRepo.WithTx(tx).RequiredModuleIDs(ctx, e.ID)
		if err != nil {
			return err
		}
		if !Evaluate(false, required, passed, now) {
			continue
		}
		created, err := s.accessCheckRepo.WithTx(tx).Ensure(ctx, userID, e.ID)
		if err != nil {
			return err
		}
		if created {
			s.logger.Info("access check opened", zap.Uint64("userID", userID), zap.Uint64("equipmentID", e.ID))
		}
	}
	return nil
}

func (s *TrainingService) Submissions(ctx context.Context, userID, moduleID uint64) ([]entities.ModuleSubmission, error) {
	if err := authz.IsSelfOrAllowed(ctx, userID, authz.UsersViewOthers); err != nil {
		return nil, err
	}
	if _, err := s.moduleRepo.FindByID(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.subRepo.FindByUserAndModule(ctx, userID, moduleID)
}

func (s *TrainingService) AccessProgress(ctx context.Context, userID uint64) ([]dto.EquipmentProgressDTO, error) {
	if err := authz.IsSelfOrAllowed(ctx, userID, authz.UsersViewOthers); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	passed, err := s.subRepo.FindPassedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	checks, err := s.accessCheckRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	names := make(map[uint64]string, len(modules))
	for _, m := range modules {
		names[m.ID] = m.Name
	}
	// Latest valid expiration per module.
	expiry := make(map[uint64]time.Time)
	for i := range passed {
		if passed[i].Valid(now) && passed[i].ExpirationDate.After(expiry[passed[i].ModuleID]) {
			expiry[passed[i].ModuleID] = passed[i].ExpirationDate
		}
	}
	approved := make(map[uint64]bool, len(checks))
	for _, c := range checks {
		approved[c.EquipmentID] = c.Approved
	}

	progress := make([]dto.EquipmentProgressDTO, 0, len(equipment))
	for _, e := range equipment {
		required, err := s.equipmentRepo.RequiredModuleIDs(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		item := dto.EquipmentProgressDTO{
			EquipmentID:   e.ID,
			EquipmentName: e.Name,
			Modules:       make([]dto.ModuleProgressDTO, 0, len(required)),
			Complete:      true,
			Approved:      approved[e.ID],
		}
		for _, moduleID := range required {
			exp, ok := expiry[moduleID]
			item.Modules = append(item.Modules, dto.ModuleProgressDTO{
				ModuleID:       moduleID,
				Name:           names[moduleID],
				Passed:         ok,
				ExpirationDate: null.NewTime(exp, ok),
			})
			item.Complete = item.Complete && ok
		}
		progress = append(progress, item)
	}
	return progress, nil
}
