package services

import (
	"context"
	"fmt"

	"makerspace/internal/auditlog"
	"makerspace/internal/authz"
	"makerspace/internal/entities"
	"makerspace/internal/repositories"
	apperrors "makerspace/pkg/errors"
)

// loadActor resolves the authenticated caller to a user record.
func loadActor(ctx context.Context, users repositories.UserRepositoryInterface) (*entities.User, error) {
	userID, err := authz.UserIDFromContext(ctx)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	actor, err := users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("actor: %w", err)
	}
	return actor, nil
}

func userRef(u *entities.User) auditlog.Entity {
	return auditlog.Entity{ID: u.ID, Label: u.FullName()}
}

func equipmentRef(e *entities.Equipment) auditlog.Entity {
	return auditlog.Entity{ID: e.ID, Label: e.Name}
}

func moduleRef(m *entities.TrainingModule) auditlog.Entity {
	return auditlog.Entity{ID: m.ID, Label: m.Name}
}

func reservationRef(r *entities.Reservation) auditlog.Entity {
	return auditlog.Entity{ID: r.ID, Label: fmt.Sprintf("Reservation #%d", r.ID)}
}
