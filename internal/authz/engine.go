package authz

import (
	"context"

	"makerspace/internal/entities"
	"makerspace/pkg/contextkeys"
	apperrors "makerspace/pkg/errors"
)

// Allowed is the single capability check: the actor's role must be at least the required one.
func Allowed(actor, required entities.Privilege) bool {
	return actor.Valid() && actor.Rank() >= required.Rank()
}

// WithActor stores the authenticated identity in the context.
func WithActor(ctx context.Context, userID uint64, privilege entities.Privilege) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.UserPrivilegeKey, privilege)
}

func UserIDFromContext(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func PrivilegeFromContext(ctx context.Context) (entities.Privilege, bool) {
	privilege, ok := ctx.Value(contextkeys.UserPrivilegeKey).(entities.Privilege)
	return privilege, ok && privilege.Valid()
}

// Require fails with ErrUnauthorized when no identity is present and with
// ErrForbidden when the identity ranks below required.
func Require(ctx context.Context, required entities.Privilege) error {
	privilege, ok := PrivilegeFromContext(ctx)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if !Allowed(privilege, required) {
		return apperrors.ErrForbidden
	}
	return nil
}

// IsSelfOrAllowed lets users act on their own records, and others only with the required role.
func IsSelfOrAllowed(ctx context.Context, targetUserID uint64, required entities.Privilege) error {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return apperrors.ErrUnauthorized
	}
	if userID == targetUserID {
		return nil
	}
	return Require(ctx, required)
}
