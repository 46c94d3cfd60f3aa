package services

import (
	"context"
	"errors"
	"testing"

	"makerspace/internal/entities"
	apperrors "makerspace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivilegeCache(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	p, err := e.privileges.GetPrivilege(ctx, makerID)
	require.NoError(t, err)
	assert.Equal(t, entities.PrivilegeMaker, p)
	assert.Equal(t, "MAKER", e.cache.values[privilegeCacheKey(makerID)])

	e.users.users[makerID].Privilege = entities.PrivilegeStaff
	p, err = e.privileges.GetPrivilege(ctx, makerID)
	require.NoError(t, err)
	assert.Equal(t, entities.PrivilegeMaker, p, "served from cache")

	require.NoError(t, e.privileges.InvalidatePrivilegeCache(ctx, makerID))
	p, err = e.privileges.GetPrivilege(ctx, makerID)
	require.NoError(t, err)
	assert.Equal(t, entities.PrivilegeStaff, p)
}

func TestSetPrivilege(t *testing.T) {
	e := newEnv()
	staff := as(staffID, entities.PrivilegeStaff)
	ctx := context.Background()

	_, err := e.privileges.GetPrivilege(ctx, makerID)
	require.NoError(t, err)

	_, err = e.userService.SetPrivilege(as(mentorID, entities.PrivilegeMentor), makerID, entities.PrivilegeMentor)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = e.userService.SetPrivilege(staff, staffID, entities.PrivilegeMaker)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden), "no self demotion")

	_, err = e.userService.SetPrivilege(staff, makerID, entities.Privilege("ADMIN"))
	var invalid *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalid))

	updated, err := e.userService.SetPrivilege(staff, makerID, entities.PrivilegeMentor)
	require.NoError(t, err)
	assert.Equal(t, entities.PrivilegeMentor, updated.Privilege)
	assert.NotContains(t, e.cache.values, privilegeCacheKey(makerID), "cache invalidated")
	assert.Contains(t, e.auditLogs.messages(), "<user:3:User 100000003> changed <user:1:User 100000001>'s privilege to MENTOR.")
}

func TestArchivedUsersLoseEveryCapability(t *testing.T) {
	e := newEnv()
	_, err := e.userService.SetArchived(as(staffID, entities.PrivilegeStaff), mentorID, true)
	require.NoError(t, err)

	p, err := e.privileges.GetPrivilege(context.Background(), mentorID)
	require.NoError(t, err)
	assert.False(t, p.Valid())
}

func TestGetUser(t *testing.T) {
	e := newEnv()
	u, err := e.userService.GetUser(as(makerID, entities.PrivilegeMaker), makerID)
	require.NoError(t, err)
	assert.Equal(t, "user100000001", u.Username)

	_, err = e.userService.GetUser(as(makerID, entities.PrivilegeMaker), staffID)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}
