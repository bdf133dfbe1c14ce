package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenia/internal/interfaces"
	"greenia/internal/models"
	"greenia/internal/repository"
)

func newUserManagement(t *testing.T, activeUsers int) (*UserManagementService, *fakeUsers, *recordingMailer) {
	t.Helper()
	admins := newFakeAdmins(&models.Administrator{ID: "a1", Email: "ana@example.com", LicenseCount: 10, Active: true})
	users := newFakeUsers()
	for i := 0; i < activeUsers; i++ {
		id := fmt.Sprintf("u%d", i)
		users.byID[id] = &models.User{ID: id, AdminID: "a1", Email: id + "@example.com", Active: true}
	}
	mailer := &recordingMailer{}
	return NewUserManagementService(users, admins, mailer), users, mailer
}

func validCreateUserRequest() models.CreateUserRequest {
	return models.CreateUserRequest{
		Name:        "Luis Perez",
		Email:       "Luis@Example.com",
		TaxID:       "12.345.678-5",
		PhoneNumber: "912345678",
		Password:    "abc12345",
	}
}

func TestCreateUser(t *testing.T) {
	svc, users, mailer := newUserManagement(t, 0)

	u, err := svc.CreateUser(context.Background(), "a1", validCreateUserRequest())
	require.NoError(t, err)

	assert.Equal(t, "luis@example.com", u.Email)
	assert.Equal(t, "a1", u.AdminID)
	assert.True(t, u.Active)
	assert.Equal(t, 1, users.creates)
	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].Body, "abc12345")
}

func TestCreateUserRejectsEleventhActiveUser(t *testing.T) {
	svc, users, mailer := newUserManagement(t, 10)

	_, err := svc.CreateUser(context.Background(), "a1", validCreateUserRequest())

	var limitErr *interfaces.LicenseLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, 10, limitErr.LicenseCount)
	assert.Equal(t, 10, limitErr.ActiveUsers)
	assert.Zero(t, users.creates)
	assert.Empty(t, mailer.sent)
}

func TestCreateUserChecksLicenseBeforeValidation(t *testing.T) {
	svc, _, _ := newUserManagement(t, 10)
	req := validCreateUserRequest()
	req.Password = "short"

	_, err := svc.CreateUser(context.Background(), "a1", req)

	var limitErr *interfaces.LicenseLimitError
	assert.True(t, errors.As(err, &limitErr))
}

func TestCreateUserRejectsAdminEmail(t *testing.T) {
	svc, users, _ := newUserManagement(t, 0)
	req := validCreateUserRequest()
	req.Email = "ANA@example.com"

	_, err := svc.CreateUser(context.Background(), "a1", req)
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Zero(t, users.creates)
}

func TestLicenseUsage(t *testing.T) {
	svc, users, _ := newUserManagement(t, 3)
	users.byID["off"] = &models.User{ID: "off", AdminID: "a1", Active: false}

	usage, err := svc.LicenseUsage(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.LicenseUsage{LicenseCount: 10, ActiveUsers: 3, Available: 7}, *usage)
}

func TestSetUserStatusReactivationNeedsLicense(t *testing.T) {
	svc, users, _ := newUserManagement(t, 10)
	users.byID["off"] = &models.User{ID: "off", AdminID: "a1", Email: "off@example.com", Active: false}

	_, err := svc.SetUserStatus(context.Background(), "a1", "off", true)
	var limitErr *interfaces.LicenseLimitError
	require.True(t, errors.As(err, &limitErr))
	assert.False(t, users.byID["off"].Active)

	// deactivating never needs a license
	u, err := svc.SetUserStatus(context.Background(), "a1", "u0", false)
	require.NoError(t, err)
	assert.False(t, u.Active)

	u, err = svc.SetUserStatus(context.Background(), "a1", "off", true)
	require.NoError(t, err)
	assert.True(t, u.Active)
}

func TestUpdateUserScopedToAdmin(t *testing.T) {
	svc, users, _ := newUserManagement(t, 1)
	users.byID["other"] = &models.User{ID: "other", AdminID: "a2", Active: true}
	name := "Otro Nombre"

	_, err := svc.UpdateUser(context.Background(), "a1", "other", models.UpdateUserRequest{Name: &name})
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	u, err := svc.UpdateUser(context.Background(), "a1", "u0", models.UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Otro Nombre", u.Name)
}
