package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/fefu-courses/internal/models"
	"github.com/noah-isme/fefu-courses/internal/repository"
	appErrors "github.com/noah-isme/fefu-courses/pkg/errors"
)

func newAuthService(repo *fakeUserRepo) *AuthService {
	return NewAuthService(repo, nil, nil, nil, AuthConfig{
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		Issuer:        "fefu-courses",
		BcryptCost:    bcrypt.MinCost,
	})
}

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		Username:        "  student1 ",
		Email:           " Student1@Example.COM ",
		Password:        "secret-pass",
		PasswordConfirm: "secret-pass",
	}
}

func TestAuthServiceRegister(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newAuthService(repo)

	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "student1", user.Username)
	assert.Equal(t, "student1@example.com", user.Email)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret-pass")))
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthService(&fakeUserRepo{})

	cases := map[string]struct {
		mutate func(*models.RegisterRequest)
		field  string
		msg    string
	}{
		"short username":   {func(r *models.RegisterRequest) { r.Username = " ab " }, "username", "Логин должен содержать минимум 3 символа"},
		"bad email":        {func(r *models.RegisterRequest) { r.Email = "nope" }, "email", "Введите правильный адрес электронной почты"},
		"short password":   {func(r *models.RegisterRequest) { r.Password, r.PasswordConfirm = "abc", "abc" }, "password", "Пароль должен содержать минимум 8 символов"},
		"numeric password": {func(r *models.RegisterRequest) { r.Password, r.PasswordConfirm = "12345678", "12345678" }, "password", "Пароль не должен состоять только из цифр"},
		"mismatch":         {func(r *models.RegisterRequest) { r.PasswordConfirm = "different-pass" }, "password_confirm", "Пароли не совпадают"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRegistration()
			tc.mutate(&req)
			_, err := svc.Register(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
			assert.Equal(t, tc.msg, appErrors.FieldErrors(err)[tc.field])
		})
	}
}

func TestAuthServiceRegisterConflicts(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]models.UserProfile{
		"u-1": {ID: "u-1", Username: "student1", Email: "student1@example.com"},
	}}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	fields := appErrors.FieldErrors(err)
	assert.Equal(t, "Пользователь с таким логином уже существует", fields["username"])
	assert.Equal(t, "Пользователь с таким email уже существует", fields["email"])
}

func TestAuthServiceRegisterRacingUniqueViolation(t *testing.T) {
	repo := &fakeUserRepo{createErr: &pq.Error{Code: "23505", Constraint: repository.ConstraintUserEmail}}
	svc := newAuthService(repo)

	_, err := svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.Equal(t, map[string]string{"email": "Пользователь с таким email уже существует"}, appErrors.FieldErrors(err))
}

func TestAuthServiceLoginAndValidateSession(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newAuthService(repo)
	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, repo.lastLoginSeen)
	require.NotNil(t, session.User.LastLogin)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	claims, err := svc.ValidateSession(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "student1", claims.Username)

	current, err := svc.CurrentUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, err = svc.ValidateSession(session.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	other := NewAuthService(repo, nil, nil, nil, AuthConfig{SessionSecret: "other-secret"})
	_, err = other.ValidateSession(session.Token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newAuthService(repo)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "bad-password"})
	_, unknownUser := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "secret-pass"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.ErrorIs(t, wrongPassword, appErrors.ErrInvalidCredentials)
	assert.Equal(t, appErrors.FromError(wrongPassword).Message, appErrors.FromError(unknownUser).Message)
	assert.Equal(t, appErrors.FromError(wrongPassword).Status, appErrors.FromError(unknownUser).Status)
}

func TestAuthServiceLoginTolerantOfLastLoginFailure(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newAuthService(repo)
	_, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	repo.lastLoginErr = errors.New("db down")

	session, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Nil(t, session.User.LastLogin)
}

func TestAuthServiceExpiredSession(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := newAuthService(repo)
	user, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	token, _, err := svc.generateSessionToken(user, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = svc.ValidateSession(token)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
}
