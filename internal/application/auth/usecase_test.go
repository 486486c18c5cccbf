package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/gst-shop-api/internal/application/auth"
	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/infrastructure/memory"
	"github.com/jhoicas/gst-shop-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth() *auth.AuthUseCase {
	uc := auth.NewAuthUseCase(memory.NewStore().Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"})
	uc.SetHashCost(bcrypt.MinCost)
	return uc
}

func TestRegisterAndLogin(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: " Admin@Shop.in ", Password: "supersecret", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.in", u.Email)
	assert.Equal(t, "admin@shop.in", u.Name)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	res, err := uc.Login(ctx, dto.LoginRequest{Email: "ADMIN@shop.in", Password: "supersecret"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleAdmin, role)

	me, err := uc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
}

func TestRegister_DefaultsAndErrors(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "op@shop.in", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperator, u.Role)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "OP@shop.in", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "x@shop.in", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "y@shop.in", Password: "12345678", Role: "ROOT"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_Failures(t *testing.T) {
	uc := newAuth()
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "a@shop.in", Password: "12345678"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "a@shop.in", Password: "wrongpass"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nobody@shop.in", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Me(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
