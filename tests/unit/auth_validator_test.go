package unit

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Validator_Register(t *testing.T) {
	users := new(AuthUserRepoMock)
	v := validator.NewAuthValidator(users)
	ctx := context.Background()

	users.On("FindByEmail", ctx, "ok@example.com").Return(nil, repo.ErrNotFound)
	assert.NoError(t, v.ValidateRegister(ctx, "ok@example.com", "password123"))

	//形式不正
	assert.ErrorIs(t, v.ValidateRegister(ctx, "not-an-email", "password123"), validator.ErrInvalidInput)

	//短すぎ
	assert.ErrorIs(t, v.ValidateRegister(ctx, "ok@example.com", "short"), validator.ErrInvalidInput)

	//空
	assert.ErrorIs(t, v.ValidateRegister(ctx, "", ""), validator.ErrInvalidInput)

	//重複
	users.On("FindByEmail", ctx, "dup@example.com").Return(&model.User{ID: 1}, nil)
	assert.ErrorIs(t, v.ValidateRegister(ctx, "dup@example.com", "password123"), validator.ErrEmailAlreadyUsed)
}

func Test_Validator_Login(t *testing.T) {
	users := new(AuthUserRepoMock)
	v := validator.NewAuthValidator(users)
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "ok@example.com", "whatever"))
	assert.ErrorIs(t, v.ValidateLogin(ctx, "", "x"), validator.ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "bad-email", "x"), validator.ErrInvalidInput)
}

func Test_Validator_Refresh(t *testing.T) {
	users := new(AuthUserRepoMock)
	v := validator.NewAuthValidator(users)
	ctx := context.Background()

	assert.NoError(t, v.ValidateRefresh(ctx, "some-token", "agent"))
	assert.ErrorIs(t, v.ValidateRefresh(ctx, "   ", "agent"), validator.ErrInvalidRefresh)
}
