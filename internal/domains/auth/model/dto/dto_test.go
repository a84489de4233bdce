package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel/infras/jwt"
	"hotel/internal/domains/auth/model/dto"
	"hotel/shared/constant"
	"hotel/shared/validator"
)

func TestRegisterRequest_ToUserModel(t *testing.T) {
	req := dto.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "secret123"}

	user := req.ToUserModel("hashed")

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "hashed", user.Password)
	assert.Equal(t, constant.RoleUser, user.Role, "role defaults to user")
	assert.True(t, user.IsActive)
	assert.Equal(t, constant.ContextGuest, user.CreatedBy)

	req.Role = constant.RoleAdmin
	assert.Equal(t, constant.RoleAdmin, req.ToUserModel("hashed").Role)
}

func TestRegisterRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.RegisterRequest
		wantErr bool
	}{
		{name: "valid", req: dto.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "secret"}},
		{name: "short name", req: dto.RegisterRequest{Name: "A", Email: "ayu@example.com", Password: "secret"}, wantErr: true},
		{name: "short password", req: dto.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "12345"}, wantErr: true},
		{name: "unknown role", req: dto.RegisterRequest{Name: "Ayu", Email: "ayu@example.com", Password: "secret", Role: "owner"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.req)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestChangePasswordRequest_Validation(t *testing.T) {
	same := dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "secret123"}
	assert.Error(t, validator.ValidateStruct(&same))

	changed := dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "secret456"}
	assert.NoError(t, validator.ValidateStruct(&changed))
}

func TestRefreshTokenResponse_FromTokenPair(t *testing.T) {
	tokenPair := &jwt.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var response dto.RefreshTokenResponse
	response.FromTokenPair(tokenPair)

	assert.Equal(t, tokenPair.AccessToken, response.AccessToken)
	assert.Equal(t, tokenPair.RefreshToken, response.RefreshToken)
	assert.Equal(t, int64(900), response.ExpiresIn)
}
