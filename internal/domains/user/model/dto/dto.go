package dto

import (
	"hotel/internal/domains/user/model"
	gDto "hotel/shared/dto"
	"time"
)

type UserResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Phone     string     `json:"phone,omitempty"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(user model.User) {
	r.ID = user.ID
	r.Name = user.Name
	r.Email = user.Email
	r.Role = user.Role
	r.Phone = user.Phone
	r.IsActive = user.IsActive
	r.LastLogin = user.LastLogin
	r.Metadata.FromModel(user.Metadata)
}

// UpdateProfileRequest is a partial update; empty fields are left unchanged.
type UpdateProfileRequest struct {
	Name  string `db:"name"  json:"name"  validate:"omitempty,min=2,max=100"`
	Email string `db:"email" json:"email" validate:"omitempty,email"`
	Phone string `db:"phone" json:"phone" validate:"omitempty,max=20"`
}
