package users

import "time"

// User is the stored representation of an account that can authenticate
// and appear on attendance reports.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Department   string     `json:"department,omitempty"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type CreateUserRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=128"`
	Role       string `json:"role" validate:"required,oneof=admin manager employee"`
	Department string `json:"department" validate:"omitempty,max=100"`
}

type UpdateUserRequest struct {
	Name       string `json:"name" validate:"omitempty,min=2,max=100"`
	Role       string `json:"role" validate:"omitempty,oneof=admin manager employee"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Active     *bool  `json:"active" validate:"omitempty"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	Department string     `json:"department,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type ListUsersQuery struct {
	Role   string `form:"role" validate:"omitempty,oneof=admin manager employee"`
	Active *bool  `form:"active"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

func toResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Department: u.Department,
		Active:     u.Active,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
