package dto

import (
	"time"

	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// LoginRequest entrada para login: username o email + password.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// NewUserResponse mapea la entidad.
func NewUserResponse(u *entity.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName,
		Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
	}
}
