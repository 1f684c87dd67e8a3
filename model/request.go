// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new account.
// "password" is a custom rule registered in common: at least one upper,
// lower, digit and symbol.
type RegisterRequest struct {
	Name     string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is accepted on POST /api/auth/refresh-token and
// /api/auth/logout by clients that cannot use the cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateUserRoleRequest defines the payload for updating a user's role.
type UpdateUserRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin user"`
}
