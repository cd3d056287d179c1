package auth

import (
	"github.com/angelmondragon/volunteerlinks-backend/internal/users"
)

// SignupRequest captures the payload used to create an account. The profile
// fields are kept for volunteers and ignored for admins.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=volunteer admin"`

	Interests       []string `json:"interests,omitempty" validate:"omitempty,max=3,dive,max=100"`
	Strengths       []string `json:"strengths,omitempty" validate:"omitempty,max=3,dive,max=100"`
	PriorExperience *string  `json:"prior_experience,omitempty" validate:"omitempty,max=2000"`
}

// SigninRequest captures the credentials and the role the user signs in as.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=volunteer admin"`
}

// SigninResponse contains the access token and profile produced by a successful sign-in.
type SigninResponse struct {
	AccessToken string         `json:"access_token"`
	Role        string         `json:"role"`
	User        *users.UserDTO `json:"user"`
}
