package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/volunteerlinks-backend/pkg/db/types"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Role        enums.UserRole `json:"role"`
	Profile     *ProfileDTO    `json:"profile,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ProfileDTO is the volunteer profile captured at signup.
type ProfileDTO struct {
	Interests       []string `json:"interests"`
	Strengths       []string `json:"strengths"`
	PriorExperience *string  `json:"prior_experience,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.UserRole

	Interests       []string
	Strengths       []string
	PriorExperience *string
}

// Identity is the profile the lifecycle manager resolves for a user id.
type Identity struct {
	Name            string
	Email           string
	Role            enums.UserRole
	Interests       []string
	Strengths       []string
	PriorExperience *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	dto := &UserDTO{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.Role == enums.UserRoleVolunteer {
		dto.Profile = &ProfileDTO{
			Interests:       append([]string{}, u.Interests...),
			Strengths:       append([]string{}, u.Strengths...),
			PriorExperience: u.PriorExperience,
		}
	}
	return dto
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:            strings.TrimSpace(c.Name),
		Email:           NormalizeEmail(c.Email),
		PasswordHash:    c.PasswordHash,
		Role:            c.Role,
		Interests:       dbtypes.Normalize(c.Interests),
		Strengths:       dbtypes.Normalize(c.Strengths),
		PriorExperience: TrimmedText(c.PriorExperience),
	}
}

// TrimmedText trims value and maps blank text to nil.
func TrimmedText(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
