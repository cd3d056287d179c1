package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/volunteerlinks-backend/pkg/db/types"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/security"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/types"
)

const (
	// MaxProfileTags caps interests and strengths per volunteer.
	MaxProfileTags = 3
	minPasswordLen = 8
)

// UpdateProfileInput changes the caller's account. Absent fields are kept;
// a null prior_experience clears it. Changing the password requires the
// current one.
type UpdateProfileInput struct {
	Name            *string              `json:"name,omitempty" validate:"omitempty,max=200"`
	Interests       *[]string            `json:"interests,omitempty" validate:"omitempty,max=3,dive,max=100"`
	Strengths       *[]string            `json:"strengths,omitempty" validate:"omitempty,max=3,dive,max=100"`
	PriorExperience types.NullableString `json:"prior_experience"`
	CurrentPassword string               `json:"current_password,omitempty"`
	NewPassword     *string              `json:"new_password,omitempty" validate:"omitempty,min=8"`
}

type profileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, changes map[string]any) error
}

// Profiles is the account surface served to the signed-in user.
type Profiles interface {
	Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
}

// ProfileService reads and edits the signed-in user's account.
type ProfileService struct {
	repo      profileStore
	passwords config.PasswordConfig
}

func NewProfileService(repo profileStore, passwords config.PasswordConfig) (*ProfileService, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &ProfileService{repo: repo, passwords: passwords}, nil
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	changes, err := s.changes(user, input)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no profile changes supplied")
	}
	if err := s.repo.UpdateProfile(ctx, userID, changes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Get(ctx, userID)
}

func (s *ProfileService) changes(user *models.User, input UpdateProfileInput) (map[string]any, error) {
	changes := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		changes["name"] = name
	}

	touchesProfile := input.Interests != nil || input.Strengths != nil || input.PriorExperience.Valid
	if touchesProfile && user.Role != enums.UserRoleVolunteer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only volunteer accounts carry a profile")
	}
	if input.Interests != nil {
		tags, err := profileTags("interests", *input.Interests)
		if err != nil {
			return nil, err
		}
		changes["interests"] = tags
	}
	if input.Strengths != nil {
		tags, err := profileTags("strengths", *input.Strengths)
		if err != nil {
			return nil, err
		}
		changes["strengths"] = tags
	}
	if input.PriorExperience.Valid {
		changes["prior_experience"] = input.PriorExperience.Trimmed()
	}

	if input.NewPassword != nil {
		hash, err := s.rehash(user, input.CurrentPassword, *input.NewPassword)
		if err != nil {
			return nil, err
		}
		changes["password_hash"] = hash
	}
	return changes, nil
}

func (s *ProfileService) rehash(user *models.User, current, next string) (string, error) {
	if len(next) < minPasswordLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "new password must be at least 8 characters")
	}
	if current == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "current password required to change password")
	}
	valid, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}
	hash, err := security.HashPassword(next, s.passwords)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

func (s *ProfileService) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidID, "user id required")
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func profileTags(field string, items []string) (dbtypes.StringList, error) {
	tags := dbtypes.Normalize(items)
	if len(tags) > MaxProfileTags {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many "+field).
			WithDetails(map[string]any{"field": field, "max": MaxProfileTags})
	}
	return tags, nil
}
