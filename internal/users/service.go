package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Directory resolves user ids into display identities.
type Directory struct {
	repo userFinder
}

// NewDirectory builds an identity directory over the users repository.
func NewDirectory(repo userFinder) (*Directory, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &Directory{repo: repo}, nil
}

// Resolve returns the name, email, role and volunteer profile stored for userID.
func (d *Directory) Resolve(ctx context.Context, userID uuid.UUID) (Identity, error) {
	if userID == uuid.Nil {
		return Identity{}, pkgerrors.New(pkgerrors.CodeInvalidID, "user id required")
	}
	user, err := d.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Identity{}, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return Identity{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return Identity{
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		Interests:       append([]string{}, user.Interests...),
		Strengths:       append([]string{}, user.Strengths...),
		PriorExperience: user.PriorExperience,
	}, nil
}
