package activities

import (
	"strings"
	"time"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/types"
)

// ActivityDTO is the catalog entry returned to clients.
type ActivityDTO struct {
	ID          string    `json:"id"`
	AdminID     string    `json:"admin_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        string    `json:"date"`
	Description string    `json:"description"`
	ImageRef    *string   `json:"image_ref,omitempty"`
	Genre       *string   `json:"genre,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateActivityInput holds the fields an admin supplies for a new activity.
type CreateActivityInput struct {
	Name        string  `json:"name" validate:"required"`
	Location    string  `json:"location" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Description string  `json:"description" validate:"required"`
	ImageRef    *string `json:"image_ref,omitempty"`
	Genre       *string `json:"genre,omitempty"`
}

// UpdateActivityInput patches an activity; absent fields are left unchanged
// and explicit nulls clear the optional ones.
type UpdateActivityInput struct {
	Name        *string              `json:"name,omitempty"`
	Location    *string              `json:"location,omitempty"`
	Date        *string              `json:"date,omitempty"`
	Description *string              `json:"description,omitempty"`
	ImageRef    types.NullableString `json:"image_ref"`
	Genre       types.NullableString `json:"genre"`
}

// NewActivityDTO maps a stored activity.
func NewActivityDTO(a *models.Activity) *ActivityDTO {
	if a == nil {
		return nil
	}
	return &ActivityDTO{
		ID:          a.ID.String(),
		AdminID:     a.AdminID.String(),
		Name:        a.Name,
		Location:    a.Location,
		Date:        a.Date,
		Description: a.Description,
		ImageRef:    a.ImageRef,
		Genre:       a.Genre,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
