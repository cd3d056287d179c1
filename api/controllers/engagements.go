package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/api/middleware"
	"github.com/angelmondragon/volunteerlinks-backend/api/responses"
	"github.com/angelmondragon/volunteerlinks-backend/api/validators"
	"github.com/angelmondragon/volunteerlinks-backend/internal/engagements"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
)

type joinRequest struct {
	ActivityID      string   `json:"activity_id" validate:"required"`
	Name            string   `json:"name" validate:"omitempty,max=200"`
	Email           string   `json:"email" validate:"omitempty,email"`
	Interests       []string `json:"interests" validate:"omitempty,max=50,dive,max=100"`
	Strengths       []string `json:"strengths" validate:"omitempty,max=50,dive,max=100"`
	PriorExperience *string  `json:"prior_experience" validate:"omitempty,max=4000"`
	Genre           *string  `json:"genre" validate:"omitempty,max=100"`
}

type decisionRequest struct {
	EngagementID string `json:"engagement_id" validate:"required"`
	Decision     string `json:"decision" validate:"required"`
}

type completionRequest struct {
	CompletedID string `json:"completed_id" validate:"required"`
}

type joinStatusResponse struct {
	Joined bool `json:"joined"`
}

// EngagementJoin records a volunteer's pending join request.
func EngagementJoin(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "engagement service unavailable"))
			return
		}
		volunteerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body joinRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activityID, err := validators.ParseUUID(body.ActivityID, "activity_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithActivityID(r.Context(), activityID.String())
		result, err := svc.RequestJoin(ctx, engagements.JoinInput{
			VolunteerID:     volunteerID,
			ActivityID:      activityID,
			VolunteerName:   firstNonBlank(body.Name, middleware.UserNameFromContext(r.Context())),
			VolunteerEmail:  body.Email,
			Interests:       body.Interests,
			Strengths:       body.Strengths,
			PriorExperience: body.PriorExperience,
			Genre:           body.Genre,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// EngagementJoinStatus reports whether the caller already has a live engagement for ?activityId=.
func EngagementJoinStatus(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		volunteerID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activityID, err := validators.QueryUUID(r, "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		joined, err := svc.CheckJoinStatus(r.Context(), volunteerID, activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, joinStatusResponse{Joined: joined})
	}
}

func EngagementPending(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return listForCaller(logg, svc.PendingFor)
}

func EngagementCompleted(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return listForCaller(logg, svc.CompletedFor)
}

func EngagementArchived(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return listForCaller(logg, svc.ArchivedFor)
}

func AdminAccepted(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return listForCaller(logg, svc.AcceptedFor)
}

// AdminApplicants lists pending requests against the caller's activities, optionally one activity.
func AdminApplicants(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activityID, err := validators.OptionalQueryUUID(r, "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.InboundApplicantsFor(r.Context(), adminID, activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// EngagementDecide accepts or rejects a pending engagement.
func EngagementDecide(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body decisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engagementID, err := validators.ParseUUID(body.EngagementID, "engagement_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		decision, err := enums.ParseEngagementDecision(body.Decision)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decision must be accept or reject"))
			return
		}

		ctx := logg.WithEngagementID(r.Context(), engagementID.String())
		result, err := svc.Decide(ctx, engagements.DecisionInput{
			ActorID:      adminID,
			EngagementID: engagementID,
			Decision:     decision,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// EngagementComplete archives an accepted engagement.
func EngagementComplete(svc engagements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body completionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		completedID, err := validators.ParseUUID(body.CompletedID, "completed_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithEngagementID(r.Context(), completedID.String())
		result, err := svc.Complete(ctx, engagements.CompletionInput{ActorID: adminID, CompletedID: completedID})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func listForCaller[T any](logg *logger.Logger, list func(ctx context.Context, id uuid.UUID) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := list(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		responses.WriteSuccess(w, items)
	}
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
