package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/volunteerlinks-backend/api/responses"
	"github.com/angelmondragon/volunteerlinks-backend/api/validators"
	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/pagination"
)

// NotificationsList pages through the caller's notifications for one audience.
func NotificationsList(svc notifications.Service, audience enums.NotificationAudience, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		recipientID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), notifications.ListParams{
			Audience:    audience,
			RecipientID: recipientID,
			Limit:       limit,
			Cursor:      strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
