package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/api/middleware"
	"github.com/angelmondragon/volunteerlinks-backend/api/responses"
	"github.com/angelmondragon/volunteerlinks-backend/api/validators"
	"github.com/angelmondragon/volunteerlinks-backend/internal/chat"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
)

const maxSenderNameLen = 200

type sendMessageRequest struct {
	Text        string  `json:"text" validate:"required"`
	SenderName  string  `json:"sender_name" validate:"omitempty,max=200"`
	RecipientID *string `json:"recipient_id,omitempty"`
}

// ChatSend posts a message to an activity thread as the caller. A
// recipient_id sends it privately to or from the activity admin.
func ChatSend(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		senderID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activityID, err := validators.ParseUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body sendMessageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var recipientID *uuid.UUID
		if body.RecipientID != nil {
			id, err := validators.ParseUUID(*body.RecipientID, "recipient_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			recipientID = &id
		}

		msg, err := svc.Send(r.Context(), chat.SendInput{
			ActivityID:  activityID,
			SenderID:    senderID,
			RecipientID: recipientID,
			SenderName:  firstNonBlank(validators.SanitizeString(middleware.UserNameFromContext(r.Context()), maxSenderNameLen), body.SenderName),
			Text:        body.Text,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, msg)
	}
}

func ChatList(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activityID, err := validators.ParseUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []chat.MessageDTO{}
		}
		responses.WriteSuccess(w, items)
	}
}

func ChatParticipants(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activityID, err := validators.ParseUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Participants(r.Context(), activityID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []chat.ParticipantDTO{}
		}
		responses.WriteSuccess(w, items)
	}
}

// ChatConversation returns the private messages between a participant and
// the activity admin.
func ChatConversation(svc chat.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		activityID, err := validators.ParseUUID(chi.URLParam(r, "activityId"), "activityId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		participantID, err := validators.ParseUUID(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Conversation(r.Context(), chat.ConversationInput{
			ActivityID:    activityID,
			ParticipantID: participantID,
			CallerID:      caller,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []chat.MessageDTO{}
		}
		responses.WriteSuccess(w, items)
	}
}
