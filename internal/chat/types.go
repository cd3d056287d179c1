package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/db/models"
)

// SendInput is a message posted to an activity thread. With a recipient it
// goes to the private conversation between a volunteer and the activity
// admin instead.
type SendInput struct {
	ActivityID  uuid.UUID
	SenderID    uuid.UUID
	RecipientID *uuid.UUID
	SenderName  string
	Text        string `validate:"required,max=2000"`
}

// ConversationInput selects the messages between one participant and the
// activity admin. The caller must be one of the two.
type ConversationInput struct {
	ActivityID    uuid.UUID
	ParticipantID uuid.UUID
	CallerID      uuid.UUID
}

// MessageDTO is one thread entry.
type MessageDTO struct {
	ID          string    `json:"id"`
	ActivityID  string    `json:"activity_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID *string   `json:"recipient_id,omitempty"`
	SenderName  string    `json:"sender_name"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// ParticipantDTO identifies someone who posted in a thread.
type ParticipantDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

func newMessageDTO(m models.ChatMessage) MessageDTO {
	var recipient *string
	if m.RecipientID != nil {
		id := m.RecipientID.String()
		recipient = &id
	}
	return MessageDTO{
		ID:          m.ID.String(),
		ActivityID:  m.ActivityID.String(),
		SenderID:    m.SenderID.String(),
		RecipientID: recipient,
		SenderName:  m.SenderName,
		Text:        m.Body,
		CreatedAt:   m.CreatedAt,
	}
}
