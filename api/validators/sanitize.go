package validators

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/volunteerlinks-backend/pkg/errors"
)

// SanitizeString trims input and caps it at maxLen runes. maxLen <= 0 disables the cap.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	return strings.TrimSpace(string([]rune(trimmed)[:maxLen]))
}

// ParseUUID parses a path or body identifier. Malformed and nil values are
// reported as INVALID_ID naming field.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInvalidID, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return id, nil
}

// ParseOptionalUUID returns nil when raw is blank.
func ParseOptionalUUID(raw, field string) (*uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := ParseUUID(raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
