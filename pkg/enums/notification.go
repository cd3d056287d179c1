package enums

import "fmt"

// NotificationAudience identifies which collection a notification lands in.
type NotificationAudience string

const (
	AudienceVolunteer NotificationAudience = "volunteer"
	AudienceAdmin     NotificationAudience = "admin"
)

// Audiences lists every audience that receives a copy of a transition.
var Audiences = []NotificationAudience{AudienceVolunteer, AudienceAdmin}

func (a NotificationAudience) IsValid() bool {
	return a == AudienceVolunteer || a == AudienceAdmin
}

// ParseNotificationAudience converts raw strings into NotificationAudience.
func ParseNotificationAudience(value string) (NotificationAudience, error) {
	for _, candidate := range Audiences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification audience %q", value)
}
