// Package instance names the running worker process in logs.
package instance

import (
	"os"

	"github.com/angelmondragon/volunteerlinks-backend/pkg/env"
)

const EnvWorkerID = "VOLUNTEERLINKS_WORKER_ID"

var hostname = os.Hostname

// GetID returns VOLUNTEERLINKS_WORKER_ID, else the host name, else "worker-0".
func GetID() string {
	if id := env.Get(EnvWorkerID, ""); id != "" {
		return id
	}
	if host, err := hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
