package instance

import (
	"os"

	"github.com/angelmondragon/atacado-backend/pkg/env"
)

const fallbackID = "local"

// ID names the running process in logs and on published stream entries.
// ATACADO_INSTANCE_ID wins, then the platform dyno name, then the hostname.
func ID() string {
	if id := env.First("ATACADO_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
