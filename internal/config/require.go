package config

import (
	"fmt"
	"strings"
)

// MissingEnvError lists every required variable that was empty.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required env: %s", strings.Join(e.Names, ", "))
}

// Validate checks the values the server cannot start without and reports all
// of the missing ones at once.
func (c Config) Validate() error {
	required := []struct {
		env string
		set bool
	}{
		{"DATABASE_URL", c.DatabaseURL != ""},
		{"JWT_SECRET", len(c.Secrets.AccessSecret) > 0},
		{"JWT_REFRESH_SECRET", len(c.Secrets.RefreshSecret) > 0},
		{"PEPPER", len(c.Secrets.Pepper) > 0},
	}

	var missing []string
	for _, r := range required {
		if !r.set {
			missing = append(missing, r.env)
		}
	}
	if len(missing) > 0 {
		return &MissingEnvError{Names: missing}
	}
	return nil
}
