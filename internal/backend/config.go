package backend

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Config identifies the backend project every service handle is built against.
// It is a value type; copies are independent.
type Config struct {
	Endpoint          string
	ProjectID         string
	PlatformID        string
	DatabaseID        string
	UserCollectionID  string
	VideoCollectionID string
	StorageID         string
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate reports the first missing or malformed field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("backend config: endpoint is required")
	}
	if strings.TrimSpace(c.ProjectID) == "" {
		return errors.New("backend config: project id is required")
	}
	if strings.TrimSpace(c.StorageID) == "" {
		return errors.New("backend config: storage id is required")
	}

	identifiers := []struct {
		name  string
		value string
	}{
		{"database id", c.DatabaseID},
		{"user collection id", c.UserCollectionID},
		{"video collection id", c.VideoCollectionID},
	}
	for _, id := range identifiers {
		if id.value == "" {
			return fmt.Errorf("backend config: %s is required", id.name)
		}
		if !identifierPattern.MatchString(id.value) {
			return fmt.Errorf("backend config: %s %q is not a valid identifier", id.name, id.value)
		}
	}

	return nil
}
