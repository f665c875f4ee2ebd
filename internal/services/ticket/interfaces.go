package ticketservice

import (
	"time"

	"mdexport/internal/models"
)

type ArtifactLocator interface {
	ArtifactPath(userID string, format models.Format, fileName string) (string, error)
	Remove(paths ...string) error
	Sweep(olderThan time.Time) (int, error)
}
