package middleware

import (
	"context"

	"mdexport/internal/models"
)

const pkg = "middleware/"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, models.Session, error)
}
