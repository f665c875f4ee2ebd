package session

import (
	"context"

	"mdexport/internal/models"
)

const pkg = "sessionHandler/"

type SessionAdder interface {
	Login(ctx context.Context, login string, password string) (string, models.Session, error)
}

type SessionDeleter interface {
	Logout(ctx context.Context, token string) error
}
