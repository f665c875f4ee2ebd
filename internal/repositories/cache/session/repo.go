package cachesessionrepo

import (
	"context"
	"time"

	"mdexport/internal/models"
	cacherepo "mdexport/internal/repositories/cache"
)

const sessionPrefix = "session:"

type repository struct {
	cache      cacherepo.Cache
	sessionTTL time.Duration
}

func New(cache cacherepo.Cache, sessionTTL time.Duration) *repository {
	return &repository{
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

func (r *repository) SaveSession(ctx context.Context, token string, record string) error {
	return r.cache.Set(ctx, sessionPrefix+token, record, r.sessionTTL).Err()
}

// DeleteSession reports ErrSessionNotFound when the token was already gone.
func (r *repository) DeleteSession(ctx context.Context, token string) error {
	deleted, err := r.cache.Del(ctx, sessionPrefix+token).Result()
	if err != nil {
		return err
	}

	if deleted == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

// UserByToken returns the stored session record and slides the session expiry forward.
func (r *repository) UserByToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrSessionNotFound
	}

	record, err := r.cache.Get(ctx, sessionPrefix+token).Result()
	if err != nil {
		return "", err
	}

	if record == "" {
		return "", models.ErrSessionNotFound
	}

	// a failed refresh leaves the original expiry in place
	_ = r.cache.Expire(ctx, sessionPrefix+token, r.sessionTTL).Err()

	return record, nil
}
