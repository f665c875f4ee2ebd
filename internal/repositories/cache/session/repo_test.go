package cachesessionrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"mdexport/internal/models"
	cacherepo "mdexport/internal/repositories/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

type mockResponse[T any] struct {
	mock.Mock
	val T
	err error
}

func (m *mockCache) Get(ctx context.Context, key string) cacherepo.CacheResponse[string] {
	args := m.Called(ctx, key)
	return args.Get(0).(cacherepo.CacheResponse[string])
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) cacherepo.CacheResponse[string] {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(cacherepo.CacheResponse[string])
}

func (m *mockCache) Del(ctx context.Context, keys ...string) cacherepo.CacheResponse[int64] {
	args := m.Called(ctx, keys)
	return args.Get(0).(cacherepo.CacheResponse[int64])
}

func (m *mockCache) Expire(ctx context.Context, key string, expiration time.Duration) cacherepo.CacheResponse[bool] {
	args := m.Called(ctx, key, expiration)
	return args.Get(0).(cacherepo.CacheResponse[bool])
}

func (m *mockCache) Incr(ctx context.Context, key string) cacherepo.CacheResponse[int64] {
	args := m.Called(ctx, key)
	return args.Get(0).(cacherepo.CacheResponse[int64])
}

func (m *mockCache) SetIfUnchanged(ctx context.Context, guardKey string, guard string, key string, value interface{}, expiration time.Duration) cacherepo.CacheResponse[bool] {
	args := m.Called(ctx, guardKey, guard, key, value, expiration)
	return args.Get(0).(cacherepo.CacheResponse[bool])
}

func (r *mockResponse[T]) Err() error {
	return r.err
}

func (r *mockResponse[T]) Result() (T, error) {
	return r.val, r.err
}

func TestSaveSession_Success(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[string]{err: nil}

	mockCache.On("Set", mock.Anything, "session:token123", "user-data", time.Minute).
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	err := repo.SaveSession(context.Background(), "token123", "user-data")
	assert.NoError(t, err)
}

func TestDeleteSession_Success(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[int64]{val: 1, err: nil}

	mockCache.On("Del", mock.Anything, []string{"session:token123"}).
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	err := repo.DeleteSession(context.Background(), "token123")
	assert.NoError(t, err)
}

func TestDeleteSession_AlreadyGone(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[int64]{val: 0, err: nil}

	mockCache.On("Del", mock.Anything, []string{"session:expired"}).
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	err := repo.DeleteSession(context.Background(), "expired")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestUserByToken_Success(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[string]{val: "user-data", err: nil}

	mockCache.On("Get", mock.Anything, "session:token123").
		Return(mockResp)
	mockCache.On("Expire", mock.Anything, "session:token123", time.Minute).
		Return(&mockResponse[bool]{val: true})

	repo := New(mockCache, time.Minute)

	result, err := repo.UserByToken(context.Background(), "token123")
	assert.NoError(t, err)
	assert.Equal(t, "user-data", result)
	mockCache.AssertExpectations(t)
}

func TestUserByToken_RefreshFailureIgnored(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)

	mockCache.On("Get", mock.Anything, "session:token123").
		Return(&mockResponse[string]{val: "user-data"})
	mockCache.On("Expire", mock.Anything, "session:token123", time.Minute).
		Return(&mockResponse[bool]{err: errors.New("readonly replica")})

	repo := New(mockCache, time.Minute)

	result, err := repo.UserByToken(context.Background(), "token123")
	assert.NoError(t, err)
	assert.Equal(t, "user-data", result)
}

func TestUserByToken_NotFound(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[string]{val: "", err: nil}

	mockCache.On("Get", mock.Anything, "session:invalid").
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	result, err := repo.UserByToken(context.Background(), "invalid")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.Empty(t, result)
	mockCache.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserByToken_EmptyToken(t *testing.T) {
	t.Parallel()

	repo := New(new(mockCache), time.Minute)

	result, err := repo.UserByToken(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.Empty(t, result)
}

func TestUserByToken_Error(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockResp := &mockResponse[string]{val: "", err: errors.New("connection error")}

	mockCache.On("Get", mock.Anything, "session:error-token").
		Return(mockResp)

	repo := New(mockCache, time.Minute)

	result, err := repo.UserByToken(context.Background(), "error-token")
	assert.Error(t, err)
	assert.Empty(t, result)
}
