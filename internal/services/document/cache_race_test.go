package documentservice

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"mdexport/internal/models"
	cacherepo "mdexport/internal/repositories/cache"
	cachedocsrepo "mdexport/internal/repositories/cache/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memResponse[T any] struct {
	val T
	err error
}

func (r memResponse[T]) Err() error         { return r.err }
func (r memResponse[T]) Result() (T, error) { return r.val, r.err }

// memCache is an in-process stand-in for redis with the same missing-key
// semantics.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Get(_ context.Context, key string) cacherepo.CacheResponse[string] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return memResponse[string]{val: c.data[key]}
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) cacherepo.CacheResponse[string] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(string)
	return memResponse[string]{val: "OK"}
}

func (c *memCache) Del(_ context.Context, keys ...string) cacherepo.CacheResponse[int64] {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int64
	for _, key := range keys {
		if _, ok := c.data[key]; ok {
			delete(c.data, key)
			n++
		}
	}
	return memResponse[int64]{val: n}
}

func (c *memCache) Expire(_ context.Context, key string, _ time.Duration) cacherepo.CacheResponse[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return memResponse[bool]{val: ok}
}

func (c *memCache) Incr(_ context.Context, key string) cacherepo.CacheResponse[int64] {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, _ := strconv.ParseInt(c.data[key], 10, 64)
	n++
	c.data[key] = strconv.FormatInt(n, 10)
	return memResponse[int64]{val: n}
}

func (c *memCache) SetIfUnchanged(_ context.Context, guardKey string, guard string, key string, value interface{}, _ time.Duration) cacherepo.CacheResponse[bool] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.data[guardKey] != guard {
		return memResponse[bool]{val: false}
	}
	c.data[key] = value.(string)
	return memResponse[bool]{val: true}
}

// slowReadRepo keeps one row in memory. The first DocumentByID call after
// pauseNext is armed copies the row, signals read and waits for resume
// before returning the copy.
type slowReadRepo struct {
	mu  sync.Mutex
	doc models.Document

	pauseNext bool
	read      chan struct{}
	resume    chan struct{}
}

func (r *slowReadRepo) CreateDocument(context.Context, *models.Document) error { return nil }

func (r *slowReadRepo) DocumentByID(_ context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	if r.doc.ID != id {
		r.mu.Unlock()
		return nil, models.ErrDocumentNotFound
	}
	doc := r.doc
	pause := r.pauseNext
	r.pauseNext = false
	r.mu.Unlock()

	if pause {
		close(r.read)
		<-r.resume
	}

	return &doc, nil
}

func (r *slowReadRepo) UpdateOwned(_ context.Context, doc *models.Document) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = *doc
	return doc.UpdatedAt, nil
}

func (r *slowReadRepo) UpdatePublicContent(_ context.Context, _ string, content string, now time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.doc.IsPublic {
		return time.Time{}, models.ErrNoRows
	}
	r.doc.Content = content
	r.doc.UpdatedAt = now
	return now, nil
}

func (r *slowReadRepo) DeleteOwned(context.Context, string, string) (bool, error) { return false, nil }

func (r *slowReadRepo) ListByOwner(context.Context, string, int) ([]models.DocumentSummary, error) {
	return nil, nil
}

func TestGet_SlowReadDoesNotRecachePrivatizedDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	repo := &slowReadRepo{
		doc:       *publicDoc(),
		pauseNext: true,
		read:      make(chan struct{}),
		resume:    make(chan struct{}),
	}
	service := New(slog.Default(), repo, cachedocsrepo.New(newMemCache(), time.Hour))

	visitorDone := make(chan error, 1)
	go func() {
		_, err := service.Get(ctx, "doc1", "visitor")
		visitorDone <- err
	}()

	<-repo.read

	_, err := service.Save(ctx, "owner", models.SaveRequest{
		ID:       "doc1",
		Title:    models.KeepExistingTitle,
		Content:  "# secret again",
		IsPublic: false,
	})
	require.NoError(t, err)

	close(repo.resume)
	require.NoError(t, <-visitorDone)

	doc, err := service.Get(ctx, "doc1", "visitor")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
	assert.Nil(t, doc)

	_, err = service.Info(ctx, "doc1", "visitor")
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)

	doc, err = service.Get(ctx, "doc1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "# secret again", doc.Content)
	assert.False(t, doc.IsPublic)
}

func TestGet_FillsCacheWhenNothingRaced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cache := newMemCache()
	repo := &slowReadRepo{doc: *publicDoc()}
	service := New(slog.Default(), repo, cachedocsrepo.New(cache, time.Hour))

	_, err := service.Get(ctx, "doc1", "visitor")
	require.NoError(t, err)

	cache.mu.Lock()
	_, cached := cache.data["doc:doc1"]
	cache.mu.Unlock()
	assert.True(t, cached)
}
