package ticketservice

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mdexport/internal/models"
	"mdexport/internal/repositories/storage/scratch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Guard, *scratch.Storage) {
	t.Helper()

	storage, err := scratch.New(t.TempDir())
	require.NoError(t, err)

	return New(slog.Default(), storage, time.Hour), storage
}

func newArtifact(t *testing.T, storage *scratch.Storage, format models.Format, userID string) *models.Artifact {
	t.Helper()

	path, err := storage.NewPath(format, userID, string(format), format.Extension())
	require.NoError(t, err)
	require.NoError(t, storage.WriteFile(path, []byte("artifact-"+string(format))))

	return &models.Artifact{
		Format:    format,
		DiskPath:  path,
		FileName:  filepath.Base(path),
		MimeType:  format.MimeType(),
		CreatedAt: time.Now(),
	}
}

func TestRedeem_SingleUse(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	session := models.Session{ID: "sess1", UserID: "user1"}
	artifact := newArtifact(t, storage, models.FormatDocument, "user1")

	guard.Issue(session, artifact)

	peeked, err := guard.Peek(session, artifact.FileName)
	require.NoError(t, err)
	assert.Equal(t, artifact.DiskPath, peeked.DiskPath)

	rc, ticket, err := guard.Redeem(session, artifact.FileName)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", ticket.MimeType)

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "artifact-document", string(data))
	require.NoError(t, rc.Close())

	assert.NoFileExists(t, artifact.DiskPath)

	_, _, err = guard.Redeem(session, artifact.FileName)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)

	_, err = guard.Peek(session, artifact.FileName)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestRedeem_BoundToSession(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	owner := models.Session{ID: "sess1", UserID: "user1"}
	artifact := newArtifact(t, storage, models.FormatVideo, "user1")

	guard.Issue(owner, artifact)

	tests := []struct {
		name    string
		session models.Session
	}{
		{name: "other session same user", session: models.Session{ID: "sess2", UserID: "user1"}},
		{name: "other user same session id", session: models.Session{ID: "sess1", UserID: "user2"}},
		{name: "empty session", session: models.Session{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := guard.Redeem(tt.session, artifact.FileName)
			assert.ErrorIs(t, err, models.ErrTicketNotFound)
		})
	}

	assert.FileExists(t, artifact.DiskPath)

	rc, _, err := guard.Redeem(owner, artifact.FileName)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
}

func TestRedeem_WrongFileName(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	session := models.Session{ID: "sess1", UserID: "user1"}
	artifact := newArtifact(t, storage, models.FormatPage, "user1")

	guard.Issue(session, artifact)

	_, _, err := guard.Redeem(session, "../"+artifact.FileName)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)

	_, _, err = guard.Redeem(session, "other.html")
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestPeek_FileMissing(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	session := models.Session{ID: "sess1", UserID: "user1"}
	artifact := newArtifact(t, storage, models.FormatDocument, "user1")

	guard.Issue(session, artifact)
	require.NoError(t, os.Remove(artifact.DiskPath))

	_, err := guard.Peek(session, artifact.FileName)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)
}

func TestIssue_ReplacesChannel(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	session := models.Session{ID: "sess1", UserID: "user1"}

	first := newArtifact(t, storage, models.FormatDocument, "user1")
	second := newArtifact(t, storage, models.FormatDocument, "user1")
	video := newArtifact(t, storage, models.FormatVideo, "user1")

	guard.Issue(session, first)
	guard.Issue(session, video)
	guard.Issue(session, second)

	assert.NoFileExists(t, first.DiskPath)

	_, err := guard.Peek(session, first.FileName)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)

	_, err = guard.Peek(session, second.FileName)
	assert.NoError(t, err)

	_, err = guard.Peek(session, video.FileName)
	assert.NoError(t, err)
}

func TestRedeem_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	session := models.Session{ID: "sess1", UserID: "user1"}
	artifact := newArtifact(t, storage, models.FormatImageSet, "user1")

	guard.Issue(session, artifact)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rc, _, err := guard.Redeem(session, artifact.FileName)
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, rc)
			_ = rc.Close()

			mu.Lock()
			winners++
			mu.Unlock()
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, winners)
	assert.NoFileExists(t, artifact.DiskPath)
}

func TestRelease_DropsOnlyThatSession(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	closing := models.Session{ID: "sess1", UserID: "user1"}
	other := models.Session{ID: "sess2", UserID: "user1"}

	pdf := newArtifact(t, storage, models.FormatDocument, "user1")
	video := newArtifact(t, storage, models.FormatVideo, "user1")
	kept := newArtifact(t, storage, models.FormatDocument, "user1")

	guard.Issue(closing, pdf)
	guard.Issue(closing, video)
	guard.Issue(other, kept)

	assert.Equal(t, 2, guard.Release(closing.ID))
	assert.Equal(t, 0, guard.Release(closing.ID))
	assert.Equal(t, 0, guard.Release(""))

	assert.NoFileExists(t, pdf.DiskPath)
	assert.NoFileExists(t, video.DiskPath)

	_, err := guard.Peek(closing, pdf.FileName)
	assert.ErrorIs(t, err, models.ErrTicketNotFound)

	_, err = guard.Peek(other, kept.FileName)
	assert.NoError(t, err)
}

func TestSweep_ExpiresTickets(t *testing.T) {
	t.Parallel()

	guard, storage := setup(t)
	session := models.Session{ID: "sess1", UserID: "user1"}

	old := newArtifact(t, storage, models.FormatDocument, "user1")
	fresh := newArtifact(t, storage, models.FormatPage, "user1")

	guard.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	guard.Issue(session, old)
	guard.now = time.Now
	guard.Issue(session, fresh)

	removed := guard.Sweep(time.Now())
	assert.GreaterOrEqual(t, removed, 1)

	assert.NoFileExists(t, old.DiskPath)
	assert.FileExists(t, fresh.DiskPath)

	_, err := guard.Peek(session, fresh.FileName)
	assert.NoError(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Parallel()

	guard, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- guard.Run(ctx, 10*time.Millisecond) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRun_InvalidInterval(t *testing.T) {
	t.Parallel()

	guard, _ := setup(t)
	assert.Error(t, guard.Run(context.Background(), 0))
}
