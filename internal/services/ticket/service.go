package ticketservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"mdexport/internal/models"
)

const pkg = "ticketService/"

type slotKey struct {
	sessionID string
	format    models.Format
}

// Guard holds at most one pending download per (session, format) channel.
// A ticket is redeemable once, only by the session it was issued to.
type Guard struct {
	log     *slog.Logger
	locator ArtifactLocator
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	slots map[slotKey]models.Ticket
}

func New(log *slog.Logger, locator ArtifactLocator, ttl time.Duration) *Guard {
	return &Guard{
		log:     log,
		locator: locator,
		ttl:     ttl,
		now:     time.Now,
		slots:   make(map[slotKey]models.Ticket),
	}
}

// Issue binds the artifact to the session's channel for its format. A ticket
// already pending on that channel is replaced and its file removed.
func (g *Guard) Issue(session models.Session, artifact *models.Artifact) models.Ticket {
	op := pkg + "Issue"

	log := g.log.With(slog.String("op", op))

	ticket := models.Ticket{
		SessionID: session.ID,
		Format:    artifact.Format,
		FileName:  artifact.FileName,
		DiskPath:  artifact.DiskPath,
		MimeType:  artifact.MimeType,
		IssuedAt:  g.now(),
	}

	key := slotKey{sessionID: session.ID, format: artifact.Format}

	g.mu.Lock()
	replaced, hadPrevious := g.slots[key]
	g.slots[key] = ticket
	g.mu.Unlock()

	if hadPrevious && replaced.DiskPath != ticket.DiskPath {
		if err := g.locator.Remove(replaced.DiskPath); err != nil {
			log.Warn("failed to remove replaced artifact", slog.String("error", err.Error()))
		}
		log.Debug("pending ticket replaced", slog.String("format", string(artifact.Format)))
	}

	log.Debug("ticket issued", slog.String("format", string(ticket.Format)), slog.String("file", ticket.FileName))

	return ticket
}

// Peek reports the pending ticket for fileName without consuming it.
func (g *Guard) Peek(session models.Session, fileName string) (models.Ticket, error) {
	op := pkg + "Peek"

	g.mu.Lock()
	defer g.mu.Unlock()

	_, ticket, err := g.match(session, fileName)
	if err != nil {
		g.log.With(slog.String("op", op)).Debug("no matching ticket", slog.String("file", fileName))
		return models.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	return ticket, nil
}

// Redeem consumes the ticket for fileName. The channel is cleared before the
// file is opened, so a concurrent second redemption fails. Closing the
// returned reader deletes the artifact.
func (g *Guard) Redeem(session models.Session, fileName string) (io.ReadCloser, models.Ticket, error) {
	op := pkg + "Redeem"

	log := g.log.With(slog.String("op", op))

	g.mu.Lock()
	key, ticket, err := g.match(session, fileName)
	if err == nil {
		delete(g.slots, key)
	}
	g.mu.Unlock()

	if err != nil {
		log.Debug("no matching ticket", slog.String("file", fileName))
		return nil, models.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	file, err := os.Open(ticket.DiskPath)
	if err != nil {
		log.Warn("artifact vanished before redemption", slog.String("error", err.Error()))
		return nil, models.Ticket{}, fmt.Errorf("%s: %w", op, models.ErrTicketNotFound)
	}

	log.Debug("ticket redeemed", slog.String("format", string(ticket.Format)))

	return &removeOnClose{File: file, remove: func() error { return g.locator.Remove(ticket.DiskPath) }}, ticket, nil
}

// match must be called with g.mu held.
func (g *Guard) match(session models.Session, fileName string) (slotKey, models.Ticket, error) {
	if session.ID == "" || session.UserID == "" || fileName == "" {
		return slotKey{}, models.Ticket{}, models.ErrTicketNotFound
	}

	for _, format := range models.Formats {
		key := slotKey{sessionID: session.ID, format: format}

		ticket, ok := g.slots[key]
		if !ok || ticket.FileName != fileName || ticket.SessionID != session.ID {
			continue
		}

		expected, err := g.locator.ArtifactPath(session.UserID, format, fileName)
		if err != nil || expected != ticket.DiskPath {
			continue
		}

		info, err := os.Stat(ticket.DiskPath)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		return key, ticket, nil
	}

	return slotKey{}, models.Ticket{}, models.ErrTicketNotFound
}

// Release drops every pending ticket of a closed session and removes their
// files. It returns how many tickets were dropped.
func (g *Guard) Release(sessionID string) int {
	op := pkg + "Release"

	log := g.log.With(slog.String("op", op))

	if sessionID == "" {
		return 0
	}

	var paths []string

	g.mu.Lock()
	for _, format := range models.Formats {
		key := slotKey{sessionID: sessionID, format: format}
		if ticket, ok := g.slots[key]; ok {
			paths = append(paths, ticket.DiskPath)
			delete(g.slots, key)
		}
	}
	g.mu.Unlock()

	if err := g.locator.Remove(paths...); err != nil {
		log.Warn("failed to remove released artifacts", slog.String("error", err.Error()))
	}

	return len(paths)
}

// Sweep drops tickets older than the TTL together with their files, then
// removes stray scratch entries that no ticket can reach anymore.
func (g *Guard) Sweep(now time.Time) int {
	op := pkg + "Sweep"

	log := g.log.With(slog.String("op", op))

	cutoff := now.Add(-g.ttl)

	expired := make([]string, 0)

	g.mu.Lock()
	for key, ticket := range g.slots {
		if ticket.IssuedAt.Before(cutoff) {
			expired = append(expired, ticket.DiskPath)
			delete(g.slots, key)
		}
	}
	g.mu.Unlock()

	if err := g.locator.Remove(expired...); err != nil {
		log.Warn("failed to remove expired artifacts", slog.String("error", err.Error()))
	}

	// Live tickets are never older than one TTL, so twice the TTL only
	// reaches files that lost their ticket.
	stray, err := g.locator.Sweep(now.Add(-2 * g.ttl))
	if err != nil {
		log.Warn("failed to sweep scratch storage", slog.String("error", err.Error()))
	}

	if len(expired) > 0 || stray > 0 {
		log.Info("swept stale artifacts", slog.Int("expired_tickets", len(expired)), slog.Int("stray_entries", stray))
	}

	return len(expired) + stray
}

// Run sweeps every interval until ctx is cancelled.
func (g *Guard) Run(ctx context.Context, interval time.Duration) error {
	op := pkg + "Run"

	log := g.log.With(slog.String("op", op))

	if interval <= 0 {
		return fmt.Errorf("%s: %w", op, errors.New("sweep interval must be positive"))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("ticket janitor started", slog.Duration("interval", interval), slog.Duration("ttl", g.ttl))

	for {
		select {
		case <-ctx.Done():
			log.Info("ticket janitor stopped")
			return nil
		case now := <-ticker.C:
			g.Sweep(now)
		}
	}
}

type removeOnClose struct {
	*os.File
	remove func() error
}

func (r *removeOnClose) Close() error {
	closeErr := r.File.Close()
	removeErr := r.remove()
	return errors.Join(closeErr, removeErr)
}
