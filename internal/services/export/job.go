package exportservice

import (
	"log/slog"

	"mdexport/internal/models"
)

type Stage int

const (
	StageReceived Stage = iota
	StageMaterialized
	StageConverted
	StageEmbedded
	StageFinalized
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageMaterialized:
		return "materialized"
	case StageConverted:
		return "converted"
	case StageEmbedded:
		return "embedded"
	case StageFinalized:
		return "finalized"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// job tracks one export run and every path it created, so a failure leaves
// nothing behind and a success leaves only the artifact.
type job struct {
	log     *slog.Logger
	scratch Scratch
	format  models.Format
	userID  string
	stage   Stage
	created []string
}

func newJob(log *slog.Logger, scratch Scratch, format models.Format, userID string) *job {
	return &job{
		log:     log.With(slog.String("format", string(format)), slog.String("user_id", userID)),
		scratch: scratch,
		format:  format,
		userID:  userID,
		stage:   StageReceived,
	}
}

func (j *job) advance(to Stage) {
	j.log.Debug("export stage", slog.String("from", j.stage.String()), slog.String("to", to.String()))
	j.stage = to
}

func (j *job) track(path string) string {
	j.created = append(j.created, path)
	return path
}

func (j *job) newPath(prefix string, ext string) (string, error) {
	path, err := j.scratch.NewPath(j.format, j.userID, prefix, ext)
	if err != nil {
		return "", err
	}
	return j.track(path), nil
}

func (j *job) fail(err error) {
	j.log.Error("export failed", slog.String("stage", j.stage.String()), slog.String("reason", err.Error()))
	j.stage = StageFailed

	if rmErr := j.scratch.Remove(j.created...); rmErr != nil {
		j.log.Warn("failed to clean up job files", slog.String("error", rmErr.Error()))
	}
}

// finish removes every intermediate and keeps the artifact.
func (j *job) finish(artifactPath string) {
	intermediates := make([]string, 0, len(j.created))
	for _, path := range j.created {
		if path != artifactPath {
			intermediates = append(intermediates, path)
		}
	}

	if err := j.scratch.Remove(intermediates...); err != nil {
		j.log.Warn("failed to remove intermediates", slog.String("error", err.Error()))
	}

	j.advance(StageFinalized)
}
