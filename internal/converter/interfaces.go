package converter

import (
	"context"

	"mdexport/internal/runner"
)

const pkg = "converter/"

type ProcessRunner interface {
	Run(ctx context.Context, task runner.Task) error
}
