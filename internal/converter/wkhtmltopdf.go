package converter

import (
	"context"
	"fmt"

	"mdexport/internal/runner"
)

const wkhtmltopdfTool = "wkhtmltopdf"

type Wkhtmltopdf struct {
	bin      string
	pageSize string
	run      ProcessRunner
}

func NewWkhtmltopdf(bin string, pageSize string, run ProcessRunner) *Wkhtmltopdf {
	if bin == "" {
		bin = wkhtmltopdfTool
	}
	if pageSize == "" {
		pageSize = "A4"
	}
	return &Wkhtmltopdf{bin: bin, pageSize: pageSize, run: run}
}

// Render prints htmlPath to a PDF at out. Resources that fail to load, such
// as unresolved img: references, are skipped instead of failing the run.
func (w *Wkhtmltopdf) Render(ctx context.Context, htmlPath string, out string) error {
	op := pkg + "Wkhtmltopdf.Render"

	err := w.run.Run(ctx, runner.Task{
		Tool: w.bin,
		Args: []string{
			"--quiet",
			"--load-error-handling", "ignore",
			"--load-media-error-handling", "ignore",
			"--page-size", w.pageSize,
			htmlPath, out,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ensureOutput(w.bin, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
