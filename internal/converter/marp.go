package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"mdexport/internal/models"
	"mdexport/internal/runner"
)

const marpTool = "marp"

var slideFrameRe = regexp.MustCompile(`^slide(?:\.(\d+))?\.png$`)

type Marp struct {
	bin string
	run ProcessRunner
}

func NewMarp(bin string, run ProcessRunner) *Marp {
	if bin == "" {
		bin = marpTool
	}
	return &Marp{bin: bin, run: run}
}

// RenderPage renders slide markup at src into a single HTML page at out.
func (m *Marp) RenderPage(ctx context.Context, src string, out string) error {
	op := pkg + "Marp.RenderPage"

	err := m.run.Run(ctx, runner.Task{
		Tool: m.bin,
		Args: []string{"--html", src, "-o", out},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ensureOutput(m.bin, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RenderFrames renders one PNG per slide into dir and returns the frames in
// slide order, renamed frame-0001.png, frame-0002.png and so on.
func (m *Marp) RenderFrames(ctx context.Context, src string, dir string) ([]string, error) {
	op := pkg + "Marp.RenderFrames"

	err := m.run.Run(ctx, runner.Task{
		Tool: m.bin,
		Args: []string{"--images", "png", "--image-scale", "1", src, "-o", filepath.Join(dir, "slide.png")},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	frames, err := collectFrames(dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return frames, nil
}

type slideFrame struct {
	name  string
	index int
}

func collectFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIOFailure, err)
	}

	slides := make([]slideFrame, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		match := slideFrameRe.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}

		index := 0
		if match[1] != "" {
			index, err = strconv.Atoi(match[1])
			if err != nil {
				continue
			}
		}

		slides = append(slides, slideFrame{name: entry.Name(), index: index})
	}

	if len(slides) == 0 {
		return nil, models.ErrNoFramesProduced
	}

	sort.Slice(slides, func(i, j int) bool {
		return slides[i].index < slides[j].index
	})

	frames := make([]string, 0, len(slides))

	for i, slide := range slides {
		framePath := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", i+1))

		if err := os.Rename(filepath.Join(dir, slide.name), framePath); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrIOFailure, err)
		}

		frames = append(frames, framePath)
	}

	return frames, nil
}
