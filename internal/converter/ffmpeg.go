package converter

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mdexport/internal/runner"
)

const ffmpegTool = "ffmpeg"

type ManifestEntry struct {
	Path     string
	Duration time.Duration
}

// Manifest is an ffmpeg concat demuxer input list.
type Manifest struct {
	Entries []ManifestEntry
}

func NewManifest(frames []string, perFrame time.Duration) Manifest {
	entries := make([]ManifestEntry, 0, len(frames))

	for _, frame := range frames {
		entries = append(entries, ManifestEntry{Path: frame, Duration: perFrame})
	}

	return Manifest{Entries: entries}
}

func (m Manifest) Encode() []byte {
	var b strings.Builder

	for _, entry := range m.Entries {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(entry.Path, `'`, `'\''`))
		b.WriteString("'\n")
		b.WriteString("duration ")
		b.WriteString(strconv.FormatFloat(entry.Duration.Seconds(), 'f', -1, 64))
		b.WriteString("\n")
	}

	return []byte(b.String())
}

type FFmpeg struct {
	bin string
	run ProcessRunner
}

func NewFFmpeg(bin string, run ProcessRunner) *FFmpeg {
	if bin == "" {
		bin = ffmpegTool
	}
	return &FFmpeg{bin: bin, run: run}
}

// Encode turns the concat manifest at listPath into an H.264 MP4 at out.
func (f *FFmpeg) Encode(ctx context.Context, listPath string, out string) error {
	op := pkg + "FFmpeg.Encode"

	err := f.run.Run(ctx, runner.Task{
		Tool: f.bin,
		Args: []string{
			"-f", "concat",
			"-safe", "0",
			"-i", listPath,
			"-c:v", "libx264",
			"-pix_fmt", "yuv420p",
			"-y", out,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := ensureOutput(f.bin, out); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
