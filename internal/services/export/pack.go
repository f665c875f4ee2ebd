package exportservice

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mdexport/internal/models"
)

// packFrames writes the frames into a zip at out, in the given order.
func packFrames(frames []string, out string) (err error) {
	f, err := os.OpenFile(out, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %w", models.ErrPackagingFailed, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %w", models.ErrPackagingFailed, closeErr)
		}
	}()

	zw := zip.NewWriter(f)

	for _, frame := range frames {
		if err := addToZip(zw, frame); err != nil {
			return fmt.Errorf("%w: %w", models.ErrPackagingFailed, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrPackagingFailed, err)
	}

	return nil
}

func addToZip(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(path)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(w, src)
	return err
}
