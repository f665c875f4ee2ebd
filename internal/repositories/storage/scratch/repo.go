package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mdexport/internal/models"

	uuid "github.com/satori/go.uuid"
)

const pkg = "scratchRepo/"

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Storage lays out job files as <root>/<format>/<userID>/<prefix>_<unix>_<rand><ext>.
type Storage struct {
	root string
	now  func() time.Time
}

func New(root string) (*Storage, error) {
	op := pkg + "New"

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{root: abs, now: time.Now}, nil
}

func (s *Storage) Root() string {
	return s.root
}

// UserDir returns the per-user directory for a format, creating it if needed.
func (s *Storage) UserDir(format models.Format, userID string) (string, error) {
	op := pkg + "UserDir"

	if !isSafeComponent(string(format)) || !isSafeComponent(userID) {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidParams)
	}

	dir := filepath.Join(s.root, string(format), userID)

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return dir, nil
}

// NewPath reserves a unique, not yet existing path in the user directory.
func (s *Storage) NewPath(format models.Format, userID string, prefix string, ext string) (string, error) {
	op := pkg + "NewPath"

	dir, err := s.UserDir(format, userID)
	if err != nil {
		return "", err
	}

	if !isSafeComponent(prefix) {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidParams)
	}

	name := prefix + "_" + strconv.FormatInt(s.now().Unix(), 10) + "_" + randomSuffix() + ext

	return filepath.Join(dir, name), nil
}

// ArtifactPath recomputes where an artifact named fileName must live for the
// given user. Names that would escape the user directory are rejected.
func (s *Storage) ArtifactPath(userID string, format models.Format, fileName string) (string, error) {
	op := pkg + "ArtifactPath"

	if !isSafeComponent(userID) || !isSafeComponent(string(format)) || !isSafeComponent(fileName) {
		return "", fmt.Errorf("%s: %w", op, models.ErrInvalidParams)
	}

	return filepath.Join(s.root, string(format), userID, fileName), nil
}

func (s *Storage) WriteFile(path string, data []byte) error {
	op := pkg + "WriteFile"

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Mkdir(path string) error {
	op := pkg + "Mkdir"

	if err := os.Mkdir(path, dirPerm); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Remove deletes files and directories recursively. Missing paths are not an
// error.
func (s *Storage) Remove(paths ...string) error {
	op := pkg + "Remove"

	var errs []error

	for _, path := range paths {
		if path == "" {
			continue
		}

		if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Sweep removes entries in the user directories last modified before
// olderThan and returns how many were removed.
func (s *Storage) Sweep(olderThan time.Time) (int, error) {
	op := pkg + "Sweep"

	removed := 0

	formatDirs, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, formatDir := range formatDirs {
		if !formatDir.IsDir() {
			continue
		}

		userDirs, err := os.ReadDir(filepath.Join(s.root, formatDir.Name()))
		if err != nil {
			return removed, fmt.Errorf("%s: %w", op, err)
		}

		for _, userDir := range userDirs {
			if !userDir.IsDir() {
				continue
			}

			dir := filepath.Join(s.root, formatDir.Name(), userDir.Name())

			entries, err := os.ReadDir(dir)
			if err != nil {
				return removed, fmt.Errorf("%s: %w", op, err)
			}

			for _, entry := range entries {
				info, err := entry.Info()
				if err != nil {
					continue
				}

				if !info.ModTime().Before(olderThan) {
					continue
				}

				if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
					return removed, fmt.Errorf("%s: %w", op, err)
				}

				removed++
			}
		}
	}

	return removed, nil
}

func isSafeComponent(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewV4().String(), "-", "")[:8]
}
