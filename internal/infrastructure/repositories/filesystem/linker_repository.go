package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/upstreamsync/internal/domain/repositories"
)

// LinkerRepository exports files as hard links, copying when the link fails
// (for example across devices).
type LinkerRepository struct{}

var _ repositories.FileLinkerRepository = (*LinkerRepository)(nil)

// NewLinkerRepository creates a new LinkerRepository.
func NewLinkerRepository() *LinkerRepository {
	return &LinkerRepository{}
}

// Clear removes every entry of dir except the kept ones. A missing dir is created.
func (r *LinkerRepository) Clear(dir string, keep []string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if slices.Contains(keep, entry.Name()) {
			continue
		}
		logger.Debugf("Clearing %s", entry.Name())
		if removeErr := os.RemoveAll(filepath.Join(dir, entry.Name())); removeErr != nil {
			return removeErr
		}
	}
	return nil
}

// Link hard-links src to dst, replacing an existing dst.
func (r *LinkerRepository) Link(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Link(src, dst); err != nil {
		logger.Debugf("Hard link of %s failed (%v), copying", src, err)
		return copyFile(src, dst)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, copyErr := io.Copy(out, in); copyErr != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, copyErr)
	}
	return out.Close()
}
