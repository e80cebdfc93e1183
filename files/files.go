// Package files stores downloaded images on disk and maintains the
// optional joined view of links pointing at them.
package files

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/handsomefox/ridit/api"
	"github.com/handsomefox/ridit/config"
	"github.com/rs/zerolog/log"
)

// Replaceable so tests can simulate platforms without symlink or hard link support.
var (
	symlinkFunc = os.Symlink
	linkFunc    = os.Link
)

var (
	_ error = &StorageError{}
	_ error = &LinkError{}
)

// StorageError means a file couldn't be created, written or flushed.
// A partially written file may be left at Path.
type StorageError struct {
	Err  error
	Path string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to store file on %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// LinkError means a link, or the directory containing it, couldn't be created.
type LinkError struct {
	Err error
	Src string
	Dst string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to create link from %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *LinkError) Unwrap() error { return e.Err }

// Exists returns whether anything, including a dangling link, exists at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Store streams r into a newly created (or truncated) file at path and
// returns the number of bytes written. Failures are *StorageError.
func Store(r io.Reader, path string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return 0, &StorageError{Path: path, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, &StorageError{Path: path, Err: err}
	}

	fw := bufio.NewWriter(file)
	n, err := io.Copy(fw, r)
	if err != nil {
		file.Close()
		return n, &StorageError{Path: path, Err: err}
	}
	if err := fw.Flush(); err != nil {
		file.Close()
		return n, &StorageError{Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return n, &StorageError{Path: path, Err: err}
	}

	log.Debug().Int64("written_bytes", n).Str("path", path).Msg("wrote to disk")

	return n, nil
}

// LinkDir returns the directory links are created in: the custom path when
// configured, else {download root}/_joined.
func LinkDir(cfg *config.Config) string {
	if cfg.SymbolicLink.UseCustomPath && cfg.SymbolicLink.CustomPath != "" {
		return cfg.SymbolicLink.CustomPath
	}
	return filepath.Join(cfg.Downloads.Path, config.JoinedDirName)
}

// CreateLink creates a link named after the candidate's file inside LinkDir,
// pointing at storedPath. It does nothing and returns "" when links are disabled.
// Failures are *LinkError and never affect the stored file.
func CreateLink(storedPath string, c *api.Candidate, cfg *config.Config) (string, error) {
	if !cfg.SymbolicLink.Enable {
		return "", nil
	}

	dir := LinkDir(cfg)
	dst := filepath.Join(dir, c.Filename)

	// MkdirAll tolerates other goroutines creating the same directory.
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", &LinkError{Src: storedPath, Dst: dst, Err: fmt.Errorf("failed to create folder on %s: %w", dir, err)}
	}
	if err := Link(storedPath, dst); err != nil {
		return "", err
	}

	return dst, nil
}

// Link makes dst refer to src. It tries a symbolic link first, then a hard
// link, then falls back to copying the file. An existing dst is an error.
func Link(src, dst string) error {
	if Exists(dst) {
		return &LinkError{Src: src, Dst: dst, Err: os.ErrExist}
	}

	abs, err := filepath.Abs(src)
	if err != nil {
		return &LinkError{Src: src, Dst: dst, Err: err}
	}

	symErr := symlinkFunc(abs, dst)
	if symErr == nil {
		return nil
	}
	if errors.Is(symErr, os.ErrExist) {
		return &LinkError{Src: src, Dst: dst, Err: symErr}
	}
	log.Debug().Err(symErr).Str("dst", dst).Msg("symlink failed, trying hard link")

	hardErr := linkFunc(abs, dst)
	if hardErr == nil {
		return nil
	}
	if errors.Is(hardErr, os.ErrExist) {
		return &LinkError{Src: src, Dst: dst, Err: hardErr}
	}
	log.Debug().Err(hardErr).Str("dst", dst).Msg("hard link failed, copying")

	if err := copyFile(abs, dst); err != nil {
		return &LinkError{Src: src, Dst: dst, Err: errors.Join(symErr, hardErr, err)}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
