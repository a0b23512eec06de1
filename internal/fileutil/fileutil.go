package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

// MoveFile renames src to dst, falling back to a verified copy when the two
// paths live on different filesystems.
func MoveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("rename %s: %w", src, err)
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s after copy: %w", src, err)
	}
	return nil
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}

// Entry is a file discovered by NewestWithExt.
type Entry struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// NewestWithExt returns the most recently modified file under dir (and its
// immediate subdirectories) whose extension matches ext and whose mtime is not
// before since. ok is false when nothing matches.
func NewestWithExt(dir, ext string, since time.Time) (Entry, bool, error) {
	entries, err := gatherEntries(dir, strings.ToLower(ext), since, 1)
	if err != nil {
		return Entry{}, false, err
	}
	if len(entries) == 0 {
		return Entry{}, false, nil
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Path > entries[j].Path
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries[0], true, nil
}

func gatherEntries(dir, ext string, since time.Time, depth int) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var entries []Entry
	for _, item := range items {
		path := filepath.Join(dir, item.Name())
		if item.IsDir() {
			if depth > 0 {
				nested, err := gatherEntries(path, ext, since, depth-1)
				if err != nil {
					return nil, err
				}
				entries = append(entries, nested...)
			}
			continue
		}
		if strings.ToLower(filepath.Ext(item.Name())) != ext {
			continue
		}
		info, err := item.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(since) {
			continue
		}
		entries = append(entries, Entry{Path: path, ModTime: info.ModTime(), Size: info.Size()})
	}
	return entries, nil
}
