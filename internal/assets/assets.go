// Package assets stages static files into a build output directory.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/walletbuilder/internal/logfields"
)

// RenderFunc rewrites one file on its way into the output directory. It
// receives the slash-separated path relative to the set's Base and returns the
// destination path (relative to the output directory) and the new contents.
type RenderFunc func(rel string, data []byte) (string, []byte, error)

// Set is one independent sub-copy. Destination paths keep the source path
// relative to Base unless Render renames them.
type Set struct {
	Name string
	Base string
	// Patterns are doublestar globs relative to Base. A pattern without glob
	// metacharacters names a required file; a glob may match nothing.
	Patterns []string
	Render   RenderFunc
}

// Copy runs every set concurrently into dst and waits for all of them. The
// first failure cancels the remaining sets and is returned. It reports the
// number of files written.
func Copy(ctx context.Context, dst string, sets []Set) (int, error) {
	var written atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range sets {
		g.Go(func() error {
			n, err := copySet(gctx, dst, s)
			written.Add(int64(n))
			if err != nil {
				return fmt.Errorf("copy %s: %w", s.Name, err)
			}
			slog.Debug("Copied asset set", slog.String("set", s.Name), logfields.Files(n))
			return nil
		})
	}
	err := g.Wait()
	return int(written.Load()), err
}

func copySet(ctx context.Context, dst string, s Set) (int, error) {
	files, err := Resolve(s.Base, s.Patterns)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		src := filepath.Join(s.Base, filepath.FromSlash(rel))
		if s.Render == nil {
			if err := CopyFile(src, filepath.Join(dst, filepath.FromSlash(rel))); err != nil {
				return n, err
			}
			n++
			continue
		}

		data, err := os.ReadFile(src)
		if err != nil {
			return n, err
		}
		outRel, out, err := s.Render(rel, data)
		if err != nil {
			return n, fmt.Errorf("render %s: %w", rel, err)
		}
		if err := WriteFile(filepath.Join(dst, filepath.FromSlash(outRel)), out); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Resolve expands patterns under base into a de-duplicated list of
// slash-separated file paths relative to base, in match order. Glob matches
// inside hidden files or directories are skipped.
func Resolve(base string, patterns []string) ([]string, error) {
	fsys := os.DirFS(base)
	seen := make(map[string]struct{})
	var out []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}

		var matches []string
		if isLiteral(pattern) {
			info, err := fs.Stat(fsys, pattern)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, fmt.Errorf("file not found: %s", path.Join(filepath.ToSlash(base), pattern))
				}
				return nil, err
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory, expected a file", pattern)
			}
			matches = []string{pattern}
		} else {
			var err error
			matches, err = doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("glob %s: %w", pattern, err)
			}
		}

		for _, m := range matches {
			if _, dup := seen[m]; dup {
				continue
			}
			if !isLiteral(pattern) && hasHiddenSegment(m) {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// hasHiddenSegment reports a slash path with a file or directory name starting with ".".
// Globs never stage such files; a literal pattern can still name one.
func hasHiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func isLiteral(pattern string) bool {
	return !strings.ContainsAny(pattern, "*?[{\\")
}

// CopyFile copies src to dst, creating parent directories and preserving the file mode.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// WriteFile writes data to dst, creating parent directories.
func WriteFile(dst string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
