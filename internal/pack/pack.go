// Package pack archives a build output directory into a distributable zip.
package pack

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Result describes a written archive.
type Result struct {
	Path  string
	Files int
	Bytes int64
}

// Archive zips every regular, non-hidden file under srcDir into destPath.
// Entry names are slash-separated paths relative to srcDir. The archive is staged in a
// temporary file next to destPath and renamed into place on success.
func Archive(ctx context.Context, srcDir, destPath string) (Result, error) {
	files, err := collect(srcDir)
	if err != nil {
		return Result{}, err
	}
	if len(files) == 0 {
		return Result{}, fmt.Errorf("nothing to pack in %s", srcDir)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return Result{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.tmp")
	if err != nil {
		return Result{}, err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	zw := zip.NewWriter(tmp)
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := addFile(zw, srcDir, rel); err != nil {
			return Result{}, fmt.Errorf("add %s: %w", rel, err)
		}
	}
	if err := zw.Close(); err != nil {
		return Result{}, err
	}
	if err := tmp.Sync(); err != nil {
		return Result{}, err
	}
	if err := tmp.Close(); err != nil {
		return Result{}, err
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return Result{}, err
	}
	committed = true

	info, err := os.Stat(destPath)
	if err != nil {
		return Result{}, err
	}
	return Result{Path: destPath, Files: len(files), Bytes: info.Size()}, nil
}

func collect(srcDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != srcDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func addFile(zw *zip.Writer, srcDir, rel string) error {
	src := filepath.Join(srcDir, filepath.FromSlash(rel))
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = rel
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	_, err = io.Copy(w, f)
	return err
}
