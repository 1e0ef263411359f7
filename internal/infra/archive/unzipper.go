package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Unzipper extracts dataset archives. Entries escaping the destination
// directory are rejected.
type Unzipper struct{}

func NewUnzipper() *Unzipper {
	return &Unzipper{}
}

func (u *Unzipper) Extract(ctx context.Context, archivePath string, destDir string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("create dest dir: %w", err)
	}

	var extracted []string
	for _, f := range reader.File {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		path, err := safePath(destDir, f.Name)
		if err != nil {
			return nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, fmt.Errorf("create dir %s: %w", f.Name, err)
			}
			continue
		}

		if err := extractFile(f, path); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		extracted = append(extracted, path)
	}

	return extracted, nil
}

func safePath(destDir, name string) (string, error) {
	path := filepath.Join(destDir, name)
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}
	return path, nil
}

func extractFile(f *zip.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
