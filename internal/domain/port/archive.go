package port

import "context"

// ArchiveExtractor unpacks a dataset archive and returns the extracted
// file paths.
type ArchiveExtractor interface {
	Extract(ctx context.Context, archivePath string, destDir string) ([]string, error)
}
