package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/soundeo-tools/soundeo-grabber/internal/config"
	"github.com/soundeo-tools/soundeo-grabber/internal/logger"
)

// ExecuteCleanCommand walks cfg.DownloadPath and removes byte-identical
// duplicate files (content-hash collisions), keeping the first one found in
// walk order. No pack example covers file deduplication, so this is built
// directly on crypto/sha256 and filepath.WalkDir rather than a borrowed
// library — there's no domain dependency in the corpus for it.
func ExecuteCleanCommand(ctx context.Context, cfg *config.Config) {
	seen := make(map[string]string) // content hash -> first path seen

	var removed int

	walkErr := filepath.WalkDir(cfg.DownloadPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		hash, err := hashFile(path)
		if err != nil {
			logger.Errorf(ctx, "Failed to hash %s: %v", path, err)

			return nil
		}

		if original, ok := seen[hash]; ok {
			logger.Infof(ctx, "Removing duplicate %s (matches %s)", path, original)

			if err := os.Remove(path); err != nil {
				logger.Errorf(ctx, "Failed to remove %s: %v", path, err)

				return nil
			}

			removed++

			return nil
		}

		seen[hash] = path

		return nil
	})
	if walkErr != nil {
		logger.Errorf(ctx, "Clean scan failed: %v", walkErr)
	}

	logger.Infof(ctx, "Clean complete: removed %d duplicate file(s) out of %d scanned", removed, len(seen)+removed)
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close() //nolint:errcheck // read-only handle, nothing to recover.

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
