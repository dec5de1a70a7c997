package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/metrics"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// TempFileCleaner deletes abandoned temp uploads and expired refresh tokens.
type TempFileCleaner struct {
	files     *FileService
	tokenRepo repository.ITokenRepository
	maxAge    time.Duration
	interval  time.Duration
}

func NewTempFileCleaner(files *FileService, tokenRepo repository.ITokenRepository, maxAge, interval time.Duration) *TempFileCleaner {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &TempFileCleaner{files: files, tokenRepo: tokenRepo, maxAge: maxAge, interval: interval}
}

// Start runs the cleanup every interval until ctx is done.
func (c *TempFileCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	logger.Log.WithField("interval", c.interval.String()).Info("Temp file cleaner started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Temp file cleaner stopped")
			return
		case <-ticker.C:
			if _, err := c.RunOnce(ctx); err != nil {
				logger.Log.WithError(err).Error("Temp file cleanup failed")
			}
		}
	}
}

// Stats reports the temp area without changing it.
func (c *TempFileCleaner) Stats() (*model.TempCleanupStats, error) {
	stats := &model.TempCleanupStats{MaxAgeHours: int(c.maxAge / time.Hour)}
	cutoff := time.Now().Add(-c.maxAge)

	err := c.walk(func(path string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return nil
		}
		stats.TotalFiles++
		stats.TotalSizeBytes += info.Size()
		if info.ModTime().Before(cutoff) {
			stats.OldFiles++
		}
		return nil
	})
	return stats, err
}

// RunOnce deletes temp files older than the max age, then empty
// directories below the temp root, then expired refresh tokens.
func (c *TempFileCleaner) RunOnce(ctx context.Context) (*model.TempCleanupResult, error) {
	result := &model.TempCleanupResult{}
	cutoff := time.Now().Add(-c.maxAge)

	var dirs []string
	root := c.files.tempDir()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path != root {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			logger.Log.WithError(err).WithField("path", path).Warn("Could not remove temp file")
			return nil
		}
		result.DeletedFiles++
		return nil
	})
	if err != nil {
		return result, err
	}

	// Deepest first so nested empty directories collapse.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) == 0 && os.Remove(dir) == nil {
			result.DeletedDirectories++
		}
	}
	metrics.TempFilesDeletedTotal.Add(float64(result.DeletedFiles))

	if c.tokenRepo != nil {
		purged, err := c.tokenRepo.DeleteExpired(ctx, common.Now())
		if err != nil {
			logger.Log.WithError(err).Warn("Could not purge expired refresh tokens")
		} else if purged > 0 {
			logger.Log.WithField("tokens", purged).Info("Expired refresh tokens purged")
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"deleted_files":       result.DeletedFiles,
		"deleted_directories": result.DeletedDirectories,
	}).Info("Temp file cleanup finished")
	return result, nil
}

func (c *TempFileCleaner) walk(fn func(path string, d fs.DirEntry) error) error {
	err := filepath.WalkDir(c.files.tempDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return fn(path, d)
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
