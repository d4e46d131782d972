// Package cron runs the periodic housekeeping the server needs:
// sweeping stale temp uploads so abandoned multipart files do not
// accumulate on disk.
package cron

import (
	"os"
	"path/filepath"
	"time"

	"github.com/framelab/train_go_server/internal/pkg/logger"
)

type Service struct {
	tempDir     string
	expireHours int
	stopChan    chan struct{}
}

func NewService(tempDir string, expireHours int) *Service {
	return &Service{
		tempDir:     tempDir,
		expireHours: expireHours,
		stopChan:    make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runCleanup()
	logger.Info("cron service started (temp upload cleanup)")
}

func (s *Service) Stop() {
	close(s.stopChan)
	logger.Info("cron service stopped")
}

func (s *Service) runCleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			removed := s.SweepExpired(false)
			if removed > 0 {
				l := logger.Get()
				l.Info().Int("removed", removed).Msg("swept expired temp uploads")
			}
		}
	}
}

// SweepExpired removes temp-dir entries older than the expiry window
// and returns how many it removed. With dryRun it only counts.
func (s *Service) SweepExpired(dryRun bool) int {
	if s.tempDir == "" {
		return 0
	}

	expireHours := s.expireHours
	if expireHours <= 0 {
		expireHours = 1
	}
	cutoff := time.Now().Add(-time.Duration(expireHours) * time.Hour)

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		logger.Error(err, "failed to read temp dir")
		return 0
	}

	removed := 0
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.tempDir, entry.Name())
		if dryRun {
			l := logger.Get()
			l.Info().Str("path", path).Msg("would remove expired temp entry")
			removed++
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			logger.Error(err, "failed to remove expired temp entry")
			continue
		}
		removed++
	}

	return removed
}
